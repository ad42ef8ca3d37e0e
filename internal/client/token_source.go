package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// expiryLeeway is subtracted from a token's exp claim so a token is refreshed
// before the backend would start rejecting it.
const expiryLeeway = 30 * time.Second

// TokenSource caches the bearer credential issued by the external identity
// provider and refetches it when it nears expiry. Subscribers are notified
// when the token's subject changes, which signals a different signed-in
// identity and requires session state (balances) to be invalidated.
type TokenSource struct {
	tokenURL   string
	httpClient *http.Client
	logger     *zap.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	subject   string

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewTokenSource creates a token source backed by the identity provider's
// token endpoint.
func NewTokenSource(tokenURL string, timeout time.Duration, logger *zap.Logger) *TokenSource {
	return &TokenSource{
		tokenURL: tokenURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		subs:   make(map[int]func()),
	}
}

// Token returns the current valid bearer token, fetching a fresh one when
// the cached token is missing or about to expire.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiresAt.Add(-expiryLeeway)) {
		return s.token, nil
	}

	token, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}

	subject, expiresAt := inspectToken(token)
	changed := s.subject != "" && subject != s.subject

	s.token = token
	s.subject = subject
	s.expiresAt = expiresAt

	if changed {
		s.logger.Info("Identity changed, notifying subscribers")
		go s.notify()
	}

	return token, nil
}

// fetch retrieves a token with exponential backoff; transient identity
// provider hiccups should not fail an order submission outright.
func (s *TokenSource) fetch(ctx context.Context) (string, error) {
	var token string

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 10 * time.Second

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tokenURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.logger.Debug("Token fetch failed, retrying", zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := decodeAPIError(resp.StatusCode, resp.Body)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var payload struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode token response: %w", err))
		}
		if payload.Token == "" {
			return backoff.Permanent(fmt.Errorf("identity provider returned an empty token"))
		}

		token = payload.Token
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return "", fmt.Errorf("failed to fetch token: %w", err)
	}
	return token, nil
}

// Subscribe registers a callback invoked when the signed-in identity changes.
// The returned function cancels the subscription.
func (s *TokenSource) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *TokenSource) notify() {
	s.subMu.Lock()
	callbacks := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.subMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// inspectToken extracts the subject and expiry claims without verifying the
// signature; the client does not hold the signing secret, verification is
// the backend's job.
func inspectToken(token string) (subject string, expiresAt time.Time) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		// Opaque tokens still work; they just expire eagerly on the next call.
		return "", time.Now()
	}

	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	} else {
		expiresAt = time.Now().Add(time.Minute)
	}
	return claims.Subject, expiresAt
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

func signedToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func tokenServer(tokens chan string, fetches *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(fetches, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": <-tokens})
	}))
}

func TestToken_CachesUntilNearExpiry(t *testing.T) {
	tokens := make(chan string, 2)
	tokens <- signedToken(t, "user-1", time.Hour)
	var fetches int32
	srv := tokenServer(tokens, &fetches)
	defer srv.Close()

	s := NewTokenSource(srv.URL, time.Second, zap.NewNop())

	first, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected the cached token on the second call")
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("expected one fetch, got %d", n)
	}
}

func TestToken_RefetchesWhenCloseToExpiry(t *testing.T) {
	tokens := make(chan string, 2)
	// First token expires inside the refresh leeway
	tokens <- signedToken(t, "user-1", 5*time.Second)
	tokens <- signedToken(t, "user-1", time.Hour)
	var fetches int32
	srv := tokenServer(tokens, &fetches)
	defer srv.Close()

	s := NewTokenSource(srv.URL, time.Second, zap.NewNop())

	if _, err := s.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Errorf("expected a refetch near expiry, got %d fetches", n)
	}
}

func TestToken_NotifiesOnIdentityChange(t *testing.T) {
	tokens := make(chan string, 2)
	tokens <- signedToken(t, "user-1", time.Second)
	tokens <- signedToken(t, "user-2", time.Hour)
	var fetches int32
	srv := tokenServer(tokens, &fetches)
	defer srv.Close()

	s := NewTokenSource(srv.URL, time.Second, zap.NewNop())

	notified := make(chan struct{}, 1)
	unsub := s.Subscribe(func() {
		notified <- struct{}{}
	})
	defer unsub()

	if _, err := s.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification after the subject changed")
	}
}

func TestToken_ImmediateClientErrorIsNotRetried(t *testing.T) {
	var fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Not signed in"}`))
	}))
	defer srv.Close()

	s := NewTokenSource(srv.URL, time.Second, zap.NewNop())
	if _, err := s.Token(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("4xx responses must not be retried, got %d fetches", n)
	}
}

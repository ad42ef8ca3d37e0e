package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yourorg/papertrade/internal/model"

	"go.uber.org/zap"
)

// TokenProvider supplies the current bearer credential for authenticated
// calls. The credential lifecycle itself lives with the identity provider.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TradingClient handles the authenticated backend endpoints: account balance
// and order submission.
type TradingClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     *zap.Logger
}

// NewTradingClient creates a new trading client.
func NewTradingClient(baseURL string, timeout time.Duration, tokens TokenProvider, logger *zap.Logger) *TradingClient {
	return &TradingClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
		logger: logger,
	}
}

func (c *TradingClient) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain credential: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// GetBalance retrieves the full account balance: cash plus holdings for
// every asset class.
func (c *TradingClient) GetBalance(ctx context.Context) (*model.Balance, error) {
	reqURL := fmt.Sprintf("%s/api/account/balance", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Failed to fetch balance", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, resp.Body)
	}

	var payload struct {
		Balance model.Balance `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode balance response: %w", err)
	}

	return &payload.Balance, nil
}

// PlaceOrder submits a simulated order with its confirmation-time price
// snapshot. The call is made exactly once; retries are the caller's decision.
func (c *TradingClient) PlaceOrder(ctx context.Context, order model.OrderRequest) (*model.ExecutedOrder, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/%s/order", c.baseURL, order.Class)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Order submission failed",
			zap.Error(err),
			zap.String("symbol", order.Symbol),
			zap.String("action", string(order.Action)))
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp.StatusCode, resp.Body)
		c.logger.Warn("Order rejected by backend",
			zap.Int("status_code", apiErr.StatusCode),
			zap.String("message", apiErr.Message),
			zap.String("symbol", order.Symbol))
		return nil, apiErr
	}

	var payload struct {
		Status string              `json:"status"`
		Trade  model.ExecutedOrder `json:"trade"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	return &payload.Trade, nil
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yourorg/papertrade/internal/model"

	"go.uber.org/zap"
)

// HistoryQuery narrows a history request to an explicit window and/or a
// candle-count cap. Times are epoch seconds; nil means unbounded.
type HistoryQuery struct {
	Start *int64
	End   *int64
	Limit int
}

// MarketDataClient handles communication with the backend's market data
// endpoints: spot prices, candle history, and market status.
type MarketDataClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewMarketDataClient creates a new market data client.
func NewMarketDataClient(baseURL string, timeout time.Duration, logger *zap.Logger) *MarketDataClient {
	return &MarketDataClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetPrice retrieves the latest spot price for a symbol.
func (c *MarketDataClient) GetPrice(ctx context.Context, class model.AssetClass, symbol string) (float64, error) {
	reqURL := fmt.Sprintf("%s/api/%s/price?symbol=%s", c.baseURL, class, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Failed to fetch price",
			zap.Error(err),
			zap.String("class", string(class)),
			zap.String("symbol", symbol))
		return 0, fmt.Errorf("failed to fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, decodeAPIError(resp.StatusCode, resp.Body)
	}

	var payload struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode price response: %w", err)
	}

	return payload.Price, nil
}

// GetHistory retrieves candle history for a symbol at a backend resolution.
func (c *MarketDataClient) GetHistory(ctx context.Context, class model.AssetClass, symbol, resolution string, q HistoryQuery) (*model.CandleSeries, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", resolution)
	if q.Start != nil {
		params.Set("start", strconv.FormatInt(*q.Start, 10))
	}
	if q.End != nil {
		params.Set("end", strconv.FormatInt(*q.End, 10))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	reqURL := fmt.Sprintf("%s/api/%s/history?%s", c.baseURL, class, params.Encode())
	c.logger.Debug("Fetching history", zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Failed to fetch history",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("resolution", resolution))
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, resp.Body)
	}

	var series model.CandleSeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}

	return &series, nil
}

// GetMarketStatus reports whether the market for an asset class is open.
// Crypto markets never close, so no request is made for them.
func (c *MarketDataClient) GetMarketStatus(ctx context.Context, class model.AssetClass) (bool, error) {
	if !class.HasTradingSession() {
		return true, nil
	}

	reqURL := fmt.Sprintf("%s/api/%s/market-status", c.baseURL, class)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to check market status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, decodeAPIError(resp.StatusCode, resp.Body)
	}

	var payload struct {
		IsOpen bool `json:"isOpen"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("failed to decode market status response: %w", err)
	}

	return payload.IsOpen, nil
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/papertrade/internal/model"

	"go.uber.org/zap"
)

func TestGetPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stocks/price" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("unexpected symbol %q", r.URL.Query().Get("symbol"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"AAPL","price":187.5}`))
	}))
	defer srv.Close()

	c := NewMarketDataClient(srv.URL, time.Second, zap.NewNop())
	price, err := c.GetPrice(context.Background(), model.AssetStocks, "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 187.5 {
		t.Errorf("expected 187.5, got %v", price)
	}
}

func TestGetPrice_BackendErrorSurfacesAsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Symbol not found"}`))
	}))
	defer srv.Close()

	c := NewMarketDataClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.GetPrice(context.Background(), model.AssetStocks, "NOPE")
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Symbol not found" {
		t.Errorf("unexpected error contents: %+v", apiErr)
	}
}

func TestGetHistory_EncodesWindowAndLimit(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"symbol":     r.URL.Query().Get("symbol"),
			"resolution": r.URL.Query().Get("resolution"),
			"start":      r.URL.Query().Get("start"),
			"end":        r.URL.Query().Get("end"),
			"limit":      r.URL.Query().Get("limit"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"BTC","history":[{"timestamp":1700000000,"close":50000}]}`))
	}))
	defer srv.Close()

	c := NewMarketDataClient(srv.URL, time.Second, zap.NewNop())
	start, end := int64(1699000000), int64(1700000000)
	series, err := c.GetHistory(context.Background(), model.AssetCrypto, "BTC", "30", HistoryQuery{
		Start: &start,
		End:   &end,
		Limit: 336,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if query["symbol"] != "BTC" || query["resolution"] != "30" {
		t.Errorf("unexpected symbol/resolution params: %v", query)
	}
	if query["start"] != "1699000000" || query["end"] != "1700000000" {
		t.Errorf("unexpected window params: %v", query)
	}
	if query["limit"] != "336" {
		t.Errorf("unexpected limit param: %v", query)
	}
	if len(series.Candles) != 1 || series.Candles[0].Close != 50000 {
		t.Errorf("unexpected series: %+v", series)
	}
}

func TestGetHistory_OmitsUnsetWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("start") || r.URL.Query().Has("end") {
			t.Error("limit-only request must not send a window")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"BTC","history":[]}`))
	}))
	defer srv.Close()

	c := NewMarketDataClient(srv.URL, time.Second, zap.NewNop())
	if _, err := c.GetHistory(context.Background(), model.AssetCrypto, "BTC", "5", HistoryQuery{Limit: 288}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetMarketStatus_SkipsRequestForAlwaysOpenClasses(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isOpen":false}`))
	}))
	defer srv.Close()

	c := NewMarketDataClient(srv.URL, time.Second, zap.NewNop())

	open, err := c.GetMarketStatus(context.Background(), model.AssetCrypto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !open {
		t.Error("crypto should always report open")
	}
	if requests != 0 {
		t.Errorf("crypto status must not hit the backend, got %d requests", requests)
	}

	open, err = c.GetMarketStatus(context.Background(), model.AssetStocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open || requests != 1 {
		t.Errorf("expected one request reporting closed, open=%v requests=%d", open, requests)
	}
}

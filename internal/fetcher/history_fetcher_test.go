package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/papertrade/internal/client"
	"github.com/yourorg/papertrade/internal/model"

	"go.uber.org/zap"
)

type recordedCall struct {
	class      model.AssetClass
	symbol     string
	resolution string
	query      client.HistoryQuery
}

// fakeHistoryAPI records every request and serves canned responses in order.
type fakeHistoryAPI struct {
	calls     []recordedCall
	responses []*model.CandleSeries
	err       error
}

func (f *fakeHistoryAPI) GetHistory(_ context.Context, class model.AssetClass, symbol, resolution string, q client.HistoryQuery) (*model.CandleSeries, error) {
	f.calls = append(f.calls, recordedCall{class: class, symbol: symbol, resolution: resolution, query: q})
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &model.CandleSeries{Symbol: symbol}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func candlesAt(timestamps ...int64) []model.Candle {
	out := make([]model.Candle, 0, len(timestamps))
	for _, ts := range timestamps {
		out = append(out, model.Candle{Timestamp: ts, Close: 1})
	}
	return out
}

func keyFor(class model.AssetClass, symbol string, r model.RangeKey) model.CacheKey {
	return model.CacheKey{
		SymbolKey: model.SymbolKey{Class: class, Symbol: symbol},
		Range:     r,
	}
}

var testNow = time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

func TestFetch_WeekIsPlainLookback(t *testing.T) {
	api := &fakeHistoryAPI{}
	f := NewHistoryFetcher(api, zap.NewNop())

	_, err := f.Fetch(context.Background(), keyFor(model.AssetCrypto, "BTC", model.RangeWeek), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(api.calls) != 1 {
		t.Fatalf("expected 1 request, got %d", len(api.calls))
	}
	call := api.calls[0]
	if call.resolution != "30" {
		t.Errorf("expected resolution 30, got %q", call.resolution)
	}
	if call.query.Start == nil || call.query.End == nil {
		t.Fatal("expected explicit window")
	}
	if *call.query.End-*call.query.Start != 7*secondsPerDay {
		t.Errorf("expected 7 day window, got %d seconds", *call.query.End-*call.query.Start)
	}
	if *call.query.End != testNow.Unix() {
		t.Errorf("window should end now, got %d", *call.query.End)
	}
}

func TestFetch_MonthIsThirtyDayLookback(t *testing.T) {
	api := &fakeHistoryAPI{}
	f := NewHistoryFetcher(api, zap.NewNop())

	if _, err := f.Fetch(context.Background(), keyFor(model.AssetStocks, "AAPL", model.RangeMonth), testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := api.calls[0]
	if *call.query.End-*call.query.Start != 30*secondsPerDay {
		t.Errorf("expected 30 day window, got %d seconds", *call.query.End-*call.query.Start)
	}
}

func TestFetch_YTDStartsAtJanuaryFirstUTC(t *testing.T) {
	api := &fakeHistoryAPI{}
	f := NewHistoryFetcher(api, zap.NewNop())

	if _, err := f.Fetch(context.Background(), keyFor(model.AssetStocks, "AAPL", model.RangeYTD), testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	if got := *api.calls[0].query.Start; got != want {
		t.Errorf("expected start %d, got %d", want, got)
	}
}

func TestFetch_YearIsCalendarRelative(t *testing.T) {
	api := &fakeHistoryAPI{}
	f := NewHistoryFetcher(api, zap.NewNop())

	if _, err := f.Fetch(context.Background(), keyFor(model.AssetStocks, "AAPL", model.RangeYear), testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC).Unix()
	if got := *api.calls[0].query.Start; got != want {
		t.Errorf("expected start %d, got %d", want, got)
	}
}

func TestFetch_ThreeMonthIsLimitOnly(t *testing.T) {
	api := &fakeHistoryAPI{}
	f := NewHistoryFetcher(api, zap.NewNop())

	if _, err := f.Fetch(context.Background(), keyFor(model.AssetStocks, "AAPL", model.Range3Month), testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := api.calls[0]
	if call.query.Start != nil || call.query.End != nil {
		t.Error("expected no explicit window for 3M")
	}
	if call.query.Limit != 540 {
		t.Errorf("expected limit 540, got %d", call.query.Limit)
	}
}

func TestFetch_DayOnCryptoIsLimitOnly(t *testing.T) {
	api := &fakeHistoryAPI{}
	f := NewHistoryFetcher(api, zap.NewNop())

	if _, err := f.Fetch(context.Background(), keyFor(model.AssetCrypto, "BTC", model.RangeDay), testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(api.calls) != 1 {
		t.Fatalf("crypto 1D should not probe, got %d requests", len(api.calls))
	}
	call := api.calls[0]
	if call.query.Start != nil || call.query.End != nil {
		t.Error("expected no explicit window for crypto 1D")
	}
	if call.resolution != "5" {
		t.Errorf("expected resolution 5, got %q", call.resolution)
	}
}

func TestFetch_DayOnStocksProbesSession(t *testing.T) {
	sessionStart := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC).Unix()
	api := &fakeHistoryAPI{
		responses: []*model.CandleSeries{
			{Symbol: "AAPL", Candles: candlesAt(sessionStart)},
			{Symbol: "AAPL", Candles: candlesAt(sessionStart + 3600)},
		},
	}
	f := NewHistoryFetcher(api, zap.NewNop())

	series, err := f.Fetch(context.Background(), keyFor(model.AssetStocks, "AAPL", model.RangeDay), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(api.calls) != 2 {
		t.Fatalf("expected probe plus intraday request, got %d requests", len(api.calls))
	}

	probe := api.calls[0]
	if probe.resolution != "D" || probe.query.Limit != 1 {
		t.Errorf("probe should ask for one daily candle, got resolution %q limit %d", probe.resolution, probe.query.Limit)
	}

	intraday := api.calls[1]
	if intraday.resolution != "5" {
		t.Errorf("expected intraday resolution 5, got %q", intraday.resolution)
	}
	if *intraday.query.Start != sessionStart {
		t.Errorf("window should open at session start %d, got %d", sessionStart, *intraday.query.Start)
	}
	if *intraday.query.End != sessionStart+secondsPerDay {
		t.Errorf("window should close one day after session start, got %d", *intraday.query.End)
	}
	if len(series.Candles) != 1 {
		t.Errorf("expected intraday candles returned, got %d", len(series.Candles))
	}
}

func TestFetch_DayOnStocksEmptyProbeFallsBack(t *testing.T) {
	api := &fakeHistoryAPI{
		responses: []*model.CandleSeries{
			{Symbol: "AAPL"},
			{Symbol: "AAPL", Candles: candlesAt(100, 200)},
		},
	}
	f := NewHistoryFetcher(api, zap.NewNop())

	series, err := f.Fetch(context.Background(), keyFor(model.AssetStocks, "AAPL", model.RangeDay), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fallback := api.calls[1]
	if fallback.query.Start != nil || fallback.query.End != nil {
		t.Error("fallback request should be limit-only")
	}
	if len(series.Candles) != 2 {
		t.Errorf("expected fallback candles, got %d", len(series.Candles))
	}
}

func TestFetch_TruncatesOverDelivery(t *testing.T) {
	maxCandles := model.ResolutionFor(model.Range5Year).MaxCandles
	timestamps := make([]int64, maxCandles+25)
	for i := range timestamps {
		timestamps[i] = int64(i)
	}
	api := &fakeHistoryAPI{
		responses: []*model.CandleSeries{
			{Symbol: "AAPL", Candles: candlesAt(timestamps...)},
		},
	}
	f := NewHistoryFetcher(api, zap.NewNop())

	series, err := f.Fetch(context.Background(), keyFor(model.AssetStocks, "AAPL", model.Range5Year), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Candles) != maxCandles {
		t.Errorf("expected %d candles, got %d", maxCandles, len(series.Candles))
	}
	if series.Candles[len(series.Candles)-1].Timestamp != int64(maxCandles+24) {
		t.Error("truncation should keep the most recent candles")
	}
}

func TestFetch_SetsDisplayResolution(t *testing.T) {
	api := &fakeHistoryAPI{
		responses: []*model.CandleSeries{
			{Symbol: "BTC", Resolution: "raw", Candles: candlesAt(100)},
		},
	}
	f := NewHistoryFetcher(api, zap.NewNop())

	series, err := f.Fetch(context.Background(), keyFor(model.AssetCrypto, "BTC", model.RangeWeek), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Resolution != "30" {
		t.Errorf("expected resolution 30, got %q", series.Resolution)
	}
}

func TestFetch_PropagatesBackendError(t *testing.T) {
	api := &fakeHistoryAPI{err: errors.New("backend down")}
	f := NewHistoryFetcher(api, zap.NewNop())

	if _, err := f.Fetch(context.Background(), keyFor(model.AssetStocks, "AAPL", model.RangeDay), testNow); err == nil {
		t.Fatal("expected error")
	}
}

package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/papertrade/internal/client"
	"github.com/yourorg/papertrade/internal/model"

	"go.uber.org/zap"
)

const secondsPerDay = 24 * 60 * 60

// historyAPI is the slice of the market data client the fetcher needs.
type historyAPI interface {
	GetHistory(ctx context.Context, class model.AssetClass, symbol, resolution string, q client.HistoryQuery) (*model.CandleSeries, error)
}

// HistoryFetcher turns a (class, symbol, range) request into one or more
// backend history requests and assembles a single candle series. Failures
// resolve to an error so callers keep the last good cached series.
type HistoryFetcher struct {
	api    historyAPI
	logger *zap.Logger
}

// NewHistoryFetcher creates a history fetcher backed by the market data client.
func NewHistoryFetcher(api historyAPI, logger *zap.Logger) *HistoryFetcher {
	return &HistoryFetcher{api: api, logger: logger}
}

// Fetch retrieves the candle series for a cache key. The window is derived
// from the display range and the supplied wall-clock time:
//
//   - 1W and 1M are plain lookbacks from now.
//   - YTD and 1Y are calendar-relative, anchored in UTC.
//   - 3M and 5Y ask for the most recent N candles with no explicit window.
//   - 1D on session-based classes aligns to the most recent trading session,
//     resolved via a daily-resolution probe; on always-open classes it is a
//     most-recent-N request like 3M.
func (f *HistoryFetcher) Fetch(ctx context.Context, key model.CacheKey, now time.Time) (*model.CandleSeries, error) {
	spec := model.ResolutionFor(key.Range)

	series, err := f.fetchRange(ctx, key, spec, now)
	if err != nil {
		f.logger.Debug("History fetch failed",
			zap.Error(err),
			zap.String("key", key.String()))
		return nil, err
	}

	// The backend is supposed to enforce the limit, but do not rely on it.
	series.SortCandles()
	series.Truncate(spec.MaxCandles)
	series.Resolution = spec.Resolution
	return series, nil
}

func (f *HistoryFetcher) fetchRange(ctx context.Context, key model.CacheKey, spec model.ResolutionSpec, now time.Time) (*model.CandleSeries, error) {
	end := now.Unix()

	switch key.Range {
	case model.RangeDay:
		if key.Class.HasTradingSession() {
			return f.fetchSessionDay(ctx, key, spec)
		}
		return f.api.GetHistory(ctx, key.Class, key.Symbol, spec.Resolution, client.HistoryQuery{Limit: spec.MaxCandles})

	case model.Range3Month, model.Range5Year:
		return f.api.GetHistory(ctx, key.Class, key.Symbol, spec.Resolution, client.HistoryQuery{Limit: spec.MaxCandles})

	case model.RangeWeek:
		start := end - 7*secondsPerDay
		return f.api.GetHistory(ctx, key.Class, key.Symbol, spec.Resolution, client.HistoryQuery{Start: &start, End: &end, Limit: spec.MaxCandles})

	case model.RangeMonth:
		start := end - 30*secondsPerDay
		return f.api.GetHistory(ctx, key.Class, key.Symbol, spec.Resolution, client.HistoryQuery{Start: &start, End: &end, Limit: spec.MaxCandles})

	case model.RangeYTD:
		start := time.Date(now.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
		return f.api.GetHistory(ctx, key.Class, key.Symbol, spec.Resolution, client.HistoryQuery{Start: &start, End: &end, Limit: spec.MaxCandles})

	case model.RangeYear:
		utc := now.UTC()
		start := time.Date(utc.Year()-1, utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Unix()
		return f.api.GetHistory(ctx, key.Class, key.Symbol, spec.Resolution, client.HistoryQuery{Start: &start, End: &end, Limit: spec.MaxCandles})
	}

	return nil, fmt.Errorf("unsupported range: %q", key.Range)
}

// fetchSessionDay resolves the most recent trading session via a daily probe
// and requests the intraday window [sessionStart, sessionStart+24h). Session
// markets gap overnight, so a plain now-24h lookback would straddle two
// sessions or land entirely in the closed gap.
func (f *HistoryFetcher) fetchSessionDay(ctx context.Context, key model.CacheKey, spec model.ResolutionSpec) (*model.CandleSeries, error) {
	probe, err := f.api.GetHistory(ctx, key.Class, key.Symbol, "D", client.HistoryQuery{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("session probe failed: %w", err)
	}
	if len(probe.Candles) == 0 {
		// No daily data to anchor on; fall back to the most recent N.
		return f.api.GetHistory(ctx, key.Class, key.Symbol, spec.Resolution, client.HistoryQuery{Limit: spec.MaxCandles})
	}

	sessionStart := probe.Candles[len(probe.Candles)-1].Timestamp
	sessionEnd := sessionStart + secondsPerDay
	return f.api.GetHistory(ctx, key.Class, key.Symbol, spec.Resolution, client.HistoryQuery{
		Start: &sessionStart,
		End:   &sessionEnd,
		Limit: spec.MaxCandles,
	})
}

package store

import (
	"testing"

	"github.com/yourorg/papertrade/internal/model"

	"go.uber.org/zap"
)

func dayKey(symbol string) model.CacheKey {
	return model.CacheKey{
		SymbolKey: model.SymbolKey{Class: model.AssetStocks, Symbol: symbol},
		Range:     model.RangeDay,
	}
}

func seriesOf(timestamps ...int64) *model.CandleSeries {
	candles := make([]model.Candle, 0, len(timestamps))
	for _, ts := range timestamps {
		candles = append(candles, model.Candle{Timestamp: ts, Close: float64(ts)})
	}
	return &model.CandleSeries{Symbol: "AAPL", Resolution: "5", Candles: candles}
}

func TestCandleStore_PutAndGet(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	key := dayKey("AAPL")

	s.Put(key, seriesOf(100, 200, 300))

	got, ok := s.Get(key)
	if !ok {
		t.Fatal("expected cached series")
	}
	if len(got.Candles) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(got.Candles))
	}
}

func TestCandleStore_MissReturnsFalse(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	if _, ok := s.Get(dayKey("AAPL")); ok {
		t.Error("expected miss on empty store")
	}
}

func TestCandleStore_PutSortsOutOfOrderCandles(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	key := dayKey("AAPL")

	s.Put(key, seriesOf(300, 100, 200))

	got, _ := s.Get(key)
	for i := 1; i < len(got.Candles); i++ {
		if got.Candles[i-1].Timestamp > got.Candles[i].Timestamp {
			t.Fatalf("candles not ascending at index %d", i)
		}
	}
}

func TestCandleStore_PutTruncatesToRangeCap(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	key := dayKey("AAPL")
	maxCandles := model.ResolutionFor(model.RangeDay).MaxCandles

	timestamps := make([]int64, maxCandles+50)
	for i := range timestamps {
		timestamps[i] = int64(i)
	}
	s.Put(key, seriesOf(timestamps...))

	got, _ := s.Get(key)
	if len(got.Candles) != maxCandles {
		t.Fatalf("expected %d candles after truncation, got %d", maxCandles, len(got.Candles))
	}
	// The oldest candles are dropped, not the newest
	if got.Candles[len(got.Candles)-1].Timestamp != int64(maxCandles+49) {
		t.Errorf("expected newest candle retained, got timestamp %d", got.Candles[len(got.Candles)-1].Timestamp)
	}
	if got.Candles[0].Timestamp != 50 {
		t.Errorf("expected oldest 50 candles dropped, first timestamp %d", got.Candles[0].Timestamp)
	}
}

func TestCandleStore_PutIsIdempotent(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	key := dayKey("AAPL")

	s.Put(key, seriesOf(100, 200, 300))
	first, _ := s.Get(key)

	s.Put(key, seriesOf(100, 200, 300))
	second, _ := s.Get(key)

	if len(first.Candles) != len(second.Candles) {
		t.Fatalf("repeated put changed length: %d vs %d", len(first.Candles), len(second.Candles))
	}
	for i := range first.Candles {
		if first.Candles[i] != second.Candles[i] {
			t.Fatalf("repeated put changed candle %d", i)
		}
	}
}

func TestCandleStore_EntriesAreIndependentPerRange(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	day := dayKey("AAPL")
	week := model.CacheKey{SymbolKey: day.SymbolKey, Range: model.RangeWeek}

	s.Put(day, seriesOf(100))
	s.Put(week, seriesOf(200, 300))

	gotDay, _ := s.Get(day)
	gotWeek, _ := s.Get(week)
	if len(gotDay.Candles) != 1 || len(gotWeek.Candles) != 2 {
		t.Error("entries for different ranges of the same symbol interfered")
	}
}

func TestCandleStore_GetReturnsCopy(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	key := dayKey("AAPL")
	s.Put(key, seriesOf(100, 200))

	first, _ := s.Get(key)
	first.Candles[0].Close = -1

	second, _ := s.Get(key)
	if second.Candles[0].Close == -1 {
		t.Error("mutating a returned series leaked into the cache")
	}
}

func TestCandleStore_Invalidate(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	key := dayKey("AAPL")
	s.Put(key, seriesOf(100))

	s.Invalidate(key)

	if _, ok := s.Get(key); ok {
		t.Error("expected miss after invalidation")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, len=%d", s.Len())
	}
}

func TestCandleStore_SubscribeNotifiesOnPut(t *testing.T) {
	s := NewCandleStore(zap.NewNop())
	key := dayKey("AAPL")

	var notified []model.CacheKey
	unsub := s.Subscribe(func(k model.CacheKey) {
		notified = append(notified, k)
	})

	s.Put(key, seriesOf(100))
	unsub()
	s.Put(key, seriesOf(200))

	if len(notified) != 1 || notified[0] != key {
		t.Errorf("expected one notification for %v, got %v", key, notified)
	}
}

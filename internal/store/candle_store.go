package store

import (
	"sync"

	"github.com/yourorg/papertrade/internal/model"

	"go.uber.org/zap"
)

// CandleStore is the in-memory cache of candle series keyed by
// (class, symbol, range). Entries are only ever replaced as a whole; a failed
// refresh never touches the last good series for a key. The cache lives for
// the session only and is never persisted.
type CandleStore struct {
	mu      sync.RWMutex
	entries map[model.CacheKey]*model.CandleSeries
	logger  *zap.Logger

	subMu   sync.Mutex
	subs    map[int]func(model.CacheKey)
	nextSub int
}

// NewCandleStore creates an empty candle cache.
func NewCandleStore(logger *zap.Logger) *CandleStore {
	return &CandleStore{
		entries: make(map[model.CacheKey]*model.CandleSeries),
		logger:  logger,
		subs:    make(map[int]func(model.CacheKey)),
	}
}

// Get returns a copy of the cached series for a key. It never triggers a
// fetch; loading on a miss is the caller's decision.
func (s *CandleStore) Get(key model.CacheKey) (*model.CandleSeries, bool) {
	s.mu.RLock()
	series, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return series.Clone(), true
}

// Put replaces the entry for a key. The input is copied, sorted defensively,
// and truncated to the range's candle cap keeping the most recent candles.
func (s *CandleStore) Put(key model.CacheKey, series *model.CandleSeries) {
	if series == nil {
		return
	}

	stored := series.Clone()
	stored.SortCandles()
	stored.Truncate(model.ResolutionFor(key.Range).MaxCandles)

	s.mu.Lock()
	s.entries[key] = stored
	s.mu.Unlock()

	s.logger.Debug("Candle series cached",
		zap.String("key", key.String()),
		zap.Int("candles", len(stored.Candles)))
	s.notify(key)
}

// Invalidate evicts the entry for a key, forcing the next caller to refetch.
func (s *CandleStore) Invalidate(key model.CacheKey) {
	s.mu.Lock()
	_, existed := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	if existed {
		s.notify(key)
	}
}

// Len returns the number of cached entries.
func (s *CandleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers a callback invoked with the key of every cache write
// or eviction. The returned function cancels the subscription.
func (s *CandleStore) Subscribe(fn func(model.CacheKey)) func() {
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

func (s *CandleStore) notify(key model.CacheKey) {
	s.subMu.Lock()
	callbacks := make([]func(model.CacheKey), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.subMu.Unlock()

	for _, fn := range callbacks {
		fn(key)
	}
}

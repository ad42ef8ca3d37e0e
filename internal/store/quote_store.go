package store

import (
	"math"
	"sync"
	"time"

	"github.com/yourorg/papertrade/internal/model"
)

// Quote is the latest known spot price for a symbol. Available is false when
// the most recent fetch failed: the last price is kept for display but must
// not be treated as fresh for order validation.
type Quote struct {
	Price     float64   `json:"price"`
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuoteStore holds the latest spot price per symbol. The price ticker is its
// single writer.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[model.SymbolKey]Quote

	subMu   sync.Mutex
	subs    map[int]func(model.SymbolKey)
	nextSub int
}

// NewQuoteStore creates an empty quote store.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		quotes: make(map[model.SymbolKey]Quote),
		subs:   make(map[int]func(model.SymbolKey)),
	}
}

// SetPrice records a successful price fetch.
func (s *QuoteStore) SetPrice(key model.SymbolKey, price float64, at time.Time) {
	s.mu.Lock()
	s.quotes[key] = Quote{Price: price, Available: true, UpdatedAt: at}
	s.mu.Unlock()
	s.notify(key)
}

// MarkUnavailable records a failed price fetch. The last price is retained
// for display, but the quote is flagged so validation refuses it.
func (s *QuoteStore) MarkUnavailable(key model.SymbolKey) {
	s.mu.Lock()
	q, ok := s.quotes[key]
	if !ok {
		q = Quote{Price: math.NaN()}
	}
	q.Available = false
	s.quotes[key] = q
	s.mu.Unlock()
	s.notify(key)
}

// Quote returns the latest quote for a symbol.
func (s *QuoteStore) Quote(key model.SymbolKey) (Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[key]
	return q, ok
}

// Subscribe registers a callback invoked with the key of every quote update.
func (s *QuoteStore) Subscribe(fn func(model.SymbolKey)) func() {
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

func (s *QuoteStore) notify(key model.SymbolKey) {
	s.subMu.Lock()
	callbacks := make([]func(model.SymbolKey), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.subMu.Unlock()

	for _, fn := range callbacks {
		fn(key)
	}
}

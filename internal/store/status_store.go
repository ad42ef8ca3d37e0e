package store

import (
	"sync"

	"github.com/yourorg/papertrade/internal/model"
)

// StatusStore holds the last reported market-open flag per asset class.
// Crypto markets never close and default to open; session-based classes
// default to closed until a status fetch says otherwise, so orders are
// blocked rather than allowed on unknown status.
type StatusStore struct {
	mu   sync.RWMutex
	open map[model.AssetClass]bool
}

// NewStatusStore creates a status store with crypto marked open.
func NewStatusStore() *StatusStore {
	return &StatusStore{
		open: map[model.AssetClass]bool{
			model.AssetCrypto: true,
		},
	}
}

// SetOpen records the reported status for a class.
func (s *StatusStore) SetOpen(class model.AssetClass, open bool) {
	s.mu.Lock()
	s.open[class] = open
	s.mu.Unlock()
}

// IsOpen reports whether the market for a class is currently open.
func (s *StatusStore) IsOpen(class model.AssetClass) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open[class]
}

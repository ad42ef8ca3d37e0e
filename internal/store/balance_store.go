package store

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/papertrade/internal/model"

	"go.uber.org/zap"
)

// BalanceFetcher retrieves the full account balance from the backend.
type BalanceFetcher interface {
	GetBalance(ctx context.Context) (*model.Balance, error)
}

// BalanceStore caches the account balance. The only legal mutation is a
// wholesale refetch; the balance is never patched locally, which keeps it
// consistent no matter how order attempts interleave.
type BalanceStore struct {
	fetcher BalanceFetcher
	logger  *zap.Logger

	mu        sync.RWMutex
	balance   *model.Balance
	fetchedAt time.Time

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewBalanceStore creates a balance store backed by the trading client.
func NewBalanceStore(fetcher BalanceFetcher, logger *zap.Logger) *BalanceStore {
	return &BalanceStore{
		fetcher: fetcher,
		logger:  logger,
		subs:    make(map[int]func()),
	}
}

// Refresh refetches the balance in full and replaces the cached value.
// On failure the previous balance is retained.
func (s *BalanceStore) Refresh(ctx context.Context) error {
	balance, err := s.fetcher.GetBalance(ctx)
	if err != nil {
		s.logger.Warn("Balance refresh failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.balance = balance
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.notify()
	return nil
}

// Get returns a copy of the cached balance, or false when none has been
// fetched this session.
func (s *BalanceStore) Get() (*model.Balance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.balance == nil {
		return nil, false
	}
	return s.balance.Clone(), true
}

// Clear drops the cached balance, used when the signed-in identity changes.
func (s *BalanceStore) Clear() {
	s.mu.Lock()
	s.balance = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers a callback invoked after every balance change.
func (s *BalanceStore) Subscribe(fn func()) func() {
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

func (s *BalanceStore) notify() {
	s.subMu.Lock()
	callbacks := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.subMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

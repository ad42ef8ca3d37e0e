package service

import (
	"fmt"
	"sync"

	"github.com/yourorg/papertrade/internal/model"
	"github.com/yourorg/papertrade/internal/scheduler"

	"go.uber.org/zap"
)

// Selection is the currently viewed (class, symbol, range).
type Selection struct {
	Class  model.AssetClass `json:"class"`
	Symbol string           `json:"symbol"`
	Range  model.RangeKey   `json:"range"`
}

// SessionService owns the active selection and visibility state, and drives
// the price ticker and history scheduler when either changes. Selection and
// timer state are session-local; nothing here survives a restart.
type SessionService struct {
	ticker  *scheduler.PriceTicker
	history *scheduler.HistoryScheduler
	gate    *scheduler.VisibilityGate
	logger  *zap.Logger

	mu        sync.RWMutex
	selection Selection
}

// NewSessionService creates the session coordinator and activates the
// initial selection.
func NewSessionService(
	ticker *scheduler.PriceTicker,
	history *scheduler.HistoryScheduler,
	gate *scheduler.VisibilityGate,
	initial Selection,
	logger *zap.Logger,
) (*SessionService, error) {
	s := &SessionService{
		ticker:  ticker,
		history: history,
		gate:    gate,
		logger:  logger,
	}
	if err := s.Select(initial); err != nil {
		return nil, err
	}
	return s, nil
}

// Select switches the viewed symbol and range. Timers for the old key are
// torn down before any are armed for the new one; both happen before Select
// returns control to the caller.
func (s *SessionService) Select(sel Selection) error {
	if !model.KnownSymbol(sel.Class, sel.Symbol) {
		return fmt.Errorf("unknown symbol %q for class %q", sel.Symbol, sel.Class)
	}
	if _, err := model.ParseRangeKey(string(sel.Range)); err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.selection
	s.selection = sel
	s.mu.Unlock()

	if previous != sel {
		s.logger.Info("Selection changed",
			zap.String("class", string(sel.Class)),
			zap.String("symbol", sel.Symbol),
			zap.String("range", string(sel.Range)))
	}

	symKey := model.SymbolKey{Class: sel.Class, Symbol: sel.Symbol}
	if previous.Class != sel.Class || previous.Symbol != sel.Symbol {
		s.ticker.Watch(symKey)
	}
	s.history.Activate(model.CacheKey{SymbolKey: symKey, Range: sel.Range})
	return nil
}

// SetVisibility reports a page visibility change from the UI.
func (s *SessionService) SetVisibility(visible bool) {
	s.gate.Set(visible)
}

// Selection returns the current selection.
func (s *SessionService) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Close tears down both refresh loops.
func (s *SessionService) Close() {
	s.ticker.Close()
	s.history.Close()
}

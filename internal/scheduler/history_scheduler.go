package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/yourorg/papertrade/internal/fetcher"
	"github.com/yourorg/papertrade/internal/model"
	"github.com/yourorg/papertrade/internal/store"

	"go.uber.org/zap"
)

// statusAPI is the slice of the market data client the scheduler needs for
// the market-status piggyback.
type statusAPI interface {
	GetMarketStatus(ctx context.Context, class model.AssetClass) (bool, error)
}

// HistoryScheduler keeps the active (symbol, range) candle series fresh.
// On activation it refreshes immediately, then arms a one-shot timer to the
// next top-of-minute boundary followed by a 60s cadence, so refreshes land
// near :00 no matter when the session started. Each refresh also updates the
// market-open flag for session-based classes, matching how the original
// refresh cycle bundled the two.
//
// Timers are torn down entirely when the page hides or the key changes.
// A tick is skipped when the previous refresh for the key is still in
// flight, and a refresh that completes after a key change is discarded
// instead of written into the new key's slot.
type HistoryScheduler struct {
	fetcher *fetcher.HistoryFetcher
	status  statusAPI
	candles *store.CandleStore
	open    *store.StatusStore
	gate    *VisibilityGate
	clk     clock.Clock
	logger  *zap.Logger
	period  time.Duration
	timeout time.Duration

	mu        sync.Mutex
	active    model.CacheKey
	hasActive bool
	task      *Task
	inFlight  bool

	unsubGate func()
}

// NewHistoryScheduler creates a history scheduler wired to the visibility gate.
func NewHistoryScheduler(
	f *fetcher.HistoryFetcher,
	status statusAPI,
	candles *store.CandleStore,
	open *store.StatusStore,
	gate *VisibilityGate,
	clk clock.Clock,
	period, timeout time.Duration,
	logger *zap.Logger,
) *HistoryScheduler {
	s := &HistoryScheduler{
		fetcher: f,
		status:  status,
		candles: candles,
		open:    open,
		gate:    gate,
		clk:     clk,
		logger:  logger,
		period:  period,
		timeout: timeout,
	}
	s.unsubGate = gate.Subscribe(s.onVisibility)
	return s
}

// Activate switches the refresh loop to a new key. All timers for the old
// key are canceled before any work for the new key starts.
func (s *HistoryScheduler) Activate(key model.CacheKey) {
	s.mu.Lock()
	s.stopLocked()
	s.active = key
	s.hasActive = true
	s.inFlight = false
	visible := s.gate.Visible()
	s.mu.Unlock()

	if !visible {
		return
	}
	go s.refresh(key)
	s.arm(key)
}

// Close stops the refresh loop and detaches from the visibility gate.
func (s *HistoryScheduler) Close() {
	s.unsubGate()
	s.mu.Lock()
	s.stopLocked()
	s.hasActive = false
	s.mu.Unlock()
}

func (s *HistoryScheduler) onVisibility(visible bool) {
	s.mu.Lock()
	if !s.hasActive {
		s.mu.Unlock()
		return
	}
	key := s.active
	if !visible {
		s.stopLocked()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	go s.refresh(key)
	s.arm(key)
}

// arm schedules the aligned one-shot followed by the recurring cadence.
func (s *HistoryScheduler) arm(key model.CacheKey) {
	s.mu.Lock()
	s.stopLocked()
	delay := UntilNextMinute(s.clk.Now())
	s.task = StartTask(s.clk, delay, s.period, func() {
		s.refresh(key)
	})
	s.mu.Unlock()
}

func (s *HistoryScheduler) stopLocked() {
	if s.task != nil {
		s.task.Stop()
		s.task = nil
	}
}

// refresh runs one refresh cycle for a key. It is tagged with the key it was
// created for; the result is only written back while that key is still the
// active one.
func (s *HistoryScheduler) refresh(key model.CacheKey) {
	if !s.gate.Visible() {
		return
	}

	s.mu.Lock()
	if !s.hasActive || s.active != key {
		s.mu.Unlock()
		return
	}
	if s.inFlight {
		s.logger.Debug("Refresh still in flight, skipping tick",
			zap.String("key", key.String()))
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if key.Class.HasTradingSession() {
		if isOpen, err := s.status.GetMarketStatus(ctx, key.Class); err != nil {
			s.logger.Debug("Market status check failed",
				zap.Error(err),
				zap.String("class", string(key.Class)))
		} else {
			s.open.SetOpen(key.Class, isOpen)
		}
	}

	series, err := s.fetcher.Fetch(ctx, key, s.clk.Now())
	if err != nil {
		// Last-good-value law: the cached series for this key is untouched
		// and the next scheduled tick retries.
		s.logger.Warn("History refresh failed",
			zap.Error(err),
			zap.String("key", key.String()))
		return
	}

	s.mu.Lock()
	current := s.hasActive && s.active == key
	s.mu.Unlock()
	if !current {
		s.logger.Debug("Discarding refresh for inactive key",
			zap.String("key", key.String()))
		return
	}

	s.candles.Put(key, series)
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/yourorg/papertrade/internal/model"
	"github.com/yourorg/papertrade/internal/store"

	"go.uber.org/zap"
)

// priceAPI is the slice of the market data client the ticker needs.
type priceAPI interface {
	GetPrice(ctx context.Context, class model.AssetClass, symbol string) (float64, error)
}

// PriceTicker keeps one authoritative spot price for the actively viewed
// symbol: an immediate fetch on selection, then a fixed polling cadence while
// the page is visible. Hidden pages poll nothing; on becoming visible again
// it fetches once immediately before the cadence resumes.
type PriceTicker struct {
	api      priceAPI
	quotes   *store.QuoteStore
	gate     *VisibilityGate
	clk      clock.Clock
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration

	mu        sync.Mutex
	active    model.SymbolKey
	hasActive bool
	task      *Task

	unsubGate func()
}

// NewPriceTicker creates a price ticker and wires it to the visibility gate.
func NewPriceTicker(api priceAPI, quotes *store.QuoteStore, gate *VisibilityGate, clk clock.Clock, interval, timeout time.Duration, logger *zap.Logger) *PriceTicker {
	t := &PriceTicker{
		api:      api,
		quotes:   quotes,
		gate:     gate,
		clk:      clk,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
	t.unsubGate = gate.Subscribe(t.onVisibility)
	return t
}

// Watch switches polling to a new symbol. Timers for the previous symbol are
// torn down before the cold-start fetch for the new one.
func (t *PriceTicker) Watch(key model.SymbolKey) {
	t.mu.Lock()
	t.stopLocked()
	t.active = key
	t.hasActive = true
	visible := t.gate.Visible()
	t.mu.Unlock()

	if !visible {
		return
	}
	t.fetch(key)
	t.arm(key)
}

// Close stops polling entirely and detaches from the visibility gate.
func (t *PriceTicker) Close() {
	t.unsubGate()
	t.mu.Lock()
	t.stopLocked()
	t.hasActive = false
	t.mu.Unlock()
}

func (t *PriceTicker) onVisibility(visible bool) {
	t.mu.Lock()
	if !t.hasActive {
		t.mu.Unlock()
		return
	}
	key := t.active
	if !visible {
		t.stopLocked()
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	// Catch-up: one immediate fetch, then the normal cadence.
	t.fetch(key)
	t.arm(key)
}

func (t *PriceTicker) arm(key model.SymbolKey) {
	t.mu.Lock()
	t.stopLocked()
	t.task = StartTask(t.clk, t.interval, t.interval, func() {
		t.fetch(key)
	})
	t.mu.Unlock()
}

func (t *PriceTicker) stopLocked() {
	if t.task != nil {
		t.task.Stop()
		t.task = nil
	}
}

// fetch polls the spot price once. The result is written back only if the
// request's symbol is still the active one, so a slow response for a
// previously viewed symbol cannot clobber the current quote.
func (t *PriceTicker) fetch(key model.SymbolKey) {
	if !t.gate.Visible() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	price, err := t.api.GetPrice(ctx, key.Class, key.Symbol)

	t.mu.Lock()
	current := t.hasActive && t.active == key
	t.mu.Unlock()
	if !current {
		return
	}

	if err != nil {
		// Transient: keep the last displayed value, flag it for validation,
		// and let the next tick retry.
		t.logger.Debug("Price fetch failed",
			zap.Error(err),
			zap.String("symbol", key.Symbol))
		t.quotes.MarkUnavailable(key)
		return
	}

	t.quotes.SetPrice(key, price, t.clk.Now())
}

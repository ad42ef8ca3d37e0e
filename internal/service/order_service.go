package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"sync"

	"github.com/yourorg/papertrade/internal/client"
	"github.com/yourorg/papertrade/internal/model"
	"github.com/yourorg/papertrade/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderState is the phase of the order flow.
type OrderState string

const (
	StateIdle       OrderState = "idle"
	StateDrafting   OrderState = "drafting"
	StateConfirming OrderState = "confirming"
	StateSubmitting OrderState = "submitting"
)

const minNotional = 0.01

// fallbackOrderError replaces backend messages that sanitize down to nothing.
const fallbackOrderError = "Trade failed"

var (
	errorPrefixPattern = regexp.MustCompile(`^Error:\s*`)
	parentheticalTail  = regexp.MustCompile(`\s*\([^\)]*\)\s*$`)
)

// ValidationError is a user-facing rejection produced before any network
// call. The message is suitable for direct display.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// OrderSubmitter places a validated order with the backend.
type OrderSubmitter interface {
	PlaceOrder(ctx context.Context, order model.OrderRequest) (*model.ExecutedOrder, error)
}

// OrderOutcome is the terminal result of a submission attempt.
type OrderOutcome struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Trade   *model.ExecutedOrder `json:"trade,omitempty"`
}

// OrderService runs the draft/confirm/submit order flow. At most one order is
// in flight at a time; a second Confirm while one is submitting is rejected
// rather than queued.
type OrderService struct {
	submitter OrderSubmitter
	quotes    *store.QuoteStore
	status    *store.StatusStore
	balances  *store.BalanceStore
	validate  *validator.Validate
	logger    *zap.Logger

	mu      sync.Mutex
	state   OrderState
	draft   model.OrderDraft
	pending *model.PendingConfirmation
}

// NewOrderService creates the order flow service in the idle state.
func NewOrderService(
	submitter OrderSubmitter,
	quotes *store.QuoteStore,
	status *store.StatusStore,
	balances *store.BalanceStore,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		submitter: submitter,
		quotes:    quotes,
		status:    status,
		balances:  balances,
		validate:  validator.New(),
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current flow state.
func (s *OrderService) State() OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns the current draft.
func (s *OrderService) Draft() model.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Pending returns the order awaiting confirmation, if any.
func (s *OrderService) Pending() (model.PendingConfirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return model.PendingConfirmation{}, false
	}
	return *s.pending, true
}

// UpdateDraft replaces the in-progress draft. Permitted while idle or
// drafting; a pending confirmation must be cancelled first.
func (s *OrderService) UpdateDraft(draft model.OrderDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConfirming || s.state == StateSubmitting {
		return &ValidationError{Message: "An order is already awaiting confirmation."}
	}
	s.draft = draft
	s.state = StateDrafting
	return nil
}

// Submit validates the current draft and, if it passes, snapshots the quoted
// price and moves to the confirming state. No network call happens here.
func (s *OrderService) Submit() (model.PendingConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateConfirming || s.state == StateSubmitting {
		return model.PendingConfirmation{}, &ValidationError{Message: "An order is already awaiting confirmation."}
	}

	draft := s.draft
	if err := s.validate.Struct(draft); err != nil {
		return model.PendingConfirmation{}, &ValidationError{Message: "Enter a valid quantity."}
	}

	price, err := s.checkDraft(draft)
	if err != nil {
		return model.PendingConfirmation{}, err
	}

	s.pending = &model.PendingConfirmation{
		Request: model.OrderRequest{
			ClientOrderID: uuid.New().String(),
			Class:         draft.Class,
			Symbol:        draft.Symbol,
			Action:        draft.Action,
			Quantity:      draft.Quantity,
			Price:         price,
		},
	}
	s.state = StateConfirming
	return *s.pending, nil
}

// checkDraft applies the full pre-confirmation validation sequence and
// returns the price snapshot. Caller holds s.mu.
func (s *OrderService) checkDraft(draft model.OrderDraft) (float64, error) {
	quote, ok := s.quotes.Quote(model.SymbolKey{Class: draft.Class, Symbol: draft.Symbol})
	if !ok || !quote.Available || math.IsNaN(quote.Price) || quote.Price <= 0 {
		return 0, &ValidationError{Message: "Price unavailable."}
	}

	if draft.Quantity <= 0 || math.IsNaN(draft.Quantity) || math.IsInf(draft.Quantity, 0) {
		return 0, &ValidationError{Message: "Enter a valid quantity."}
	}

	if draft.Quantity*quote.Price < minNotional {
		return 0, &ValidationError{Message: "Total trade amount must be at least $0.01"}
	}

	step := model.QuantityStep(draft.Class, quote.Price)
	if !isMultipleOf(draft.Quantity, step) {
		if draft.Class == model.AssetStocks {
			return 0, &ValidationError{Message: "Stock orders must be whole shares."}
		}
		return 0, &ValidationError{
			Message: fmt.Sprintf("Quantity must be a multiple of %s.", strconv.FormatFloat(step, 'f', -1, 64)),
		}
	}

	if !s.status.IsOpen(draft.Class) {
		return 0, &ValidationError{Message: "Market is closed."}
	}

	return quote.Price, nil
}

// Confirm submits the pending order. Exactly one backend call is made per
// confirmation; on success the balance is refetched in full exactly once.
// Either outcome returns the flow to drafting with the quantity cleared.
func (s *OrderService) Confirm(ctx context.Context) (OrderOutcome, error) {
	s.mu.Lock()
	if s.state != StateConfirming || s.pending == nil {
		s.mu.Unlock()
		return OrderOutcome{}, &ValidationError{Message: "No order is awaiting confirmation."}
	}
	request := s.pending.Request
	s.pending.Confirming = true
	s.state = StateSubmitting
	s.mu.Unlock()

	trade, err := s.submitter.PlaceOrder(ctx, request)

	s.mu.Lock()
	s.pending = nil
	s.draft.Quantity = 0
	s.state = StateDrafting
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Order failed",
			zap.String("symbol", request.Symbol),
			zap.String("action", string(request.Action)),
			zap.Error(err))
		return OrderOutcome{Success: false, Message: sanitizeOrderError(err)}, nil
	}

	s.logger.Info("Order executed",
		zap.String("symbol", request.Symbol),
		zap.String("action", string(request.Action)),
		zap.Float64("quantity", request.Quantity),
		zap.Float64("price", request.Price))

	if err := s.balances.Refresh(ctx); err != nil {
		s.logger.Warn("Post-order balance refresh failed", zap.Error(err))
	}

	message := fmt.Sprintf("Successfully %s %s %s at $%.2f",
		request.Action.PastTense(),
		strconv.FormatFloat(request.Quantity, 'f', -1, 64),
		request.Symbol,
		request.Price)

	return OrderOutcome{Success: true, Message: message, Trade: trade}, nil
}

// Cancel discards the pending confirmation and returns to drafting. The
// draft itself is kept so the user can adjust and resubmit.
func (s *OrderService) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfirming {
		return &ValidationError{Message: "No order is awaiting confirmation."}
	}
	s.pending = nil
	s.state = StateDrafting
	return nil
}

// sanitizeOrderError reduces a backend rejection to a displayable message:
// the "Error:" prefix and any trailing parenthetical are stripped, and an
// empty result falls back to a generic message.
func sanitizeOrderError(err error) string {
	message := err.Error()
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}

	message = errorPrefixPattern.ReplaceAllString(message, "")
	message = parentheticalTail.ReplaceAllString(message, "")
	if message == "" {
		return fallbackOrderError
	}
	return message
}

// isMultipleOf reports whether q is an integer multiple of step, tolerating
// float rounding from user input.
func isMultipleOf(q, step float64) bool {
	if step <= 0 {
		return false
	}
	ratio := q / step
	nearest := math.Round(ratio)
	if nearest == 0 {
		return false
	}
	return math.Abs(ratio-nearest) < 1e-6
}

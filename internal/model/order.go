package model

// OrderAction is the side of a simulated order.
type OrderAction string

const (
	ActionBuy  OrderAction = "buy"
	ActionSell OrderAction = "sell"
)

// PastTense returns the verb used in user-facing order messages.
func (a OrderAction) PastTense() string {
	if a == ActionSell {
		return "sold"
	}
	return "bought"
}

// OrderDraft is the user's in-progress order input, prior to validation.
type OrderDraft struct {
	Class    AssetClass  `json:"class" binding:"required" validate:"required,oneof=stocks crypto forex"`
	Symbol   string      `json:"symbol" binding:"required" validate:"required"`
	Action   OrderAction `json:"action" binding:"required" validate:"required,oneof=buy sell"`
	Quantity float64     `json:"quantity" validate:"required"`
}

// OrderRequest is a validated order carrying the price snapshot taken at
// confirmation time. It exists only during the confirm-to-submit window.
type OrderRequest struct {
	ClientOrderID string      `json:"clientOrderId"`
	Class         AssetClass  `json:"-"`
	Symbol        string      `json:"symbol"`
	Action        OrderAction `json:"action"`
	Quantity      float64     `json:"quantity"`
	Price         float64     `json:"price"`
}

// PendingConfirmation holds a validated order awaiting the user's confirm or
// cancel. Cleared on cancel and on any terminal submission outcome.
type PendingConfirmation struct {
	Request    OrderRequest `json:"request"`
	Confirming bool         `json:"confirming"`
}

// ExecutedOrder is the backend's record of a committed simulated trade.
type ExecutedOrder struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Action    OrderAction `json:"action"`
	Quantity  float64     `json:"quantity"`
	Price     float64     `json:"price"`
	Total     float64     `json:"total"`
	Timestamp float64     `json:"timestamp"`
}

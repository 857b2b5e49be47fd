package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event type discriminators carried in the payload so consumers on the
// shared topic can route without inspecting the full document.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventEnvelope is the minimal shape every order event shares.
type EventEnvelope struct {
	Type string `json:"type"`
}

// OrderCreatedEvent is emitted when a new order is persisted.
type OrderCreatedEvent struct {
	Type         string          `json:"type"`
	ID           int64           `json:"id"`
	PurchaseCode string          `json:"purchaseCode"`
	Client       string          `json:"client"`
	TeaType      string          `json:"teaType"`
	Size         string          `json:"size"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// OrderStatusChangedEvent is emitted when an order moves between statuses.
type OrderStatusChangedEvent struct {
	Type         string    `json:"type"`
	ID           int64     `json:"id"`
	PurchaseCode string    `json:"purchaseCode"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	ChangedAt    time.Time `json:"changedAt"`
}

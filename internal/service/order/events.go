package order

import "time"

// Event types emitted on the order topic.
const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
)

// OrderEvent is the wire shape for order lifecycle events.
type OrderEvent struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Status     string    `json:"status"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

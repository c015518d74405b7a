package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/uptrace/bun"
)

// OrderStatus is the order lifecycle state. Orders start ACTIVE and may be
// marked COMPLETE; no other values are legal.
type OrderStatus string

const (
	OrderStatusActive   OrderStatus = "ACTIVE"
	OrderStatusComplete OrderStatus = "COMPLETE"
)

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch OrderStatus(raw) {
	case OrderStatusActive:
		return OrderStatusActive, nil
	case OrderStatusComplete:
		return OrderStatusComplete, nil
	default:
		return "", fmt.Errorf("unknown order status %q", raw)
	}
}

// Order represents a customer purchase stored in the relational database.
// Total is derived from the line items at write time; it is never accepted
// from a caller and never recomputed at read time.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID         uuid.UUID       `bun:"id,pk,type:uuid"`
	Status     OrderStatus     `bun:"status"`
	Total      decimal.Decimal `bun:"total"`
	CustomerID uuid.UUID       `bun:"customer_id,type:uuid"`
	Items      []*OrderItem    `bun:"rel:has-many,join:id=order_id"`
	CreatedAt  time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time       `bun:"updated_at,nullzero"`
}

// OrderItem is one product+quantity entry within an order. Items are owned
// by their order and are not independently addressable; the surrogate key
// preserves insertion order for display.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID        int64     `bun:",pk,autoincrement"`
	OrderID   uuid.UUID `bun:"order_id,type:uuid"`
	ProductID uuid.UUID `bun:"product_id,type:uuid"`
	Quantity  int64     `bun:"quantity"`
}

package dto

import (
	"time"

	"github.com/Additional-Code/bookstore/internal/entity"
)

// OrderItemPayload is a single line item in an order request. Quantity is a
// pointer so a missing value can be told apart from zero.
type OrderItemPayload struct {
	Product  string   `json:"product"`
	Quantity *float64 `json:"quantity"`
}

// CreateOrderPayload is the request body for creating an order.
type CreateOrderPayload struct {
	Customer string             `json:"customer"`
	Products []OrderItemPayload `json:"products"`
}

// UpdateOrderPayload is the request body for patching an order.
type UpdateOrderPayload struct {
	Products []OrderItemPayload `json:"products"`
	Status   *string            `json:"status"`
}

// OrderItemResponse represents an order line as exposed via transport layers.
type OrderItemResponse struct {
	Product  string `json:"product"`
	Quantity int64  `json:"quantity"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID        string              `json:"id"`
	Customer  string              `json:"customer"`
	Status    string              `json:"status"`
	Total     float64             `json:"total"`
	Products  []OrderItemResponse `json:"products"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewOrderResponse maps an order entity to its transport shape.
func NewOrderResponse(order *entity.Order) OrderResponse {
	total, _ := order.Total.Float64()
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			Product:  item.ProductID.String(),
			Quantity: item.Quantity,
		})
	}
	return OrderResponse{
		ID:        order.ID.String(),
		Customer:  order.CustomerID.String(),
		Status:    string(order.Status),
		Total:     total,
		Products:  items,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

// NewOrderResponses maps a slice of orders.
func NewOrderResponses(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderResponse(order))
	}
	return out
}

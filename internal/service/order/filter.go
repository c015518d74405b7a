package order

import "github.com/Additional-Code/bookstore/internal/entity"

// Filter narrows an order set by customer and/or status. Both fields are
// independently optional and conjunctive when both are present. A value that
// matches nothing (an unknown status, a customer with no orders) yields an
// empty result, never an error.
type Filter struct {
	Customer string
	Status   string
}

// Apply returns the subset of orders matching the filter. It is a pure
// function with no authorization semantics; customers are compared by
// identifier value.
func (f Filter) Apply(orders []*entity.Order) []*entity.Order {
	matched := make([]*entity.Order, 0, len(orders))
	for _, order := range orders {
		if f.Customer != "" && order.CustomerID.String() != f.Customer {
			continue
		}
		if f.Status != "" && string(order.Status) != f.Status {
			continue
		}
		matched = append(matched, order)
	}
	return matched
}

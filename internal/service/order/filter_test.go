package order_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Additional-Code/bookstore/internal/entity"
	"github.com/Additional-Code/bookstore/internal/service/order"
)

func TestFilterApply(t *testing.T) {
	customerA := uuid.New()
	customerB := uuid.New()

	orders := []*entity.Order{
		{ID: uuid.New(), CustomerID: customerA, Status: entity.OrderStatusActive},
		{ID: uuid.New(), CustomerID: customerA, Status: entity.OrderStatusComplete},
		{ID: uuid.New(), CustomerID: customerB, Status: entity.OrderStatusActive},
	}

	tests := []struct {
		name   string
		filter order.Filter
		want   int
	}{
		{name: "no filters returns everything", filter: order.Filter{}, want: 3},
		{name: "status only", filter: order.Filter{Status: "ACTIVE"}, want: 2},
		{name: "customer only", filter: order.Filter{Customer: customerA.String()}, want: 2},
		{name: "customer and status are conjunctive", filter: order.Filter{Customer: customerA.String(), Status: "ACTIVE"}, want: 1},
		{name: "unknown status matches nothing", filter: order.Filter{Status: "no-such-status"}, want: 0},
		{name: "unknown customer matches nothing", filter: order.Filter{Customer: uuid.NewString()}, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := test.filter.Apply(orders)
			assert.Len(t, got, test.want)
			// Apply never returns nil, even for empty matches.
			assert.NotNil(t, got)
		})
	}
}

func TestFilterApplyDoesNotMutateInput(t *testing.T) {
	customer := uuid.New()
	orders := []*entity.Order{
		{ID: uuid.New(), CustomerID: customer, Status: entity.OrderStatusActive},
		{ID: uuid.New(), CustomerID: uuid.New(), Status: entity.OrderStatusActive},
	}

	_ = order.Filter{Customer: customer.String()}.Apply(orders)

	assert.Len(t, orders, 2)
}

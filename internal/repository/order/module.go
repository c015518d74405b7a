package order

import (
	"go.uber.org/fx"

	ordersvc "github.com/Additional-Code/bookstore/internal/service/order"
)

// Module provides the order repository to Fx as the order store backend.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(ordersvc.Repository))),
)

package product

import (
	"go.uber.org/fx"

	ordersvc "github.com/Additional-Code/bookstore/internal/service/order"
	productsvc "github.com/Additional-Code/bookstore/internal/service/product"
)

// Module provides the product repository both as the catalog backend and as
// the price lookup capability consumed by the order store.
var Module = fx.Provide(
	fx.Annotate(NewRepository,
		fx.As(new(productsvc.Repository)),
		fx.As(new(ordersvc.ProductReader)),
	),
)

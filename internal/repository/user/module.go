package user

import (
	"go.uber.org/fx"

	authsvc "github.com/Additional-Code/bookstore/internal/service/auth"
	ordersvc "github.com/Additional-Code/bookstore/internal/service/order"
	usersvc "github.com/Additional-Code/bookstore/internal/service/user"
)

// Module provides the user repository as the account backend, the customer
// existence check consumed by the order store, and the credential store for
// the auth service.
var Module = fx.Provide(
	fx.Annotate(NewRepository,
		fx.As(new(usersvc.Repository)),
		fx.As(new(ordersvc.CustomerReader)),
		fx.As(new(authsvc.UserRepository)),
	),
)

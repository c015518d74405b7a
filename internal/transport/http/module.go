package http

import (
	"go.uber.org/fx"

	authtransport "github.com/Additional-Code/bookstore/internal/transport/http/auth"
	ordertransport "github.com/Additional-Code/bookstore/internal/transport/http/order"
	producttransport "github.com/Additional-Code/bookstore/internal/transport/http/product"
	usertransport "github.com/Additional-Code/bookstore/internal/transport/http/user"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	authtransport.Module,
	ordertransport.Module,
	producttransport.Module,
	usertransport.Module,
)

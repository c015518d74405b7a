package product

import "go.uber.org/fx"

// Module provides the product service to the fx graph.
var Module = fx.Provide(NewService)

package user

import "go.uber.org/fx"

// Module provides the user service to the fx graph.
var Module = fx.Provide(NewService)

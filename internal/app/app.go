package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/bookstore/internal/auth"
	"github.com/Additional-Code/bookstore/internal/cache"
	"github.com/Additional-Code/bookstore/internal/config"
	"github.com/Additional-Code/bookstore/internal/database"
	"github.com/Additional-Code/bookstore/internal/logger"
	"github.com/Additional-Code/bookstore/internal/messaging"
	"github.com/Additional-Code/bookstore/internal/observability"
	repositoryorder "github.com/Additional-Code/bookstore/internal/repository/order"
	repositoryproduct "github.com/Additional-Code/bookstore/internal/repository/product"
	repositoryuser "github.com/Additional-Code/bookstore/internal/repository/user"
	grpcserver "github.com/Additional-Code/bookstore/internal/server/grpc"
	httpserver "github.com/Additional-Code/bookstore/internal/server/http"
	serviceauth "github.com/Additional-Code/bookstore/internal/service/auth"
	serviceorder "github.com/Additional-Code/bookstore/internal/service/order"
	serviceproduct "github.com/Additional-Code/bookstore/internal/service/product"
	serviceuser "github.com/Additional-Code/bookstore/internal/service/user"
	transporthttp "github.com/Additional-Code/bookstore/internal/transport/http"
	"github.com/Additional-Code/bookstore/internal/worker"
	workerorder "github.com/Additional-Code/bookstore/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	auth.Module,
	repositoryorder.Module,
	repositoryproduct.Module,
	repositoryuser.Module,
	serviceauth.Module,
	serviceorder.Module,
	serviceproduct.Module,
	serviceuser.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// GRPC wires the gRPC server on top of the core modules.
var GRPC = fx.Options(
	Core,
	grpcserver.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP

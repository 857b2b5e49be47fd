package app

import (
	"go.uber.org/fx"

	"github.com/bubbletea-slz/teahouse/internal/cache"
	"github.com/bubbletea-slz/teahouse/internal/config"
	"github.com/bubbletea-slz/teahouse/internal/database"
	"github.com/bubbletea-slz/teahouse/internal/logger"
	"github.com/bubbletea-slz/teahouse/internal/messaging"
	"github.com/bubbletea-slz/teahouse/internal/observability"
	grpcserver "github.com/bubbletea-slz/teahouse/internal/server/grpc"
	httpserver "github.com/bubbletea-slz/teahouse/internal/server/http"
	serviceorder "github.com/bubbletea-slz/teahouse/internal/service/order"
	storedriver "github.com/bubbletea-slz/teahouse/internal/store/driver"
	transporthttp "github.com/bubbletea-slz/teahouse/internal/transport/http"
	"github.com/bubbletea-slz/teahouse/internal/worker"
	workerorder "github.com/bubbletea-slz/teahouse/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	storedriver.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background event processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP

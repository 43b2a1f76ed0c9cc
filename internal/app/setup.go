// Package app contains the application setup for the inventory service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/internal/store"
	grpcImpl "github.com/abgdnv/inventory/internal/transport/grpc"
	"github.com/abgdnv/inventory/internal/transport/rest"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	// MetricsHandler serves /metrics; nil when metrics are disabled.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, metrics http.Handler, logger *slog.Logger) *Dependencies {
	pService := service.NewService(productStore, publisher)

	return &Dependencies{
		Store:          productStore,
		ProductService: pService,
		MetricsHandler: metrics,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes and middleware for the inventory service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger, otelhttp.NewMiddleware(config.ServiceName))
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the inventory service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupHealthChecker creates the checker backing the gRPC health service.
func SetupHealthChecker(deps *Dependencies, cfg *config.Config) *grpcImpl.HealthChecker {
	return grpcImpl.NewHealthChecker(deps.Store, cfg.GRPC.Health.Interval, deps.Logger)
}

// SetupGrpcServer initializes the gRPC server serving the health service.
func SetupGrpcServer(health *grpcImpl.HealthChecker, reflectionEnabled bool, logger *slog.Logger) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.DefaultServerOptions(logger), health.Register)
}

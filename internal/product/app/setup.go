// Package app contains the application setup for the product service.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/cafekiosk/internal/config"
	"github.com/abgdnv/cafekiosk/internal/product/numbering"
	"github.com/abgdnv/cafekiosk/internal/product/service"
	"github.com/abgdnv/cafekiosk/internal/product/store"
	grpcImpl "github.com/abgdnv/cafekiosk/internal/product/transport/grpc"
	"github.com/abgdnv/cafekiosk/internal/product/transport/rest"
	"github.com/abgdnv/cafekiosk/pkg/bootstrap"
	"github.com/abgdnv/cafekiosk/pkg/messaging"
	natsclient "github.com/abgdnv/cafekiosk/pkg/nats"
	"github.com/abgdnv/cafekiosk/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// ProductsStreamSubjects is captured by the JetStream stream carrying product events.
const ProductsStreamSubjects = "products.>"

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	HealthServer   *health.Server
	HealthProbe    *grpcImpl.HealthProbe
	// MetricsHandler is served on cfg.Metrics.Path when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// SetupStore opens the storage backend selected by cfg.Storage.Type.
// The returned close function releases it.
func SetupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	if cfg.Storage.Type == config.StorageMemory {
		logger.Warn("Using in-memory product storage, data is lost on restart")
		return store.NewInMemoryStore(), func() {}, nil
	}
	if cfg.Database.Migrate {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		logger.Info("Database migrations applied")
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Successfully connected to the database!")
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

// SetupPublisher connects to NATS when enabled and returns a breaker-guarded publisher.
// Without NATS it returns a publisher that drops events.
func SetupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		logger.Info("NATS is disabled, product events will not be published")
		return messaging.NoopPublisher{}, func() {}, nil
	}
	nc, err := natsclient.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if _, err := natsclient.EnsureStream(ctx, js, cfg.NATS.Stream, ProductsStreamSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", "url", nc.ConnectedUrlRedacted(), "stream", cfg.NATS.Stream)
	publisher := messaging.NewBreakerPublisher(natsclient.NewNatsPublisher(js), cfg.Breaker)
	return publisher, func() { _ = nc.Drain() }, nil
}

func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, cfg *config.Config, metricsHandler http.Handler, logger *slog.Logger) *Dependencies {
	generator := numbering.NewGenerator(cfg.Catalog.NumberWidth)
	pService := service.NewService(productStore, generator, publisher, logger)
	healthServer := health.NewServer()

	return &Dependencies{
		Store:          productStore,
		ProductService: pService,
		HealthServer:   healthServer,
		HealthProbe:    grpcImpl.NewHealthProbe(productStore, healthServer, cfg.GRPC.HealthInterval, logger),
		MetricsHandler: metricsHandler,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the routes and middleware of the product service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies, metricsPath string) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, metricsPath)
	return otelhttp.NewHandler(mux, "product-service")
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies, metricsPath string) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil && metricsPath != "" {
		mux.Handle(metricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps, cfg.Metrics.Path)

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

// SetupGrpcServer initializes the gRPC server with the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, grpcImpl.RegisterFunc(deps.HealthServer))
}

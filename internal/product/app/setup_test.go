package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/cafekiosk/internal/config"
	"github.com/abgdnv/cafekiosk/internal/product/service"
	"github.com/abgdnv/cafekiosk/internal/product/store"
	"github.com/abgdnv/cafekiosk/pkg/messaging"
	"github.com/abgdnv/cafekiosk/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Type = config.StorageMemory
	cfg.Catalog.NumberWidth = 3
	cfg.GRPC.HealthInterval = time.Second
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	return cfg
}

func TestSetupStore_Memory(t *testing.T) {
	productStore, closeFn, err := SetupStore(context.Background(), memoryConfig(), discardLogger())

	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.InMemoryStore{}, productStore)
}

func TestSetupPublisher_Disabled(t *testing.T) {
	publisher, closeFn, err := SetupPublisher(context.Background(), memoryConfig(), discardLogger())

	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, messaging.NoopPublisher{}, publisher)
}

func TestHttpHandler_CreateListAndMetrics(t *testing.T) {
	// given
	cfg := memoryConfig()
	metrics, err := telemetry.NewMeterProvider("product-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = metrics.Provider.Shutdown(context.Background()) })

	productStore, closeFn, err := SetupStore(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(closeFn)
	deps := SetupDependencies(productStore, messaging.NoopPublisher{}, cfg, metrics.Handler, discardLogger())
	srv := httptest.NewServer(SetupHttpHandler(deps, cfg.Metrics.Path))
	t.Cleanup(srv.Close)

	// when
	resp, err := srv.Client().Post(srv.URL+"/api/v1/products/new", "application/json",
		strings.NewReader(`{"name":"아메리카노","price":4000,"type":"HANDMADE"}`))
	require.NoError(t, err)
	var created service.ProductDto
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()

	// then
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "001", created.ProductNumber)

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "products_created_total")
}

func TestHealthProbe_Wiring(t *testing.T) {
	cfg := memoryConfig()
	deps := SetupDependencies(store.NewInMemoryStore(), nil, cfg, nil, discardLogger())

	status := deps.HealthProbe.Check(context.Background())

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status)
	grpcServer := SetupGrpcServer(deps, false)
	defer grpcServer.Stop()
	_, ok := grpcServer.GetServiceInfo()["grpc.health.v1.Health"]
	assert.True(t, ok)
}

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeterProvider_ExposesCounter(t *testing.T) {
	// given
	m, err := NewMeterProvider("product-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Provider.Shutdown(context.Background()) })

	counter, err := m.Provider.Meter("test").Int64Counter("products_created")
	require.NoError(t, err)

	// when
	counter.Add(context.Background(), 3)
	rec := httptest.NewRecorder()
	m.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "products_created_total")
}

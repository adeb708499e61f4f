package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedEngine(t *testing.T, classifier func(error) (string, string)) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{TracerProvider: provider, ErrorClassifier: classifier}))
	return r, recorder
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestGinMiddlewareTagsOrderRoutes(t *testing.T) {
	r, recorder := newTracedEngine(t, nil)
	var loggedOrderID string
	r.GET("/api/orders/:id/bill", func(c *gin.Context) {
		loggedOrderID = c.GetString("order_id")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/42/bill?format=PDF", nil))
	require.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET /api/orders/:id/bill", spans[0].Name())

	attrs := spanAttributes(spans[0])
	assert.Equal(t, "orders", attrs["dinepos.resource"].AsString())
	assert.Equal(t, "42", attrs["dinepos.order_id"].AsString())
	assert.Equal(t, "pdf", attrs["dinepos.export_format"].AsString())
	assert.Equal(t, int64(http.StatusOK), attrs["http.status_code"].AsInt64())
	assert.Equal(t, "42", loggedOrderID)
}

func TestGinMiddlewareTagsTableRoutes(t *testing.T) {
	r, recorder := newTracedEngine(t, nil)
	r.GET("/api/tables/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/tables/by-name/:name", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tables/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tables/by-name/Patio", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	byID := spanAttributes(spans[0])
	assert.Equal(t, "7", byID["dinepos.table_id"].AsString())
	_, hasOrder := byID["dinepos.order_id"]
	assert.False(t, hasOrder)

	byName := spanAttributes(spans[1])
	assert.Equal(t, "tables", byName["dinepos.resource"].AsString())
	assert.Equal(t, "Patio", byName["dinepos.table_name"].AsString())
}

func TestGinMiddlewareRecordsServerErrors(t *testing.T) {
	classifier := func(err error) (string, string) { return "internal_error", "mirror_failed" }
	r, recorder := newTracedEngine(t, classifier)
	r.POST("/api/orders", func(c *gin.Context) {
		_ = c.Error(errors.New("disk full"))
		c.Status(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)

	attrs := spanAttributes(spans[0])
	assert.Equal(t, "internal_error", attrs["error.type"].AsString())
	assert.Equal(t, "mirror_failed", attrs["error.code"].AsString())
}

func TestGinMiddlewareClientErrorsKeepStatusUnset(t *testing.T) {
	classifier := func(err error) (string, string) { return "validation_error", "empty_cart" }
	r, recorder := newTracedEngine(t, classifier)
	r.POST("/api/orders", func(c *gin.Context) {
		_ = c.Error(errors.New("cart is empty"))
		c.Status(http.StatusBadRequest)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
	assert.Equal(t, "empty_cart", spanAttributes(spans[0])["error.code"].AsString())
}

func TestAPIResource(t *testing.T) {
	assert.Equal(t, "reports", apiResource("/api/reports/sales/export"))
	assert.Equal(t, "audit-logs", apiResource("/api/audit-logs"))
	assert.Equal(t, "", apiResource("/health"))
	assert.Equal(t, "", apiResource(""))
}

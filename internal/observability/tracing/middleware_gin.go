package tracing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/dinepos/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "dinepos/http"

// MiddlewareConfig controls request span behavior. A nil TracerProvider
// falls back to the global one.
type MiddlewareConfig struct {
	TracerProvider  trace.TracerProvider
	ErrorClassifier func(err error) (string, string)
}

// routeKeys maps the resource segment of an /api route to the span attribute
// that carries its :id parameter.
var routeKeys = map[string]string{
	"orders": "dinepos.order_id",
	"tables": "dinepos.table_id",
	"menu":   "dinepos.menu_item_id",
}

// GinMiddleware opens a server span per request and tags it with the order,
// table or menu item the route addresses.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	provider := cfg.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(tracerName)

	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		method := strings.ToUpper(c.Request.Method)

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		ctx, span := tracer.Start(ctx, "HTTP "+method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			ctx = withRequestBaggage(ctx, requestID)
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		span.SetAttributes(routeAttributes(c)...)

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)...)

		lastErr := c.Errors.Last()
		if lastErr != nil && cfg.ErrorClassifier != nil {
			errorType, errorCode := cfg.ErrorClassifier(lastErr.Err)
			span.SetAttributes(SafeAttributes(
				attribute.String("error.type", errorType),
				attribute.String("error.code", errorCode),
			)...)
		}
		if status < http.StatusInternalServerError {
			return
		}
		if lastErr != nil {
			if safeErr := SafeError(lastErr.Err); safeErr != nil {
				span.RecordError(safeErr)
			}
		}
		span.SetStatus(codes.Error, "request error")
	}
}

// routeAttributes derives the resource attributes of an /api request. The
// order id is also stored on the gin context for the request logger.
func routeAttributes(c *gin.Context) []attribute.KeyValue {
	resource := apiResource(c.FullPath())
	if resource == "" {
		return nil
	}
	attrs := []attribute.KeyValue{attribute.String("dinepos.resource", resource)}

	if id := strings.TrimSpace(c.Param("id")); id != "" {
		if key, ok := routeKeys[resource]; ok {
			attrs = append(attrs, attribute.String(key, id))
		}
		if resource == "orders" {
			c.Set("order_id", id)
		}
	}
	if name := strings.TrimSpace(c.Param("name")); name != "" && resource == "tables" {
		attrs = append(attrs, attribute.String("dinepos.table_name", name))
	}
	if format := strings.TrimSpace(c.Query("format")); format != "" {
		attrs = append(attrs, attribute.String("dinepos.export_format", strings.ToLower(format)))
	}
	return SafeAttributes(attrs...)
}

func apiResource(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return ""
	}
	resource, _, _ := strings.Cut(rest, "/")
	return resource
}

func withRequestBaggage(ctx context.Context, requestID string) context.Context {
	member, err := baggage.NewMember("request_id", requestID)
	if err != nil {
		return ctx
	}
	bag, err := baggage.New(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

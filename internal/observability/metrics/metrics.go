package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	ordersPlaced   metric.Int64Counter
	orderRevenue   metric.Float64Counter
	mirrorFailures metric.Int64Counter
	menuImports    metric.Int64Counter
	exports        metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "dinepos"
	}
	meter := provider.Meter(name)

	ordersPlaced, err := meter.Int64Counter("dinepos_orders_placed_total")
	if err != nil {
		return nil, err
	}
	orderRevenue, err := meter.Float64Counter("dinepos_order_revenue_total")
	if err != nil {
		return nil, err
	}
	mirrorFailures, err := meter.Int64Counter("dinepos_mirror_write_failures_total")
	if err != nil {
		return nil, err
	}
	menuImports, err := meter.Int64Counter("dinepos_menu_import_rows_total")
	if err != nil {
		return nil, err
	}
	exports, err := meter.Int64Counter("dinepos_exports_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersPlaced:   ordersPlaced,
		orderRevenue:   orderRevenue,
		mirrorFailures: mirrorFailures,
		menuImports:    menuImports,
		exports:        exports,
	}, nil
}

// RecordOrderPlaced counts a committed order and adds its total to revenue.
func (m *Metrics) RecordOrderPlaced(ctx context.Context, orderType, paymentMode string, total float64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("order_type", strings.TrimSpace(orderType)),
		attribute.String("payment_mode", strings.TrimSpace(paymentMode)),
	)
	m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.orderRevenue.Add(ctx, total, metric.WithAttributes(attrs...))
}

// RecordMirrorFailure counts a failed journal or sales mirror append.
func (m *Metrics) RecordMirrorFailure(ctx context.Context, sink string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("sink", strings.TrimSpace(sink)))
	m.mirrorFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMenuImport adds the number of rows inserted by a bulk import.
func (m *Metrics) RecordMenuImport(ctx context.Context, source string, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.menuImports.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
}

// RecordExport counts a rendered bill or report document.
func (m *Metrics) RecordExport(ctx context.Context, kind, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
		attribute.String("format", strings.TrimSpace(format)),
	)
	m.exports.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"order_type":   {},
	"payment_mode": {},
	"sink":         {},
	"source":       {},
	"kind":         {},
	"format":       {},
	"status_code":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

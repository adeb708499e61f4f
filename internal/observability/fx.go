package observability

import (
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/smallbiznis/dinepos/internal/observability/logger"
	"github.com/smallbiznis/dinepos/internal/observability/metrics"
	"github.com/smallbiznis/dinepos/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		provideGormLoggerConfig,
		provideTracingConfig,
		tracing.NewProvider,
		provideMetricsConfig,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(ensureTracingProvider),
)

// ensureTracingProvider forces the global tracer provider to be installed
// before the HTTP middleware captures it.
func ensureTracingProvider(_ *sdktrace.TracerProvider) {}

func provideLoggerConfig(app config.Config) logger.Config {
	obs := app.Observability
	debug := obs.Debug()
	return logger.Config{
		ServiceName:         obs.ServiceName,
		Environment:         obs.Environment,
		Version:             obs.Version,
		Store:               app.Store.Name,
		Level:               obs.LogLevel,
		Format:              obs.LogFormat,
		Debug:               debug,
		IncludeCaller:       true,
		IncludeStackOnError: debug,
	}
}

func provideTracingConfig(app config.Config) tracing.Config {
	obs := app.Observability
	return tracing.Config{
		Enabled:          obs.OtelEnabled,
		ServiceName:      obs.ServiceName,
		ServiceVersion:   obs.Version,
		Environment:      obs.Environment,
		Store:            app.Store.Name,
		ExporterEndpoint: obs.OtelEndpoint,
		ExporterProtocol: obs.OtelProtocol,
		SamplingRatio:    obs.OtelSamplingRatio,
	}
}

func provideMetricsConfig(obs Config) metrics.Config {
	return metrics.Config{
		Enabled:          obs.OtelEnabled,
		ExporterEndpoint: obs.OtelEndpoint,
		ExporterProtocol: obs.OtelProtocol,
		ServiceName:      obs.ServiceName,
		Environment:      obs.Environment,
	}
}

// provideGormLoggerConfig logs every statement in debug mode and only slow or
// failed ones otherwise.
func provideGormLoggerConfig(obs Config) logger.GormLoggerConfig {
	return logger.GormLoggerConfigFor(obs.Debug())
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadObservabilityDefaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_PROTOCOL", "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "OTEL_SAMPLING_RATIO", "DEPLOYMENT_ENV", "SERVICE_VERSION", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
	}

	obs := loadObservability(Config{AppVersion: "0.1.0", Environment: "production", OTLPEndpoint: "collector:4317"})
	assert.Equal(t, "dinepos", obs.ServiceName)
	assert.Equal(t, "info", obs.LogLevel)
	assert.Equal(t, "json", obs.LogFormat)
	assert.Equal(t, "grpc", obs.OtelProtocol)
	assert.Equal(t, "collector:4317", obs.OtelEndpoint)
	assert.Equal(t, 1.0, obs.OtelSamplingRatio)
	assert.False(t, obs.OtelEnabled)
	assert.False(t, obs.Debug())
}

func TestLoadObservabilityOverrides(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "7")
	t.Setenv("LOG_LEVEL", "DEBUG")

	obs := loadObservability(Config{AppName: "counter-2", Environment: "production"})
	assert.Equal(t, "counter-2", obs.ServiceName)
	assert.True(t, obs.OtelEnabled)
	assert.Equal(t, "http", obs.OtelProtocol)
	assert.Equal(t, 1.0, obs.OtelSamplingRatio, "out of range ratios fall back to sampling everything")
	assert.True(t, obs.Debug())
}

func TestObservabilityDebugByEnvironment(t *testing.T) {
	assert.True(t, ObservabilityConfig{Environment: "Development"}.Debug())
	assert.True(t, ObservabilityConfig{Environment: "test"}.Debug())
	assert.False(t, ObservabilityConfig{Environment: "staging", LogLevel: "warn"}.Debug())
}

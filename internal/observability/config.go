package observability

import "github.com/smallbiznis/dinepos/internal/config"

// Config is the observability slice of the application configuration.
type Config = config.ObservabilityConfig

// LoadConfig hands the already parsed observability settings to the
// logger, tracing and metrics providers.
func LoadConfig(cfg config.Config) Config {
	return cfg.Observability
}

package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	TaxPolicyFixed   = "fixed"
	TaxPolicyPerItem = "per_item"
)

// PricingConfig controls how carts are taxed at the order screen.
type PricingConfig struct {
	TaxRate   float64 `mapstructure:"taxRate"`
	TaxPolicy string  `mapstructure:"taxPolicy"`
	Currency  string  `mapstructure:"currency"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRate:   5,
		TaxPolicy: TaxPolicyFixed,
		Currency:  "DA",
	}
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewStaticPricingConfigHolder pins a config without any file watching.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(normalizePricingConfig(cfg))
	return holder
}

func NewPricingConfigHolder(log *zap.Logger) (*PricingConfigHolder, error) {
	log = log.Named("config.pricing")
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/dinepos")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DINEPOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	v.SetDefault("pricing.taxRate", defaults.TaxRate)
	v.SetDefault("pricing.taxPolicy", defaults.TaxPolicy)
	v.SetDefault("pricing.currency", defaults.Currency)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizePricingConfig(cfg)
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	if !fileFound {
		log.Info("pricing config file not found, using defaults",
			zap.Float64("tax_rate", cfg.TaxRate),
			zap.String("tax_policy", cfg.TaxPolicy),
		)
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Warn("pricing config reload failed", zap.Error(err))
			return
		}
		updated = normalizePricingConfig(updated)
		if err := validatePricingConfig(updated); err != nil {
			log.Warn("invalid pricing config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("pricing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	if h == nil {
		return DefaultPricingConfig()
	}
	return h.current.Load().(PricingConfig)
}

func normalizePricingConfig(cfg PricingConfig) PricingConfig {
	cfg.TaxPolicy = strings.ToLower(strings.TrimSpace(cfg.TaxPolicy))
	if cfg.TaxPolicy == "" {
		cfg.TaxPolicy = TaxPolicyFixed
	}
	cfg.Currency = strings.TrimSpace(cfg.Currency)
	return cfg
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.TaxRate < 0 || cfg.TaxRate > 100 {
		return errors.New("pricing.taxRate must be within [0,100]")
	}
	if cfg.TaxPolicy != TaxPolicyFixed && cfg.TaxPolicy != TaxPolicyPerItem {
		return errors.New("pricing.taxPolicy must be fixed or per_item")
	}
	return nil
}

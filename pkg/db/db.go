package db

import (
	"context"
	"os"
	"path/filepath"

	obslogger "github.com/smallbiznis/dinepos/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(NewConfig),
	fx.Provide(New),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	Log       *zap.Logger
	LogConfig obslogger.GormLoggerConfig `optional:"true"`
}

// New opens the relational store, attaches tracing and pool metrics plugins
// and closes the pool on shutdown.
func New(p Params) (*gorm.DB, error) {
	log := p.Log.Named("db")

	if p.Config.Type == "sqlite" || p.Config.Type == "" {
		if dir := filepath.Dir(p.Config.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}

	dialector, err := Dialect(p.Config)
	if err != nil {
		return nil, err
	}

	logCfg := p.LogConfig
	if logCfg == (obslogger.GormLoggerConfig{}) {
		logCfg = obslogger.DefaultGormLoggerConfig()
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         obslogger.NewGormLogger(logCfg),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(dbName(p.Config)))); err != nil {
		return nil, err
	}
	if err := conn.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          dbName(p.Config),
		RefreshInterval: 15,
		StartServer:     false,
	})); err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if p.Config.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(p.Config.MaxIdleConn)
	}
	if p.Config.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(p.Config.MaxOpenConn)
	}
	if p.Config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(p.Config.connMaxLifetime())
	}
	if p.Config.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(p.Config.connMaxIdleTime())
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing database pool")
			return sqlDB.Close()
		},
	})

	log.Info("database opened", zap.String("type", p.Config.Type))
	return conn, nil
}

func dbName(cfg Config) string {
	if cfg.Type == "sqlite" || cfg.Type == "" {
		return filepath.Base(cfg.Path)
	}
	return cfg.Name
}

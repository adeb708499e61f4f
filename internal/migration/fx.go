package migration

import (
	"context"

	catalogdomain "github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/smallbiznis/dinepos/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, catalog catalogdomain.Service, log *zap.Logger) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB, conn.Dialector.Name()); err != nil {
			return err
		}

		_, err = seed.EnsureMenu(context.Background(), catalog, seed.MenuOptions{
			Source:   cfg.Files.MenuSource,
			Required: cfg.Files.MenuImportRequired,
		}, log)
		return err
	}),
)

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dinepos/internal/clock"
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/smallbiznis/dinepos/internal/migration"
	"github.com/smallbiznis/dinepos/internal/observability"
	"github.com/smallbiznis/dinepos/internal/server"
	"github.com/smallbiznis/dinepos/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Schema and first-run menu before the listener starts.
		migration.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/config"
	"github.com/rutujak-bora/crm/internal/migration"
	"github.com/rutujak-bora/crm/internal/observability"
	"github.com/rutujak-bora/crm/internal/server"
	"github.com/rutujak-bora/crm/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

// RegisterSnowflake provides the ID generator shared by every service.
func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

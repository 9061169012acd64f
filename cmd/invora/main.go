package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/logger"
	"github.com/invorahq/invora/internal/migration"
	"github.com/invorahq/invora/internal/observability"
	"github.com/invorahq/invora/internal/server"
	"github.com/invorahq/invora/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/splitpay/internal/config"
	"github.com/smallbiznis/splitpay/internal/migration"
	"github.com/smallbiznis/splitpay/internal/observability"
	"github.com/smallbiznis/splitpay/internal/server"
	"github.com/smallbiznis/splitpay/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
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

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/campaignhub/internal/application"
	"github.com/smallbiznis/campaignhub/internal/auth"
	"github.com/smallbiznis/campaignhub/internal/campaign"
	"github.com/smallbiznis/campaignhub/internal/clock"
	"github.com/smallbiznis/campaignhub/internal/config"
	"github.com/smallbiznis/campaignhub/internal/migration"
	"github.com/smallbiznis/campaignhub/internal/observability"
	"github.com/smallbiznis/campaignhub/internal/post"
	"github.com/smallbiznis/campaignhub/internal/ratelimit"
	"github.com/smallbiznis/campaignhub/internal/revalidate"
	"github.com/smallbiznis/campaignhub/internal/server"
	"github.com/smallbiznis/campaignhub/pkg/db"
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
		migration.Module,

		// Functional Domains
		auth.Module,
		post.Module,
		application.Module,
		campaign.Module,
		revalidate.Module,
		ratelimit.Module,

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

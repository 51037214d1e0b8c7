package campaign

import (
	"github.com/smallbiznis/campaignhub/internal/campaign/repository"
	"github.com/smallbiznis/campaignhub/internal/campaign/service"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

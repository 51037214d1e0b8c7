package migration

import (
	"context"

	authdomain "github.com/smallbiznis/campaignhub/internal/auth/domain"
	"github.com/smallbiznis/campaignhub/internal/config"
	"github.com/smallbiznis/campaignhub/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, authsvc authdomain.Service, cfg config.Config, log *zap.Logger) error {
		if err := Migrate(conn); err != nil {
			return err
		}
		return seed.EnsureAdmin(context.Background(), authsvc, cfg.Bootstrap, log)
	}),
)

package seed

import (
	"context"
	"errors"
	"strings"

	authdomain "github.com/smallbiznis/campaignhub/internal/auth/domain"
	"github.com/smallbiznis/campaignhub/internal/config"
	"go.uber.org/zap"
)

const defaultAdminDisplay = "Administrator"

// EnsureAdmin creates the bootstrap admin account when credentials are
// configured and no user with that email exists yet.
func EnsureAdmin(ctx context.Context, svc authdomain.Service, cfg config.BootstrapConfig, log *zap.Logger) error {
	if svc == nil {
		return errors.New("seed auth service is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	if strings.TrimSpace(cfg.AdminEmail) == "" || cfg.AdminPassword == "" {
		return nil
	}

	user, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:       cfg.AdminEmail,
		Password:    cfg.AdminPassword,
		DisplayName: defaultAdminDisplay,
	})
	if errors.Is(err, authdomain.ErrUserExists) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("bootstrap admin created", zap.String("user_id", user.ID.String()))
	return nil
}

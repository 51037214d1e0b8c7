package seed

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/campaignhub/internal/auth/domain"
	"github.com/smallbiznis/campaignhub/internal/auth/password"
	"github.com/smallbiznis/campaignhub/internal/auth/repository"
	authservice "github.com/smallbiznis/campaignhub/internal/auth/service"
	"github.com/smallbiznis/campaignhub/internal/clock"
	"github.com/smallbiznis/campaignhub/internal/config"
	"github.com/smallbiznis/campaignhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*gorm.DB, authdomain.Service) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	repo, sessionRepo := repository.New(conn)
	return conn, authservice.New(zap.NewNop(), repo, sessionRepo, node, clock.New(), config.Config{})
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	conn, svc := newAuthService(t)

	cfg := config.BootstrapConfig{AdminEmail: "Admin@Example.com", AdminPassword: "s3cret-pass"}
	require.NoError(t, EnsureAdmin(context.Background(), svc, cfg, zap.NewNop()))
	require.NoError(t, EnsureAdmin(context.Background(), svc, cfg, zap.NewNop()))

	var users []authdomain.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.Equal(t, "Administrator", users[0].DisplayName)
	require.NotNil(t, users[0].PasswordHash)
	assert.True(t, password.Verify("s3cret-pass", *users[0].PasswordHash))
}

func TestEnsureAdminSkipsWithoutCredentials(t *testing.T) {
	conn, svc := newAuthService(t)

	require.NoError(t, EnsureAdmin(context.Background(), svc, config.BootstrapConfig{}, nil))

	var count int64
	require.NoError(t, conn.Model(&authdomain.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnsureAdminRejectsShortPassword(t *testing.T) {
	_, svc := newAuthService(t)

	err := EnsureAdmin(context.Background(), svc, config.BootstrapConfig{AdminEmail: "admin@example.com", AdminPassword: "short"}, nil)
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

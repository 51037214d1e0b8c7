package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/campaignhub/internal/application/domain"
	"github.com/smallbiznis/campaignhub/internal/application/repository"
	campaigndomain "github.com/smallbiznis/campaignhub/internal/campaign/domain"
	campaignrepo "github.com/smallbiznis/campaignhub/internal/campaign/repository"
	"github.com/smallbiznis/campaignhub/internal/clock"
	postdomain "github.com/smallbiznis/campaignhub/internal/post/domain"
	postrepo "github.com/smallbiznis/campaignhub/internal/post/repository"
	"github.com/smallbiznis/campaignhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ownerID    snowflake.ID = 1001
	strangerID snowflake.ID = 2002
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	svc   domain.Service
	posts postdomain.Repository
}

func newFixture(t *testing.T, campaigns campaigndomain.Repository) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Application{}, &postdomain.Post{}, &campaigndomain.Campaign{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	if campaigns == nil {
		campaigns = campaignrepo.Provide()
	}
	posts := postrepo.Provide()

	svc := New(Params{
		DB:           conn,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Repo:         repository.Provide(),
		PostRepo:     posts,
		CampaignRepo: campaigns,
	})

	return &fixture{db: conn, node: node, svc: svc, posts: posts}
}

func (f *fixture) createApp(t *testing.T, subdomain string) *domain.Application {
	t.Helper()
	app, err := f.svc.Create(context.Background(), domain.CreateApplicationRequest{
		CallerID:  ownerID,
		Name:      "Shop",
		Subdomain: subdomain,
	})
	require.NoError(t, err)
	return app
}

func (f *fixture) seedPost(t *testing.T, appID snowflake.ID) {
	t.Helper()
	require.NoError(t, f.posts.Insert(context.Background(), f.db, &postdomain.Post{
		ID:            f.node.Generate(),
		ApplicationID: appID,
		Title:         "hello",
		Slug:          "hello",
		Published:     true,
	}))
}

func countRows(t *testing.T, conn *gorm.DB, model any, appID snowflake.ID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Where("application_id = ?", appID).Count(&n).Error)
	return n
}

func TestCreateSanitizesSubdomain(t *testing.T) {
	f := newFixture(t, nil)

	app := f.createApp(t, "My Site!")

	assert.Equal(t, "MySite", app.Subdomain)
	assert.Equal(t, ownerID, app.UserID)
	assert.Equal(t, domain.DefaultLogo, app.Logo)
	assert.Equal(t, domain.DefaultImage, app.Image)
	assert.Equal(t, domain.PlaceholderBlurhash, app.ImageBlurhash)
}

func TestCreateGeneratesDistinctSubdomains(t *testing.T) {
	f := newFixture(t, nil)

	first := f.createApp(t, "")
	second := f.createApp(t, "!!!")

	assert.NotEmpty(t, first.Subdomain)
	assert.NotEmpty(t, second.Subdomain)
	assert.NotEqual(t, first.Subdomain, second.Subdomain)
	assert.Equal(t, first.Subdomain, domain.SanitizeSubdomain(first.Subdomain))
}

func TestCreateUsesExplicitOwner(t *testing.T) {
	f := newFixture(t, nil)

	app, err := f.svc.Create(context.Background(), domain.CreateApplicationRequest{
		CallerID: ownerID,
		OwnerID:  strangerID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, strangerID, app.UserID)

	_, err = f.svc.Create(context.Background(), domain.CreateApplicationRequest{
		CallerID: ownerID,
		OwnerID:  "not-a-number",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestCreateDuplicateSubdomainFails(t *testing.T) {
	f := newFixture(t, nil)
	f.createApp(t, "shop")

	_, err := f.svc.Create(context.Background(), domain.CreateApplicationRequest{
		CallerID:  ownerID,
		Subdomain: "shop",
	})
	require.Error(t, err)
}

func TestGetHidesForeignApplications(t *testing.T) {
	f := newFixture(t, nil)
	app := f.createApp(t, "shop")

	got, err := f.svc.Get(context.Background(), ownerID, app.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, app.ID, got.ID)

	got, err = f.svc.Get(context.Background(), strangerID, app.ID.String())
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.Get(context.Background(), ownerID, "garbage")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = f.svc.Get(context.Background(), 0, app.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidCaller)
}

func TestListReturnsOnlyOwned(t *testing.T) {
	f := newFixture(t, nil)
	f.createApp(t, "one")
	f.createApp(t, "two")

	apps, err := f.svc.List(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	apps, err = f.svc.List(context.Background(), strangerID)
	require.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
}

func TestUpdateSubdomainFallbacks(t *testing.T) {
	f := newFixture(t, nil)
	app := f.createApp(t, "shop")
	ctx := context.Background()

	name := "Renamed"
	updated, err := f.svc.Update(ctx, domain.UpdateApplicationRequest{
		CallerID:         ownerID,
		ID:               app.ID.String(),
		Name:             &name,
		Subdomain:        "%%%",
		CurrentSubdomain: "fallback",
	})
	require.NoError(t, err)
	assert.Equal(t, "fallback", updated.Subdomain)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, app.Description, updated.Description)

	updated, err = f.svc.Update(ctx, domain.UpdateApplicationRequest{
		CallerID:  ownerID,
		ID:        app.ID.String(),
		Subdomain: "New Shop!",
	})
	require.NoError(t, err)
	assert.Equal(t, "NewShop", updated.Subdomain)

	updated, err = f.svc.Update(ctx, domain.UpdateApplicationRequest{
		CallerID: ownerID,
		ID:       app.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "NewShop", updated.Subdomain)
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t, nil)
	app := f.createApp(t, "shop")
	ctx := context.Background()

	_, err := f.svc.Update(ctx, domain.UpdateApplicationRequest{ID: app.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidCaller)

	_, err = f.svc.Update(ctx, domain.UpdateApplicationRequest{CallerID: ownerID})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.svc.Update(ctx, domain.UpdateApplicationRequest{CallerID: strangerID, ID: app.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bad := "nope"
	_, err = f.svc.Update(ctx, domain.UpdateApplicationRequest{CallerID: ownerID, ID: app.ID.String(), ImageBlurhash: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidBlurhash)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t, nil)
	app := f.createApp(t, "shop")
	f.seedPost(t, app.ID)
	require.NoError(t, f.db.Create(&campaigndomain.Campaign{
		ID:            f.node.Generate(),
		ApplicationID: app.ID,
		Name:          "spring",
		CampaignType:  campaigndomain.CampaignTypeBoth,
	}).Error)

	err := f.svc.Delete(context.Background(), domain.DeleteApplicationRequest{CallerID: ownerID, ID: app.ID.String()})
	require.NoError(t, err)

	assert.Zero(t, countRows(t, f.db, &postdomain.Post{}, app.ID))
	assert.Zero(t, countRows(t, f.db, &campaigndomain.Campaign{}, app.ID))

	got, err := f.svc.Get(context.Background(), ownerID, app.ID.String())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteForeignApplicationIsNotFound(t *testing.T) {
	f := newFixture(t, nil)
	app := f.createApp(t, "shop")

	err := f.svc.Delete(context.Background(), domain.DeleteApplicationRequest{CallerID: strangerID, ID: app.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.svc.Get(context.Background(), ownerID, app.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, got)
}

type failingCampaignRepo struct {
	campaigndomain.Repository
}

func (failingCampaignRepo) DeleteByApplication(context.Context, *gorm.DB, snowflake.ID) error {
	return errors.New("forced failure")
}

func TestDeleteRollsBackOnFailure(t *testing.T) {
	f := newFixture(t, failingCampaignRepo{Repository: campaignrepo.Provide()})
	app := f.createApp(t, "shop")
	f.seedPost(t, app.ID)

	err := f.svc.Delete(context.Background(), domain.DeleteApplicationRequest{CallerID: ownerID, ID: app.ID.String()})
	require.Error(t, err)

	assert.Equal(t, int64(1), countRows(t, f.db, &postdomain.Post{}, app.ID))
	got, err := f.svc.Get(context.Background(), ownerID, app.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, got)
}

package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/campaignhub/internal/application/domain"
	"github.com/smallbiznis/campaignhub/internal/campaign/domain"
	"github.com/smallbiznis/campaignhub/internal/clock"
	"github.com/smallbiznis/campaignhub/internal/config"
	"github.com/smallbiznis/campaignhub/internal/observability/metrics"
	postdomain "github.com/smallbiznis/campaignhub/internal/post/domain"
	"github.com/smallbiznis/campaignhub/internal/revalidate"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	AppRepo    appdomain.Repository
	PostRepo   postdomain.Repository
	Notifier   revalidate.Notifier
	Revalidate *config.RevalidateConfigHolder
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	appRepo    appdomain.Repository
	postRepo   postdomain.Repository
	notifier   revalidate.Notifier
	revalidate *config.RevalidateConfigHolder
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	holder := p.Revalidate
	if holder == nil {
		holder = config.NewStaticRevalidateConfig(config.DefaultRevalidateConfig())
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("campaign.service"),
		genID:      p.GenID,
		clock:      clk,
		repo:       p.Repo,
		appRepo:    p.AppRepo,
		postRepo:   p.PostRepo,
		notifier:   p.Notifier,
		revalidate: holder,
		metrics:    p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context, req domain.GetCampaignRequest) (*domain.Campaign, error) {
	if req.CallerID == 0 {
		return nil, domain.ErrInvalidCaller
	}
	id, ok := parseID(req.CampaignID)
	if !ok {
		return nil, nil
	}
	return s.repo.FindOwned(ctx, s.db, req.CallerID, id)
}

// List resolves the caller's application, narrowed by CampaignID only when it
// is set, and returns that caller's posts filtered by AppID and Published.
func (s *Service) List(ctx context.Context, req domain.ListCampaignRequest) (*domain.Overview, error) {
	if req.CallerID == 0 {
		return nil, domain.ErrInvalidCaller
	}

	var appFilter *snowflake.ID
	if strings.TrimSpace(req.CampaignID) != "" {
		id, ok := parseID(req.CampaignID)
		if !ok {
			return &domain.Overview{Campaigns: []postdomain.Post{}}, nil
		}
		appFilter = &id
	}

	app, err := s.appRepo.FindFirstOwned(ctx, s.db, req.CallerID, appFilter)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return &domain.Overview{Campaigns: []postdomain.Post{}}, nil
	}

	filter := postdomain.ListPostFilter{
		OwnerID:   req.CallerID,
		Published: true,
	}
	if req.Published != nil {
		filter.Published = *req.Published
	}
	if strings.TrimSpace(req.AppID) != "" {
		id, ok := parseID(req.AppID)
		if !ok {
			return &domain.Overview{Campaigns: []postdomain.Post{}, App: app}, nil
		}
		filter.ApplicationID = &id
	}

	posts, err := s.postRepo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	return &domain.Overview{Campaigns: posts, App: app}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateCampaignRequest) (*domain.Campaign, error) {
	if req.CallerID == 0 {
		return nil, domain.ErrInvalidCaller
	}
	if strings.TrimSpace(req.AppID) == "" {
		return nil, domain.ErrInvalidAppID
	}
	appID, ok := parseID(req.AppID)
	if !ok {
		return nil, domain.ErrAppNotFound
	}

	app, err := s.appRepo.FindOwned(ctx, s.db, req.CallerID, appID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrAppNotFound
	}

	if !req.CampaignType.Valid() {
		return nil, domain.ErrInvalidCampaignType
	}

	now := s.clock.Now()
	campaign := domain.Campaign{
		ID:            s.genID.Generate(),
		ApplicationID: app.ID,
		Name:          req.Name,
		CampaignType:  req.CampaignType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &campaign); err != nil {
		s.log.Error("failed to insert campaign", zap.String("application_id", app.ID.String()), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordResourceWrite(ctx, "campaign", "create")
	return &campaign, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteCampaignRequest) error {
	if req.CallerID == 0 {
		return domain.ErrInvalidCaller
	}
	if strings.TrimSpace(req.CampaignID) == "" {
		return domain.ErrInvalidID
	}
	id, ok := parseID(req.CampaignID)
	if !ok {
		return domain.ErrNotFound
	}

	var (
		app      *appdomain.Application
		campaign *domain.Campaign
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = s.repo.FindOwnedApplicationByCampaignID(ctx, tx, req.CallerID, id)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.ErrNotFound
		}

		campaign, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if campaign == nil {
			return domain.ErrNotFound
		}

		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordResourceWrite(ctx, "campaign", "delete")

	cfg := s.revalidate.Get()
	revalidate.NotifyAll(ctx, s.notifier, campaign.Name,
		revalidate.Targets(cfg, app.Subdomain, app.CustomDomainValue())...)

	return nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCampaignRequest) (*domain.Campaign, error) {
	if req.CallerID == 0 {
		return nil, domain.ErrInvalidCaller
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, domain.ErrInvalidID
	}
	id, ok := parseID(req.ID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	app, err := s.repo.FindOwnedApplicationByCampaignID(ctx, s.db, req.CallerID, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrNotFound
	}

	if req.CampaignType != nil && !req.CampaignType.Valid() {
		return nil, domain.ErrInvalidCampaignType
	}
	if !req.ClearMaxNumber && req.MaxNumber != nil && *req.MaxNumber < 0 {
		return nil, domain.ErrInvalidMaxNumber
	}

	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.CampaignType != nil {
		fields["campaign_type"] = *req.CampaignType
	}
	switch {
	case req.ClearMaxNumber:
		fields["max_number"] = nil
	case req.MaxNumber != nil:
		fields["max_number"] = *req.MaxNumber
	}
	switch {
	case req.ClearCampaignLastDate:
		fields["campaign_last_date"] = nil
	case req.CampaignLastDate != nil:
		fields["campaign_last_date"] = req.CampaignLastDate.UTC()
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return nil, err
	}

	campaign, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, domain.ErrNotFound
	}

	s.metrics.RecordResourceWrite(ctx, "campaign", "update")

	// Page paths are keyed by the campaign name as stored after this update.
	cfg := s.revalidate.Get()
	revalidate.NotifyAll(ctx, s.notifier, campaign.Name,
		revalidate.Targets(cfg, req.Subdomain, req.CustomDomain)...)

	return campaign, nil
}

func parseID(raw string) (snowflake.ID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

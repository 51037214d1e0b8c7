package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/campaignhub/internal/application/domain"
	campaigndomain "github.com/smallbiznis/campaignhub/internal/campaign/domain"
	"github.com/smallbiznis/campaignhub/internal/clock"
	"github.com/smallbiznis/campaignhub/internal/observability/metrics"
	postdomain "github.com/smallbiznis/campaignhub/internal/post/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	PostRepo     postdomain.Repository
	CampaignRepo campaigndomain.Repository
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	postRepo     postdomain.Repository
	campaignRepo campaigndomain.Repository
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("application.service"),
		genID:        p.GenID,
		clock:        clk,
		repo:         p.Repo,
		postRepo:     p.PostRepo,
		campaignRepo: p.CampaignRepo,
		metrics:      p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context, callerID snowflake.ID, id string) (*domain.Application, error) {
	if callerID == 0 {
		return nil, domain.ErrInvalidCaller
	}

	appID, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	return s.repo.FindOwned(ctx, s.db, callerID, appID)
}

func (s *Service) List(ctx context.Context, callerID snowflake.ID) ([]domain.Application, error) {
	if callerID == 0 {
		return nil, domain.ErrInvalidCaller
	}
	return s.repo.ListOwned(ctx, s.db, callerID)
}

func (s *Service) Create(ctx context.Context, req domain.CreateApplicationRequest) (*domain.Application, error) {
	ownerID := req.CallerID
	if raw := strings.TrimSpace(req.OwnerID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidOwner
		}
		ownerID = parsed
	}
	if ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}

	subdomain := domain.SanitizeSubdomain(req.Subdomain)
	if subdomain == "" {
		subdomain = newSubdomain()
	}

	now := s.clock.Now()
	app := domain.Application{
		ID:            s.genID.Generate(),
		UserID:        ownerID,
		Name:          req.Name,
		Description:   req.Description,
		Logo:          domain.DefaultLogo,
		Image:         domain.DefaultImage,
		ImageBlurhash: domain.PlaceholderBlurhash,
		Subdomain:     subdomain,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &app); err != nil {
		s.log.Error("failed to insert application", zap.String("subdomain", subdomain), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordResourceWrite(ctx, "application", "create")
	return &app, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateApplicationRequest) (*domain.Application, error) {
	if req.CallerID == 0 {
		return nil, domain.ErrInvalidCaller
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, domain.ErrInvalidID
	}
	appID, ok := parseID(req.ID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.ImageBlurhash != nil && *req.ImageBlurhash != "" && !domain.ValidBlurhash(*req.ImageBlurhash) {
		return nil, domain.ErrInvalidBlurhash
	}

	var updated *domain.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.repo.FindOwned(ctx, tx, req.CallerID, appID)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.ErrNotFound
		}

		fields := map[string]any{"updated_at": s.clock.Now()}
		if req.Name != nil {
			fields["name"] = *req.Name
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.Image != nil {
			fields["image"] = *req.Image
		}
		if req.ImageBlurhash != nil {
			fields["image_blurhash"] = *req.ImageBlurhash
		}

		subdomain := domain.SanitizeSubdomain(req.Subdomain)
		if subdomain == "" {
			subdomain = req.CurrentSubdomain
		}
		if subdomain != "" {
			fields["subdomain"] = subdomain
		}

		if err := s.repo.UpdateFields(ctx, tx, req.CallerID, appID, fields); err != nil {
			return err
		}

		updated, err = s.repo.FindOwned(ctx, tx, req.CallerID, appID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}

	s.metrics.RecordResourceWrite(ctx, "application", "update")
	return updated, nil
}

// Delete removes the application together with its posts and campaigns in one
// transaction.
func (s *Service) Delete(ctx context.Context, req domain.DeleteApplicationRequest) error {
	if req.CallerID == 0 {
		return domain.ErrInvalidCaller
	}
	if strings.TrimSpace(req.ID) == "" {
		return domain.ErrInvalidID
	}
	appID, ok := parseID(req.ID)
	if !ok {
		return domain.ErrNotFound
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.repo.FindOwned(ctx, tx, req.CallerID, appID)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.ErrNotFound
		}

		if err := s.postRepo.DeleteByApplication(ctx, tx, app.ID); err != nil {
			return err
		}
		if err := s.campaignRepo.DeleteByApplication(ctx, tx, app.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, req.CallerID, app.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("application deleted", zap.String("application_id", appID.String()))
	s.metrics.RecordResourceWrite(ctx, "application", "delete")
	return nil
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

func newSubdomain() string {
	return strings.ToLower(ulid.Make().String())
}

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type GetCampaignRequest struct {
	CallerID   snowflake.ID
	CampaignID string
}

type ListCampaignRequest struct {
	CallerID   snowflake.ID
	CampaignID string
	AppID      string
	Published  *bool
}

type CreateCampaignRequest struct {
	CallerID     snowflake.ID
	AppID        string
	Name         string
	CampaignType CampaignType
}

type DeleteCampaignRequest struct {
	CallerID   snowflake.ID
	CampaignID string
}

type UpdateCampaignRequest struct {
	CallerID  snowflake.ID
	ID        string
	Name      *string
	MaxNumber *int
	// ClearMaxNumber resets max_number to NULL; MaxNumber is ignored when set.
	ClearMaxNumber        bool
	CampaignLastDate      *time.Time
	ClearCampaignLastDate bool
	CampaignType          *CampaignType
	IsActive              *bool
	Subdomain             string
	CustomDomain          string
}

type Service interface {
	// Get returns nil without error when the campaign is absent or not owned by the caller.
	Get(ctx context.Context, req GetCampaignRequest) (*Campaign, error)
	List(ctx context.Context, req ListCampaignRequest) (*Overview, error)
	Create(ctx context.Context, req CreateCampaignRequest) (*Campaign, error)
	Delete(ctx context.Context, req DeleteCampaignRequest) error
	Update(ctx context.Context, req UpdateCampaignRequest) (*Campaign, error)
}

var (
	ErrInvalidCaller       = errors.New("invalid_caller")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidAppID        = errors.New("invalid_app_id")
	ErrInvalidCampaignType = errors.New("invalid_campaign_type")
	ErrInvalidMaxNumber    = errors.New("invalid_max_number")
	ErrNotFound            = errors.New("not_found")
	ErrAppNotFound         = errors.New("app_not_found")
)

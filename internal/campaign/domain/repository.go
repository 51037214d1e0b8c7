package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/campaignhub/internal/application/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	// FindOwned loads the campaign with its application when that application belongs to userID.
	FindOwned(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Campaign, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campaign, error)
	// FindOwnedApplicationByCampaignID is the authorization check shared by update and delete.
	FindOwnedApplicationByCampaignID(ctx context.Context, db *gorm.DB, userID, campaignID snowflake.ID) (*appdomain.Application, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DeleteByApplication(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) error
}

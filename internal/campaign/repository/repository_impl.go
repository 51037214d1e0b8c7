package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/campaignhub/internal/application/domain"
	"github.com/smallbiznis/campaignhub/internal/campaign/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Omit("App").Create(campaign).Error
}

func (r *repo) FindOwned(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).
		Preload("App").
		Joins("JOIN applications ON applications.id = campaigns.application_id").
		Where("campaigns.id = ? AND applications.user_id = ?", id, userID).
		First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repo) FindOwnedApplicationByCampaignID(ctx context.Context, db *gorm.DB, userID, campaignID snowflake.ID) (*appdomain.Application, error) {
	var app appdomain.Application
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("EXISTS (SELECT 1 FROM campaigns WHERE campaigns.application_id = applications.id AND campaigns.id = ?)", campaignID).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Campaign{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	tx := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Campaign{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) DeleteByApplication(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Delete(&domain.Campaign{}).Error
}

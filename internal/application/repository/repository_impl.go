package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/campaignhub/internal/application/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).Create(app).Error
}

func (r *repo) FindOwned(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Application, error) {
	return r.FindFirstOwned(ctx, db, userID, &id)
}

// FindFirstOwned returns the caller's first application, narrowed to id when id is non-nil.
func (r *repo) FindFirstOwned(ctx context.Context, db *gorm.DB, userID snowflake.ID, id *snowflake.ID) (*domain.Application, error) {
	var app domain.Application
	stmt := db.WithContext(ctx).Where("user_id = ?", userID)
	if id != nil {
		stmt = stmt.Where("id = ?", *id)
	}
	err := stmt.Order("created_at asc, id asc").First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repo) ListOwned(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Application, error) {
	apps := []domain.Application{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	tx := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Application{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

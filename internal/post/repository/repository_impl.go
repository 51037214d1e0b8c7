package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/campaignhub/internal/post/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, post *domain.Post) error {
	return db.WithContext(ctx).Create(post).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPostFilter) ([]domain.Post, error) {
	posts := []domain.Post{}
	stmt := db.WithContext(ctx).
		Model(&domain.Post{}).
		Select("posts.*").
		Joins("JOIN applications ON applications.id = posts.application_id").
		Where("applications.user_id = ?", filter.OwnerID).
		Where("posts.published = ?", filter.Published)
	if filter.ApplicationID != nil {
		stmt = stmt.Where("posts.application_id = ?", *filter.ApplicationID)
	}
	err := stmt.
		Order("posts.created_at desc, posts.id desc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repo) DeleteByApplication(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Delete(&domain.Post{}).Error
}

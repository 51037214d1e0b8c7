package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Post is a content item published under an application.
type Post struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ApplicationID snowflake.ID `gorm:"column:application_id;not null;index" json:"appId"`
	Title         string       `gorm:"column:title" json:"title"`
	Description   string       `gorm:"column:description" json:"description"`
	Content       string       `gorm:"column:content" json:"content"`
	Slug          string       `gorm:"column:slug;not null" json:"slug"`
	Image         string       `gorm:"column:image" json:"image"`
	ImageBlurhash string       `gorm:"column:image_blurhash" json:"imageBlurhash"`
	Published     bool         `gorm:"column:published;not null;default:false" json:"published"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// ListPostFilter scopes a listing to applications owned by OwnerID.
type ListPostFilter struct {
	OwnerID       snowflake.ID
	ApplicationID *snowflake.ID
	Published     bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, post *Post) error
	List(ctx context.Context, db *gorm.DB, filter ListPostFilter) ([]Post, error)
	DeleteByApplication(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) error
}

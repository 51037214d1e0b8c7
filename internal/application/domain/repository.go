package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository lookups are always scoped to the owning user. A row owned by
// someone else is reported the same way as a missing row: (nil, nil).
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, app *Application) error
	FindOwned(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Application, error)
	FindFirstOwned(ctx context.Context, db *gorm.DB, userID snowflake.ID, id *snowflake.ID) (*Application, error)
	ListOwned(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Application, error)
	UpdateFields(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error
}

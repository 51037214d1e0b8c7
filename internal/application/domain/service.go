package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateApplicationRequest struct {
	CallerID    snowflake.ID
	OwnerID     string
	Name        string
	Description string
	Subdomain   string
}

type UpdateApplicationRequest struct {
	CallerID         snowflake.ID
	ID               string
	Name             *string
	Description      *string
	Subdomain        string
	CurrentSubdomain string
	Image            *string
	ImageBlurhash    *string
}

type DeleteApplicationRequest struct {
	CallerID snowflake.ID
	ID       string
}

type Service interface {
	// Get returns nil without error when the application is absent or owned by another user.
	Get(ctx context.Context, callerID snowflake.ID, id string) (*Application, error)
	List(ctx context.Context, callerID snowflake.ID) ([]Application, error)
	Create(ctx context.Context, req CreateApplicationRequest) (*Application, error)
	Update(ctx context.Context, req UpdateApplicationRequest) (*Application, error)
	Delete(ctx context.Context, req DeleteApplicationRequest) error
}

var (
	ErrInvalidCaller   = errors.New("invalid_caller")
	ErrInvalidOwner    = errors.New("invalid_owner")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidBlurhash = errors.New("invalid_image_blurhash")
	ErrNotFound        = errors.New("not_found")
)

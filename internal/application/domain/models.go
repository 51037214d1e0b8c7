package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	DefaultLogo  = "/logo.png"
	DefaultImage = "/placeholder.png"
	// PlaceholderBlurhash is shown while DefaultImage loads.
	PlaceholderBlurhash = "LEHV6nWB2yk8pyo0adR*.7kCMdnj"
)

// Application is a tenant site reachable under its subdomain or custom domain.
type Application struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID        snowflake.ID `gorm:"column:user_id;not null;index" json:"userId"`
	Name          string       `gorm:"column:name" json:"name"`
	Description   string       `gorm:"column:description" json:"description"`
	Logo          string       `gorm:"column:logo" json:"logo"`
	Image         string       `gorm:"column:image" json:"image"`
	ImageBlurhash string       `gorm:"column:image_blurhash" json:"imageBlurhash"`
	Subdomain     string       `gorm:"column:subdomain;not null;uniqueIndex" json:"subdomain"`
	CustomDomain  *string      `gorm:"column:custom_domain;uniqueIndex" json:"customDomain"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Application) TableName() string { return "applications" }

// CustomDomainValue returns the custom domain or "" when none is bound.
func (a Application) CustomDomainValue() string {
	if a.CustomDomain == nil {
		return ""
	}
	return *a.CustomDomain
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/campaignhub/internal/application/domain"
	postdomain "github.com/smallbiznis/campaignhub/internal/post/domain"
)

type CampaignType string

const (
	CampaignTypeMaxTotal     CampaignType = "MAX_TOTAL"
	CampaignTypeDateValidity CampaignType = "DATE_VALIDITY"
	CampaignTypeBoth         CampaignType = "BOTH"
)

func (t CampaignType) Valid() bool {
	switch t {
	case CampaignTypeMaxTotal, CampaignTypeDateValidity, CampaignTypeBoth:
		return true
	default:
		return false
	}
}

// Campaign is a promotion attached to an application. It has no owner of its
// own; access is always derived from the parent application.
type Campaign struct {
	ID               snowflake.ID           `gorm:"primaryKey" json:"id"`
	ApplicationID    snowflake.ID           `gorm:"column:application_id;not null;index" json:"appId"`
	Name             string                 `gorm:"column:name" json:"name"`
	CampaignType     CampaignType           `gorm:"column:campaign_type;not null" json:"campaignType"`
	MaxNumber        *int                   `gorm:"column:max_number" json:"maxNumber"`
	CampaignLastDate *time.Time             `gorm:"column:campaign_last_date" json:"campaignLastDate"`
	IsActive         bool                   `gorm:"column:is_active;not null;default:false" json:"isActive"`
	CreatedAt        time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt        time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
	App              *appdomain.Application `gorm:"foreignKey:ApplicationID" json:"app,omitempty"`
}

func (Campaign) TableName() string { return "campaigns" }

// Overview is the payload of a campaign listing: the caller's application and
// its posts.
type Overview struct {
	Campaigns []postdomain.Post      `json:"campaigns"`
	App       *appdomain.Application `json:"app"`
}

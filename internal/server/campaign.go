package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	campaigndomain "github.com/smallbiznis/campaignhub/internal/campaign/domain"
)

type createCampaignRequest struct {
	Name         string `json:"name"`
	CampaignType string `json:"campaignType"`
}

type createCampaignResponse struct {
	CampaignID string `json:"campaignId"`
}

type updateCampaignRequest struct {
	ID               json.RawMessage              `json:"id"`
	Name             *string                      `json:"name"`
	MaxNumber        json.RawMessage              `json:"maxNumber"`
	CampaignLastDate json.RawMessage              `json:"campaignLastDate"`
	CampaignType     *campaigndomain.CampaignType `json:"campaignType"`
	IsActive         *bool                        `json:"isActive"`
	Subdomain        string                       `json:"subdomain"`
	CustomDomain     string                       `json:"customDomain"`
}

// GetCampaign returns one owned campaign when campaignId is set, otherwise the caller's overview.
func (s *Server) GetCampaign(c *gin.Context) {
	campaignID, err := singleQuery(c, "campaignId")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	appID, err := singleQuery(c, "appId")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	rawPublished, err := singleQuery(c, "published")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, campaigndomain.ErrInvalidCaller)
		return
	}

	ctx := c.Request.Context()
	if campaignID != "" {
		campaign, err := s.campaignSvc.Get(ctx, campaigndomain.GetCampaignRequest{
			CallerID:   userID,
			CampaignID: campaignID,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, campaign)
		return
	}

	published, err := parseOptionalBool(rawPublished)
	if err != nil {
		AbortWithError(c, newValidationError("published", "invalid_published", "published must be a boolean"))
		return
	}

	overview, err := s.campaignSvc.List(ctx, campaigndomain.ListCampaignRequest{
		CallerID:   userID,
		CampaignID: campaignID,
		AppID:      appID,
		Published:  published,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) CreateCampaign(c *gin.Context) {
	appID, err := singleQuery(c, "appId")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if appID == "" {
		AbortWithError(c, campaigndomain.ErrInvalidAppID)
		return
	}

	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, campaigndomain.ErrInvalidCaller)
		return
	}

	campaign, err := s.campaignSvc.Create(c.Request.Context(), campaigndomain.CreateCampaignRequest{
		CallerID:     userID,
		AppID:        appID,
		Name:         req.Name,
		CampaignType: campaigndomain.CampaignType(req.CampaignType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createCampaignResponse{CampaignID: campaign.ID.String()})
}

func (s *Server) UpdateCampaign(c *gin.Context) {
	var req updateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id, ok := stringID(req.ID)
	if !ok {
		AbortWithError(c, campaigndomain.ErrInvalidID)
		return
	}

	maxNumber, clearMaxNumber, err := nullableField[int](req.MaxNumber)
	if err != nil {
		AbortWithError(c, newValidationError("maxNumber", "invalid_max_number", "maxNumber must be an integer or null"))
		return
	}
	lastDate, clearLastDate, err := nullableField[time.Time](req.CampaignLastDate)
	if err != nil {
		AbortWithError(c, newValidationError("campaignLastDate", "invalid_campaign_last_date", "campaignLastDate must be a timestamp or null"))
		return
	}

	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, campaigndomain.ErrInvalidCaller)
		return
	}

	campaign, err := s.campaignSvc.Update(c.Request.Context(), campaigndomain.UpdateCampaignRequest{
		CallerID:              userID,
		ID:                    id,
		Name:                  req.Name,
		MaxNumber:             maxNumber,
		ClearMaxNumber:        clearMaxNumber,
		CampaignLastDate:      lastDate,
		ClearCampaignLastDate: clearLastDate,
		CampaignType:          req.CampaignType,
		IsActive:              req.IsActive,
		Subdomain:             req.Subdomain,
		CustomDomain:          req.CustomDomain,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

func (s *Server) DeleteCampaign(c *gin.Context) {
	campaignID, err := singleQuery(c, "campaignId")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if campaignID == "" {
		AbortWithError(c, campaigndomain.ErrInvalidID)
		return
	}

	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, campaigndomain.ErrInvalidCaller)
		return
	}

	if err := s.campaignSvc.Delete(c.Request.Context(), campaigndomain.DeleteCampaignRequest{
		CallerID:   userID,
		CampaignID: campaignID,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// nullableField decodes an optional JSON member. An omitted member yields
// (nil, false); a literal null yields (nil, true).
func nullableField[T any](raw json.RawMessage) (*T, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, true, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, err
	}
	return &v, false, nil
}

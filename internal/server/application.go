package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appdomain "github.com/smallbiznis/campaignhub/internal/application/domain"
)

type createApplicationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Subdomain   string `json:"subdomain"`
	UserID      string `json:"userId"`
}

type createApplicationResponse struct {
	SiteID string `json:"siteId"`
}

type updateApplicationRequest struct {
	ID               json.RawMessage `json:"id"`
	CurrentSubdomain string          `json:"currentSubdomain"`
	Name             *string         `json:"name"`
	Description      *string         `json:"description"`
	Image            *string         `json:"image"`
	ImageBlurhash    *string         `json:"imageBlurhash"`
	Subdomain        string          `json:"subdomain"`
}

// GetApplication returns one owned application (or null) when appId is non-empty, otherwise all of them.
func (s *Server) GetApplication(c *gin.Context) {
	appID, err := singleQuery(c, "appId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, appdomain.ErrInvalidCaller)
		return
	}

	ctx := c.Request.Context()
	if appID != "" {
		app, err := s.appSvc.Get(ctx, userID, appID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, app)
		return
	}

	apps, err := s.appSvc.List(ctx, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if apps == nil {
		apps = []appdomain.Application{}
	}
	c.JSON(http.StatusOK, apps)
}

func (s *Server) CreateApplication(c *gin.Context) {
	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, appdomain.ErrInvalidCaller)
		return
	}

	app, err := s.appSvc.Create(c.Request.Context(), appdomain.CreateApplicationRequest{
		CallerID:    userID,
		OwnerID:     strings.TrimSpace(req.UserID),
		Name:        req.Name,
		Description: req.Description,
		Subdomain:   req.Subdomain,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createApplicationResponse{SiteID: app.ID.String()})
}

func (s *Server) UpdateApplication(c *gin.Context) {
	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id, ok := stringID(req.ID)
	if !ok {
		AbortWithError(c, appdomain.ErrInvalidID)
		return
	}

	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	app, err := s.appSvc.Update(c.Request.Context(), appdomain.UpdateApplicationRequest{
		CallerID:         userID,
		ID:               id,
		Name:             req.Name,
		Description:      req.Description,
		Subdomain:        req.Subdomain,
		CurrentSubdomain: req.CurrentSubdomain,
		Image:            req.Image,
		ImageBlurhash:    req.ImageBlurhash,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func (s *Server) DeleteApplication(c *gin.Context) {
	appID, err := singleQuery(c, "appId")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if appID == "" {
		AbortWithError(c, appdomain.ErrInvalidID)
		return
	}

	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.appSvc.Delete(c.Request.Context(), appdomain.DeleteApplicationRequest{
		CallerID: userID,
		ID:       appID,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

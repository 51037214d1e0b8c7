package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/campaignhub/internal/observability/context"
	"github.com/smallbiznis/campaignhub/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	contextUserIDKey = "user_id"

	rateLimitReasonUserRate = "user-rate"
)

// SessionRequired resolves the session cookie to a user and rejects the request with 401 otherwise.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if sess == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID := sess.UserID.String()
		c.Set(contextUserIDKey, userID)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), "user", userID))
		c.Next()
	}
}

// MutationRateLimit throttles writes per user. Redis failures let the request through.
func (s *Server) MutationRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() || !isMutation(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		userID, ok := s.userIDFromSession(c)
		if !ok {
			c.Next()
			return
		}

		result, err := s.limiter.Allow(ctx, userID.String())
		if err != nil {
			logger.FromContext(ctx).Warn("mutation rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			logger.FromContext(ctx).Warn("mutation rate limit exceeded",
				zap.String("reason", rateLimitReasonUserRate),
				zap.String("endpoint", endpoint),
			)
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonUserRate)

			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Header("X-Rate-Limited-Reason", rateLimitReasonUserRate)
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}

func (s *Server) userIDFromSession(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	raw, ok := value.(string)
	if !ok {
		return 0, false
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return userID, true
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return c.Request.Method + " " + endpoint
}

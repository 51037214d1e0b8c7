package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appdomain "github.com/smallbiznis/campaignhub/internal/application/domain"
	authdomain "github.com/smallbiznis/campaignhub/internal/auth/domain"
	"github.com/smallbiznis/campaignhub/internal/auth/session"
	campaigndomain "github.com/smallbiznis/campaignhub/internal/campaign/domain"
	"github.com/smallbiznis/campaignhub/internal/config"
	"github.com/smallbiznis/campaignhub/internal/observability"
	obslogger "github.com/smallbiznis/campaignhub/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/campaignhub/internal/observability/metrics"
	obstracing "github.com/smallbiznis/campaignhub/internal/observability/tracing"
	"github.com/smallbiznis/campaignhub/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	authsvc     authdomain.Service
	sessions    *session.Manager
	appSvc      appdomain.Service
	campaignSvc campaigndomain.Service
	limiter     *ratelimit.MutationLimiter
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Authsvc     authdomain.Service
	Sessions    *session.Manager
	AppSvc      appdomain.Service
	CampaignSvc campaigndomain.Service
	Limiter     *ratelimit.MutationLimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		authsvc:     p.Authsvc,
		sessions:    p.Sessions,
		appSvc:      p.AppSvc,
		campaignSvc: p.CampaignSvc,
		limiter:     p.Limiter,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.SessionRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// Unsupported methods answer 405 before any session lookup.
	for _, method := range unsupportedMethods(resourceMethods) {
		api.Handle(method, "/application", methodNotAllowed(resourceMethods))
		api.Handle(method, "/campaign", methodNotAllowed(resourceMethods))
	}

	authed := api.Group("", s.SessionRequired(), s.MutationRateLimit())

	// -------- Applications --------
	authed.GET("/application", s.GetApplication)
	authed.POST("/application", s.CreateApplication)
	authed.PUT("/application", s.UpdateApplication)
	authed.DELETE("/application", s.DeleteApplication)

	// -------- Campaigns --------
	authed.GET("/campaign", s.GetCampaign)
	authed.POST("/campaign", s.CreateCampaign)
	authed.PUT("/campaign", s.UpdateCampaign)
	authed.DELETE("/campaign", s.DeleteCampaign)
}

var resourceMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
}

var allMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

func unsupportedMethods(allowed []string) []string {
	out := make([]string, 0, len(allMethods))
	for _, method := range allMethods {
		supported := false
		for _, candidate := range allowed {
			if method == candidate {
				supported = true
				break
			}
		}
		if !supported {
			out = append(out, method)
		}
	}
	return out
}

func methodNotAllowed(allowed []string) gin.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(c *gin.Context) {
		c.Header("Allow", allow)
		AbortWithError(c, ErrMethodNotAllowed)
	}
}

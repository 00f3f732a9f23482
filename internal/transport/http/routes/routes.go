package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/neighborhood-market/internal/infra/config"
	"github.com/arklim/neighborhood-market/internal/transport/http/handlers"
	"github.com/arklim/neighborhood-market/internal/transport/http/middleware"
	"github.com/arklim/neighborhood-market/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Authorize  *usecase.AuthorizeService
	Catalog    *usecase.CatalogService
	Moderation *usecase.ModerationService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	AppDB       DatabaseChecker
	ServiceDB   DatabaseChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
//
// Health probes and metrics sit outside the /api group so the rate limiter
// never throttles them.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.AppDB != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database_app", deps.AppDB.Ping))
	}

	if deps.ServiceDB != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database_service", deps.ServiceDB.Ping))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Limit())
	}

	if deps.Services.Catalog != nil {
		listingHandler := handlers.NewListingHandler(deps.Services.Catalog)
		listingHandler.RegisterRoutes(api)
	}

	if deps.Services.Authorize != nil && deps.Services.Moderation != nil {
		authMiddleware := middleware.Authenticated(deps.Services.Authorize, deps.Config.Identity.TokenCookie)
		moderationHandler := handlers.NewModerationHandler(deps.Services.Moderation)

		authenticated := api.Group("", authMiddleware)
		admin := api.Group("", authMiddleware, middleware.RequireAdmin())
		moderationHandler.RegisterRoutes(authenticated, admin)
	}

	return r
}

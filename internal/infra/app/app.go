package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/infra/config"
	"github.com/arklim/neighborhood-market/internal/infra/database"
	"github.com/arklim/neighborhood-market/internal/infra/identity"
	kafkainfra "github.com/arklim/neighborhood-market/internal/infra/kafka"
	"github.com/arklim/neighborhood-market/internal/infra/logger"
	postgresrepo "github.com/arklim/neighborhood-market/internal/repository/postgres"
	"github.com/arklim/neighborhood-market/internal/transport/http/middleware"
	"github.com/arklim/neighborhood-market/internal/transport/http/routes"
	"github.com/arklim/neighborhood-market/internal/usecase"
)

type Application struct {
	cfg         *config.AppConfig
	engine      *gin.Engine
	logger      *zap.Logger
	appPool     *pgxpool.Pool
	servicePool *pgxpool.Pool
	producer    *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	// Two pools against the same database: the app tier is scoped by row
	// policies for public reads, the service tier holds elevated credentials
	// for role resolution and moderation.
	appPool, err := database.NewPostgresPool(ctx, cfg.Postgres, database.TierApp, log)
	if err != nil {
		return nil, fmt.Errorf("init app postgres pool: %w", err)
	}

	servicePool, err := database.NewPostgresPool(ctx, cfg.Postgres, database.TierService, log)
	if err != nil {
		appPool.Close()
		return nil, fmt.Errorf("init service postgres pool: %w", err)
	}

	appRepos := postgresrepo.NewRepositories(appPool)
	serviceRepos := postgresrepo.NewRepositories(servicePool)

	tokenValidator, err := newTokenValidator(cfg.Identity, log)
	if err != nil {
		appPool.Close()
		servicePool.Close()
		return nil, fmt.Errorf("init token validator: %w", err)
	}

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	authorizeService := usecase.NewAuthorizeService(tokenValidator, serviceRepos.Members)
	catalogService := usecase.NewCatalogService(appRepos.Listings)
	moderationService := usecase.NewModerationService(serviceRepos.Listings, serviceRepos.Members, eventPublisher, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		appPool.Close()
		servicePool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	rateLimited := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "market",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	})
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, log).WithRejectionCounter(rateLimited)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		AppDB:       appPool,
		ServiceDB:   servicePool,
		Services: routes.ServiceSet{
			Authorize:  authorizeService,
			Catalog:    catalogService,
			Moderation: moderationService,
		},
	})

	return &Application{
		cfg:         cfg,
		engine:      engine,
		logger:      log,
		appPool:     appPool,
		servicePool: servicePool,
		producer:    producer,
	}, nil
}

func newTokenValidator(cfg config.IdentitySettings, log *zap.Logger) (port.TokenValidator, error) {
	if cfg.JWTSecret != "" {
		log.Info("using local token validation against the provider signing secret")
		validator, err := identity.NewHSValidator(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return validator, nil
	}

	log.Info("using remote token validation", zap.String("base_url", cfg.BaseURL))
	return identity.NewClient(cfg, log), nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.appPool != nil {
			a.appPool.Close()
		}
		if a.servicePool != nil {
			a.servicePool.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("failed to close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting marketplace gateway",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

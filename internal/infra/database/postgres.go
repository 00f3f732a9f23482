package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/neighborhood-market/internal/infra/config"
)

// Tier names the trust level a pool connects with.
type Tier string

const (
	// TierApp connects with the RLS-scoped application role used for public reads.
	TierApp Tier = "app"
	// TierService connects with the elevated service role that bypasses
	// row-level security; used for role resolution and moderation.
	TierService Tier = "service"
)

// NewPostgresPool builds a pgx pool for the requested trust tier.
func NewPostgresPool(ctx context.Context, cfg config.PostgresSettings, tier Tier, log *zap.Logger) (*pgxpool.Pool, error) {
	user := cfg.AppUser
	password := cfg.AppPassword
	if tier == TierService {
		user = cfg.ServiceUser
		password = cfg.ServicePassword
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user,
		password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres (%s tier): %w", tier, err)
	}

	log.Info("connected to postgres",
		zap.String("tier", string(tier)),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int32("max_conns", poolConfig.MaxConns),
	)

	return pool, nil
}

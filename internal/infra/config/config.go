package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Identity  IdentitySettings  `mapstructure:"identity"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	CORS      CORSSettings      `mapstructure:"cors"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// PostgresSettings carries two credential pairs for the same database: the
// service role used for moderation and role resolution, and an RLS-scoped
// application role used for public reads. The split keeps the trust boundary
// visible where pools are constructed instead of buried in a DSN.
type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	ServiceUser       string        `mapstructure:"service_user"`
	ServicePassword   string        `mapstructure:"service_password"`
	AppUser           string        `mapstructure:"app_user"`
	AppPassword       string        `mapstructure:"app_password"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// IdentitySettings configures the external identity provider integration.
// When JWTSecret is set, bearer tokens are verified locally against the
// provider's HS256 signing secret; otherwise each request calls the
// provider's userinfo endpoint.
type IdentitySettings struct {
	BaseURL     string        `mapstructure:"base_url"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	Timeout     time.Duration `mapstructure:"timeout"`
	TokenCookie string        `mapstructure:"token_cookie"`
}

// KafkaSettings configures the moderation event producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// RateLimitSettings configures the fixed-window API rate limiter.
type RateLimitSettings struct {
	WindowDuration time.Duration `mapstructure:"window_duration"`
	MaxRequests    int           `mapstructure:"max_requests"`
	MaxEntries     int           `mapstructure:"max_entries"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("MARKET")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.service_user",
		"postgres.service_password",
		"postgres.app_user",
		"postgres.app_password",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"identity.base_url",
		"identity.jwt_secret",
		"identity.timeout",
		"identity.token_cookie",
		"kafka.brokers",
		"kafka.topic_prefix",
		"rate_limit.window_duration",
		"rate_limit.max_requests",
		"rate_limit.max_entries",
		"cors.allowed_origins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Identity.BaseURL == "" && cfg.Identity.JWTSecret == "" {
		return nil, fmt.Errorf("identity provider is not configured: set identity.base_url or identity.jwt_secret")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "market-gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.database", "market")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.service_user", "market_service")
	v.SetDefault("postgres.service_password", "market_service_password")
	v.SetDefault("postgres.app_user", "market_app")
	v.SetDefault("postgres.app_password", "market_app_password")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("identity.base_url", "")
	v.SetDefault("identity.jwt_secret", "")
	v.SetDefault("identity.timeout", "5s")
	v.SetDefault("identity.token_cookie", "sp-access-token")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "market")

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.max_requests", 10)
	v.SetDefault("rate_limit.max_entries", 10000)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "MARKET_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

package app

import (
	"time"

	"github.com/yungbote/dentest-backend/internal/clients/redis"
	"github.com/yungbote/dentest-backend/internal/data/db"
	"github.com/yungbote/dentest-backend/internal/data/sessionstore"
	"github.com/yungbote/dentest-backend/internal/observability"
	"github.com/yungbote/dentest-backend/internal/platform/envutil"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type Config struct {
	Env     string
	Addr    string
	Version string

	DB    db.Config
	Redis redis.Config

	QuizSessionTTL time.Duration

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CookieSecure bool
	CookieDomain string
	CORSOrigins  []string

	SubscriptionRequired bool
	RequestTimeout       time.Duration
	ShutdownTimeout      time.Duration

	MetricsAddr string
	Otel        observability.OtelConfig
}

const defaultJWTSecret = "defaultsecret"

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Env:     envutil.String("LOG_MODE", "development"),
		Addr:    ":" + envutil.String("PORT", "8080"),
		Version: envutil.String("APP_VERSION", "dev"),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "dentest"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "dentest.db"),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		QuizSessionTTL:       envutil.Seconds("QUIZ_SESSION_TTL", sessionstore.DefaultTTL),
		JWTSecretKey:         envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:       envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:      envutil.Seconds("REFRESH_TOKEN_TTL", 24*time.Hour),
		CookieSecure:         envutil.Bool("COOKIE_SECURE", false),
		CookieDomain:         envutil.String("COOKIE_DOMAIN", ""),
		CORSOrigins:          envutil.List("CORS_ORIGINS", nil),
		SubscriptionRequired: envutil.Bool("SUBSCRIPTION_REQUIRED", false),
		RequestTimeout:       envutil.Seconds("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:      envutil.Seconds("SHUTDOWN_TIMEOUT", 15*time.Second),
		MetricsAddr:          envutil.String("METRICS_ADDR", ":9090"),
	}
	cfg.Otel = observability.OtelConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", serviceName),
		Environment: cfg.Env,
		Version:     cfg.Version,
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
	}
	if cfg.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	return cfg
}

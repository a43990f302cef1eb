package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	CORS      CORSConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. The JWT secret is required and
// must be at least 32 bytes; Load aborts otherwise.
type AuthConfig struct {
	JWTSecret  string
	BcryptCost int
}

// RatePolicy is the fixed-window budget for one endpoint class.
type RatePolicy struct {
	Max     int
	Window  time.Duration
	Message string
}

// RateLimitConfig holds per-class policies plus the explicit bypass switch.
type RateLimitConfig struct {
	Disabled  bool
	Store     string // "memory" or "redis"
	Auth      RatePolicy
	General   RatePolicy
	Messaging RatePolicy
}

// MailConfig configures outbound mail. Mode "mock" logs links instead of sending.
type MailConfig struct {
	From        string
	Mode        string
	FrontendURL string
}

// CORSConfig lists origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables, applying defaults where
// possible and failing fast on invalid security-sensitive values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	mailMode := getEnv("EMAIL_MODE", "mock")
	if mailMode != "real" && mailMode != "mock" {
		return nil, fmt.Errorf(`EMAIL_MODE must be either "real" or "mock"`)
	}

	store := getEnv("RATE_LIMIT_STORE", "memory")
	if store != "memory" && store != "redis" {
		return nil, fmt.Errorf(`RATE_LIMIT_STORE must be either "memory" or "redis"`)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "chat-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:  secret,
			BcryptCost: getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		RateLimit: RateLimitConfig{
			Disabled: getEnvAsBool("RATE_LIMIT_DISABLED", false),
			Store:    store,
			Auth: RatePolicy{
				Max:     getEnvAsInt("RATE_LIMIT_AUTH_MAX", 5),
				Window:  time.Duration(getEnvAsInt("RATE_LIMIT_AUTH_WINDOW_SECONDS", 900)) * time.Second,
				Message: "Too many authentication attempts from this IP, please try again after 15 minutes",
			},
			General: RatePolicy{
				Max:     getEnvAsInt("RATE_LIMIT_GENERAL_MAX", 100),
				Window:  time.Duration(getEnvAsInt("RATE_LIMIT_GENERAL_WINDOW_SECONDS", 60)) * time.Second,
				Message: "Too many requests from this IP, please try again after a minute",
			},
			Messaging: RatePolicy{
				Max:     getEnvAsInt("RATE_LIMIT_MESSAGE_MAX", 20),
				Window:  time.Duration(getEnvAsInt("RATE_LIMIT_MESSAGE_WINDOW_SECONDS", 60)) * time.Second,
				Message: "Too many messages sent from this IP, please try again after a minute",
			},
		},
		Mail: MailConfig{
			From:        getEnv("EMAIL_FROM", "noreply@example.com"),
			Mode:        mailMode,
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS",
				"http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000,http://127.0.0.1:5173")),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// IsDevelopment reports whether diagnostic detail may be included in responses.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

func splitCSV(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSessionSecretLen = 32

// DevSessionSecret is used only when APP_ENV=development and no secret is set.
// Validate rejects it in every other environment.
const DevSessionSecret = "dev-secret-change-me-dev-secret-change-me"

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
	Waitlist  WaitlistConfig
	Events    EventsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// ProxyHeader names the header carrying the client IP. It is honoured only
	// for requests arriving from TrustedProxies, and the proxy must overwrite
	// the header rather than append to it.
	ProxyHeader    string
	TrustedProxies []string
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
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AdminConfig describes the single static admin identity and its session cookie.
type AdminConfig struct {
	Username        string
	Password        string
	PasswordHash    string
	SessionSecret   string
	SessionTTLHours int
	CookieName      string
	CookieSecure    bool
}

// RateLimitConfig bounds failed admin login attempts per client.
type RateLimitConfig struct {
	LoginMaxAttempts   int
	LoginWindowMinutes int
}

// WaitlistConfig holds analytics and signup presentation settings.
type WaitlistConfig struct {
	Timezone           string
	DefaultTrailingDay int
	SuccessMessage     string
}

// EventsConfig configures optional external event forwarding.
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "waitlist-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 15),
			ProxyHeader:           os.Getenv("APP_PROXY_HEADER"),
			TrustedProxies:        getEnvAsList("APP_TRUSTED_PROXIES"),
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
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "waitlist"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Admin: AdminConfig{
			Username:        getEnv("ADMIN_USERNAME", "admin"),
			Password:        os.Getenv("ADMIN_PASSWORD"),
			PasswordHash:    os.Getenv("ADMIN_PASSWORD_HASH"),
			SessionSecret:   os.Getenv("ADMIN_SESSION_SECRET"),
			SessionTTLHours: getEnvAsInt("ADMIN_SESSION_TTL_HOURS", 24),
			CookieName:      getEnv("ADMIN_COOKIE_NAME", "waitlist_admin_session"),
			CookieSecure:    getEnvAsBool("ADMIN_COOKIE_SECURE", true),
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts:   getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
			LoginWindowMinutes: getEnvAsInt("LOGIN_WINDOW_MINUTES", 15),
		},
		Waitlist: WaitlistConfig{
			Timezone:           getEnv("WAITLIST_TIMEZONE", "UTC"),
			DefaultTrailingDay: getEnvAsInt("WAITLIST_TRAILING_DAYS", 30),
			SuccessMessage:     getEnv("WAITLIST_SUCCESS_MESSAGE", "You're on the list! We'll be in touch soon."),
		},
		Events: EventsConfig{
			NATSURL:       os.Getenv("NATS_URL"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "waitlist"),
		},
	}

	if cfg.Admin.SessionSecret == "" && cfg.App.IsDevelopment() {
		cfg.Admin.SessionSecret = DevSessionSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would leave the admin surface unusable or unsafe.
func (c *Config) Validate() error {
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
	if c.Admin.Username == "" {
		return errors.New("ADMIN_USERNAME must not be empty")
	}
	if c.Admin.SessionSecret == "" {
		return errors.New("ADMIN_SESSION_SECRET must be set")
	}
	if !c.App.IsDevelopment() {
		if len(c.Admin.SessionSecret) < minSessionSecretLen {
			return fmt.Errorf("ADMIN_SESSION_SECRET must be at least %d bytes", minSessionSecretLen)
		}
		if c.Admin.SessionSecret == DevSessionSecret {
			return errors.New("ADMIN_SESSION_SECRET must not use the development default")
		}
	}
	if c.App.ProxyHeader != "" && len(c.App.TrustedProxies) == 0 {
		return errors.New("APP_TRUSTED_PROXIES must be set when APP_PROXY_HEADER is used")
	}
	if c.RateLimit.LoginMaxAttempts <= 0 {
		return errors.New("LOGIN_MAX_ATTEMPTS must be positive")
	}
	if strings.EqualFold(c.Waitlist.Timezone, "Local") {
		return errors.New("WAITLIST_TIMEZONE must be an IANA zone name such as UTC or Europe/Berlin")
	}
	if _, err := time.LoadLocation(c.Waitlist.Timezone); err != nil {
		return fmt.Errorf("invalid WAITLIST_TIMEZONE: %w", err)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsDevelopment reports whether the service runs with development defaults.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns the admin session lifetime.
func (a AdminConfig) SessionTTL() time.Duration {
	if a.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// LoginWindow returns the trailing window for failed login attempts.
func (r RateLimitConfig) LoginWindow() time.Duration {
	if r.LoginWindowMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(r.LoginWindowMinutes) * time.Minute
}

// Location resolves the reference timezone used for calendar-day bucketing.
func (w WaitlistConfig) Location() *time.Location {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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

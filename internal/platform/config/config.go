// Package config loads process configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvProduction is the APP_ENV value that enables production-only checks.
const EnvProduction = "production"

// ErrMissingJWTSecret is returned by Validate when JWT_SECRET is empty in production.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set when APP_ENV=production")

// Config holds every setting the server and admin CLI read at startup.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"workzone"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	DB DB

	RunMigrations bool          `env:"RUN_MIGRATIONS" envDefault:"false"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	FrontendURLs []string `env:"FRONTEND_URL" envSeparator:","`

	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"10"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`
	JobCacheTTL      time.Duration `env:"JOB_CACHE_TTL" envDefault:"5m"`
}

// DB describes how to reach the identity and job store.
type DB struct {
	Driver       string `env:"DB_DRIVER" envDefault:"postgres"`
	User         string `env:"DB_USER"`
	Password     string `env:"DB_PASSWORD"`
	Name         string `env:"DB_NAME"`
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         string `env:"DB_PORT" envDefault:"5432"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	InstanceName string `env:"INSTANCE_CONNECTION_NAME"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"./workzone.db"`
}

// Load parses the environment into a Config. It does not validate it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.FrontendURLs = trimCSV(cfg.FrontendURLs)
	return cfg, nil
}

// IsProduction reports whether APP_ENV designates a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// Validate enforces the signing secret policy. In production an empty secret is fatal.
// Elsewhere a random per-process secret is generated and usedFallback is true,
// so tokens minted in development never validate against a guessable constant.
func (c *Config) Validate() (usedFallback bool, err error) {
	if c.JWTTTL <= 0 {
		return false, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.JWTSecret != "" {
		return false, nil
	}
	if c.IsProduction() {
		return false, ErrMissingJWTSecret
	}
	secret, err := randomSecret()
	if err != nil {
		return false, err
	}
	c.JWTSecret = secret
	return true, nil
}

// RedisAddr returns host:port, or "" when redis is not configured.
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate development secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

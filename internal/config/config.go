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

type Config struct {
	HTTPPort          string
	Env               string
	LogLevel          string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	ResetTokenTTL     time.Duration
	UploadDir         string
	UploadMaxFileSize int64
	UploadMaxFiles    int
	LoginMaxAttempts  int
	LoginWindow       time.Duration
	CORSOrigins       []string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxIdle     time.Duration
	DBConnMaxLife     time.Duration
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the environment, first merging a .env file when one exists.
// Variables already set in the process environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	p := &parser{}
	cfg := Config{
		HTTPPort:          envOr("HTTP_PORT", "8080"),
		Env:               strings.ToLower(envOr("APP_ENV", "development")),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		DatabaseURL:       envOr("DATABASE_URL", ""),
		RedisURL:          envOr("REDIS_URL", ""),
		JWTSecret:         envOr("JWT_SECRET", ""),
		AccessTokenTTL:    p.duration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:   p.duration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		ResetTokenTTL:     p.duration("RESET_TOKEN_TTL", time.Hour),
		UploadDir:         envOr("UPLOAD_DIR", "uploads"),
		UploadMaxFileSize: int64(p.integer("UPLOAD_MAX_FILE_SIZE", 5<<20)),
		UploadMaxFiles:    p.integer("UPLOAD_MAX_FILES", 3),
		LoginMaxAttempts:  p.integer("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:       p.duration("LOGIN_WINDOW", 15*time.Minute),
		CORSOrigins:       splitList(envOr("CORS_ORIGINS", "*")),
		DBMaxOpenConns:    p.integer("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    p.integer("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:     p.duration("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:     p.duration("DB_CONN_MAX_LIFE", 30*time.Minute),
		RequestTimeout:    p.duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:   p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		p.invalid = append(p.invalid, "JWT_SECRET is required")
	}
	if cfg.UploadMaxFileSize <= 0 {
		p.invalid = append(p.invalid, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if cfg.UploadMaxFiles <= 0 {
		p.invalid = append(p.invalid, "UPLOAD_MAX_FILES must be positive")
	}
	if cfg.LoginMaxAttempts <= 0 {
		p.invalid = append(p.invalid, "LOGIN_MAX_ATTEMPTS must be positive")
	}
	if len(p.invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(p.invalid, "; "))
	}
	return cfg, nil
}

// parser collects malformed values instead of silently using fallbacks.
type parser struct {
	invalid []string
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	value := envOr(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		p.invalid = append(p.invalid, key+" must be a positive duration")
		return fallback
	}
	return parsed
}

func (p *parser) integer(key string, fallback int) int {
	value := envOr(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		p.invalid = append(p.invalid, key+" must be an integer")
		return fallback
	}
	return parsed
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

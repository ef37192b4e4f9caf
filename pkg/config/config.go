package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "secret"

type Config struct {
	Port        string        `toml:"port"`
	DatabaseURL string        `toml:"database_url"`
	AppEnv      string        `toml:"app_env"`
	JWTSecret   string        `toml:"jwt_secret"`
	TokenTTL    time.Duration `toml:"token_ttl"`
	BcryptCost  int           `toml:"bcrypt_cost"`
	FrontendURL string        `toml:"frontend_url"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // "text" or "json"

	// Login and register attempts allowed per client IP per window
	AuthRateLimit  int           `toml:"auth_rate_limit"`
	AuthRateWindow time.Duration `toml:"auth_rate_window"`

	GoogleClientID     string   `toml:"google_client_id"`
	GoogleClientSecret string   `toml:"google_client_secret"`
	GoogleRedirectURL  string   `toml:"google_redirect_url"`
	AllowedEmails      []string `toml:"allowed_emails"`
}

func defaults() *Config {
	return &Config{
		Port:              "8080",
		DatabaseURL:       "file:favlinks.sqlite",
		AppEnv:            "local",
		JWTSecret:         defaultJWTSecret,
		TokenTTL:          24 * time.Hour,
		BcryptCost:        10,
		FrontendURL:       "http://localhost:5173",
		LogLevel:          "info",
		LogFormat:         "text",
		AuthRateLimit:     20,
		AuthRateWindow:    time.Minute,
		GoogleRedirectURL: "http://localhost:8080/auth/google/callback",
	}
}

// Load builds the configuration from, in increasing precedence: built-in
// defaults, the TOML file named by FAVLINKS_CONFIG, a .env file, and the
// process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := defaults()
	if path := os.Getenv("FAVLINKS_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", cfg.GoogleClientID)
	cfg.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret)
	cfg.GoogleRedirectURL = getEnv("GOOGLE_REDIRECT_URL", cfg.GoogleRedirectURL)
	if v, ok := os.LookupEnv("ALLOWED_EMAILS"); ok {
		cfg.AllowedEmails = splitList(v)
	}

	var err error
	if cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return nil, err
	}
	if cfg.AuthRateWindow, err = getEnvDuration("AUTH_RATE_WINDOW", cfg.AuthRateWindow); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", cfg.BcryptCost); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimit, err = getEnvInt("AUTH_RATE_LIMIT", cfg.AuthRateLimit); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

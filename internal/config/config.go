package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"rift-rewind/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// in-memory, shared across the pool; dropped when the process exits
const DefaultDBPath = "file:rewind?mode=memory&cache=shared"

type Config struct {
	SummaryURL     string
	StrengthsURL   string
	ComparisonURL  string
	UpstreamAPIKey string
	DBPath         string
	ServerPort     string
	LogLevel       string
	CacheTTL       time.Duration
	DDragonVersion string
	AllowedOrigins []string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", constants.PayloadCacheTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg := &Config{
		SummaryURL:     getEnv("SUMMARY_URL", ""),
		StrengthsURL:   getEnv("STRENGTHS_URL", ""),
		ComparisonURL:  getEnv("COMPARISON_URL", ""),
		UpstreamAPIKey: getEnv("UPSTREAM_API_KEY", ""),
		DBPath:         getEnv("DB_PATH", DefaultDBPath),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CacheTTL:       cacheTTL,
		DDragonVersion: getEnv("DDRAGON_VERSION", constants.DefaultDDragonVer),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("summary_url", cfg.SummaryURL).
		Str("strengths_url", cfg.StrengthsURL).
		Str("comparison_url", cfg.ComparisonURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"SUMMARY_URL", c.SummaryURL},
		{"STRENGTHS_URL", c.StrengthsURL},
		{"COMPARISON_URL", c.ComparisonURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var Module = fx.Provide(Load)

// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"os"
	"strings"
)

type HTTPConfig struct {
	Addr string
}

// OMDbConfig configures the optional movie-metadata lookup.
// An empty APIKey disables enrichment entirely.
type OMDbConfig struct {
	BaseURL string
	APIKey  string
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	Env         string
	DatabaseURL string
	JWTSecret   string
	HTTP        HTTPConfig
	OMDb        OMDbConfig
}

// IsProduction reports whether the service runs with production guarantees
// (persistent storage required, no in-memory fallbacks).
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: strings.TrimSpace(os.Getenv("SERVICE_NAME")),
		LogLevel:    strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Env:         strings.TrimSpace(os.Getenv("APP_ENV")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		HTTP: HTTPConfig{
			Addr: strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		},
		OMDb: OMDbConfig{
			BaseURL: strings.TrimSpace(os.Getenv("OMDB_BASE_URL")),
			APIKey:  strings.TrimSpace(os.Getenv("OMDB_API_KEY")),
		},
	}
	if cfg.ServiceName == "" {
		return AppConfig{}, errors.New("SERVICE_NAME is required")
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package config defines the Gilro service configuration and its layered
// loader. Configuration is assembled from three sources in increasing
// precedence: built-in defaults, an optional YAML config file, and
// environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Gilro service.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Kakao      KakaoConfig      `koanf:"kakao"`
	VisitBusan VisitBusanConfig `koanf:"visitbusan"`
	Gemini     GeminiConfig     `koanf:"gemini"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	API        APIConfig        `koanf:"api"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds PostgreSQL connection settings for the POI store.
// When Enabled is false the service runs against the in-memory POI
// repository, which is the mode used by tests and local development.
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// KakaoConfig holds Kakao Mobility navigation API settings.
type KakaoConfig struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// Concurrency bounds the number of in-flight directions requests
	// during candidate cost enrichment.
	Concurrency int `koanf:"concurrency"`

	// Breaker settings for the circuit breaker wrapping the Kakao client.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`

	// CacheTTL controls how long resolved leg costs are reused before
	// the upstream is consulted again.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// Client-side rate limit for outbound requests, protecting the
	// per-key quota. Zero RPS disables the limiter.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// VisitBusanConfig holds the Visit Busan guide lookup settings. When
// disabled, guide text falls back to the built-in defaults.
type VisitBusanConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// GeminiConfig holds Gemini narration settings. Narration is optional;
// when disabled the multi-route endpoint returns normalized routes only.
type GeminiConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// RecommendConfig holds scoring parameters for the recommendation engine.
type RecommendConfig struct {
	// TouristWeight and CitizenWeight scale similarity into the final
	// score depending on the requested user type.
	TouristWeight float64 `koanf:"tourist_weight"`
	CitizenWeight float64 `koanf:"citizen_weight"`

	// MaxCandidates caps how many POI candidates one request may carry.
	MaxCandidates int `koanf:"max_candidates"`
}

// APIConfig holds API surface settings.
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would prevent the
// service from operating. Called by LoadWithKoanf after all layers merge.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database.enabled is true")
	}
	if c.Kakao.Timeout <= 0 {
		return fmt.Errorf("kakao.timeout must be positive, got %s", c.Kakao.Timeout)
	}
	if c.Kakao.Concurrency < 1 {
		return fmt.Errorf("kakao.concurrency must be at least 1, got %d", c.Kakao.Concurrency)
	}
	if c.VisitBusan.Enabled && c.VisitBusan.BaseURL == "" {
		return fmt.Errorf("visitbusan.base_url is required when visitbusan.enabled is true")
	}
	if c.Gemini.Enabled && c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required when gemini.enabled is true")
	}
	if c.Recommend.TouristWeight <= 0 || c.Recommend.CitizenWeight <= 0 {
		return fmt.Errorf("recommend weights must be positive, got tourist=%g citizen=%g",
			c.Recommend.TouristWeight, c.Recommend.CitizenWeight)
	}
	if c.Recommend.MaxCandidates < 1 {
		return fmt.Errorf("recommend.max_candidates must be at least 1, got %d", c.Recommend.MaxCandidates)
	}
	return nil
}

// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gilro/config.yaml",
	"/etc/gilro/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Enabled:         false,
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Kakao: KakaoConfig{
			BaseURL:            "https://apis-navi.kakaomobility.com",
			APIKey:             "",
			Timeout:            10 * time.Second,
			Concurrency:        4,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: 30 * time.Second,
			CacheTTL:           5 * time.Minute,
			RateLimitRPS:       10,
			RateLimitBurst:     10,
		},
		VisitBusan: VisitBusanConfig{
			Enabled: false,
			BaseURL: "",
			Timeout: 5 * time.Second,
		},
		Gemini: GeminiConfig{
			Enabled: false,
			BaseURL: "https://generativelanguage.googleapis.com",
			APIKey:  "",
			Model:   "gemini-1.5-pro",
			Timeout: 30 * time.Second,
		},
		Recommend: RecommendConfig{
			TouristWeight: 1.0,
			CitizenWeight: 1.2,
			MaxCandidates: 100,
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: highest priority
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// KAKAO_API_KEY -> kakao.api_key etc. Unmapped env vars are skipped.
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, checking ConfigPathEnvVar
// first and then the default paths. Returns "" when none is found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when supplied through environment variables.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields. Env vars arrive as strings, but the config
// struct expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped keys return "" and are skipped, which keeps unrelated
// environment variables from polluting the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Database mappings
		"database_enabled":           "database.enabled",
		"database_dsn":               "database.dsn",
		"database_max_open_conns":    "database.max_open_conns",
		"database_max_idle_conns":    "database.max_idle_conns",
		"database_conn_max_lifetime": "database.conn_max_lifetime",

		// Kakao mappings
		"kakao_base_url":             "kakao.base_url",
		"kakao_api_key":              "kakao.api_key",
		"kakao_timeout":              "kakao.timeout",
		"kakao_concurrency":          "kakao.concurrency",
		"kakao_breaker_max_failures": "kakao.breaker_max_failures",
		"kakao_breaker_open_timeout": "kakao.breaker_open_timeout",
		"kakao_cache_ttl":            "kakao.cache_ttl",
		"kakao_rate_limit_rps":       "kakao.rate_limit_rps",
		"kakao_rate_limit_burst":     "kakao.rate_limit_burst",

		// Gemini mappings
		"visitbusan_enabled":  "visitbusan.enabled",
		"visitbusan_base_url": "visitbusan.base_url",
		"visitbusan_timeout":  "visitbusan.timeout",

		"gemini_enabled":  "gemini.enabled",
		"gemini_base_url": "gemini.base_url",
		"gemini_api_key":  "gemini.api_key",
		"gemini_model":    "gemini.model",
		"gemini_timeout":  "gemini.timeout",

		// Recommendation mappings
		"recommend_tourist_weight": "recommend.tourist_weight",
		"recommend_citizen_weight": "recommend.citizen_weight",
		"recommend_max_candidates": "recommend.max_candidates",

		// API mappings
		"rate_limit_requests": "api.rate_limit_reqs",
		"rate_limit_window":   "api.rate_limit_window",
		"cors_origins":        "api.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

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
// order of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/curatarr/config.yaml",
	"/etc/curatarr/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Tautulli: TautulliConfig{
			URL:     "",
			APIKey:  "",
			Timeout: 30 * time.Second,
		},
		Overseerr: OverseerrConfig{
			URL:     "",
			APIKey:  "",
			Timeout: 30 * time.Second,
		},
		TMDB: TMDBConfig{
			URL:          "https://api.themoviedb.org/3",
			APIToken:     "",
			ImageBaseURL: "https://image.tmdb.org/t/p/w600_and_h900_face",
			Timeout:      30 * time.Second,
		},
		SMTP: SMTPConfig{
			Host:     "",
			Port:     587,
			Username: "",
			Password: "",
			From:     "",
		},
		Database: DatabaseConfig{
			Path:      "/data/curatarr.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Sync: SyncConfig{
			ScheduleEnabled: false, // Manual trigger only by default
			Interval:        6 * time.Hour,
			PageSize:        500,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            4242,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   300,
			CORSOrigins:     []string{"*"},
		},
		Cache: CacheConfig{
			Path:           "/data/httpcache",
			RequestTimeout: 30 * time.Second,
		},
		Posters: PosterConfig{
			Dir: "/data/posters",
		},
		Jobs: JobsConfig{
			Retention: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: override any setting (highest priority)
//
// Environment variable names map to koanf paths by section prefix:
// TAUTULLI_API_KEY -> tautulli.api_key, SERVER_PORT -> server.port.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
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

// configSections are the known top-level sections an environment variable
// may target. The first matching prefix wins.
var configSections = []string{
	"tautulli",
	"overseerr",
	"tmdb",
	"smtp",
	"database",
	"sync",
	"server",
	"cache",
	"posters",
	"jobs",
	"logging",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - TAUTULLI_URL -> tautulli.url
//   - TAUTULLI_API_KEY -> tautulli.api_key
//   - SERVER_RATE_LIMIT_REQS -> server.rate_limit_reqs
//   - SYNC_SCHEDULE_ENABLED -> sync.schedule_enabled
//
// Variables that do not start with a known section prefix are ignored, so
// unrelated environment variables cannot pollute the configuration.
func envTransformFunc(key string) string {
	lower := strings.ToLower(key)
	for _, section := range configSections {
		prefix := section + "_"
		if strings.HasPrefix(lower, prefix) {
			return section + "." + strings.TrimPrefix(lower, prefix)
		}
	}
	return "" // Not a config variable - skip
}

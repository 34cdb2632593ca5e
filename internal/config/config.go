// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and environment variables (highest priority).
//
// Provider sections (Tautulli, Overseerr, TMDB) are deliberately NOT
// required: a provider with a missing URL or API key is treated as
// unconfigured and its sync steps skip gracefully rather than fail.
//
// Thread Safety: Config is immutable after Load() and safe for concurrent
// read access from multiple goroutines.
type Config struct {
	Tautulli  TautulliConfig  `koanf:"tautulli"`
	Overseerr OverseerrConfig `koanf:"overseerr"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	SMTP      SMTPConfig      `koanf:"smtp"`
	Database  DatabaseConfig  `koanf:"database"`
	Sync      SyncConfig      `koanf:"sync"`
	Server    ServerConfig    `koanf:"server"`
	Cache     CacheConfig     `koanf:"cache"`
	Posters   PosterConfig    `koanf:"posters"`
	Jobs      JobsConfig      `koanf:"jobs"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// TautulliConfig holds watch-history provider connection settings.
//
// Environment Variables:
//   - TAUTULLI_URL: Tautulli server URL (e.g., http://localhost:8181)
//   - TAUTULLI_API_KEY: API key from Settings > Web Interface
type TautulliConfig struct {
	URL     string        `koanf:"url" validate:"omitempty,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Configured reports whether the provider has both a URL and an API key.
func (c *TautulliConfig) Configured() bool {
	return c.URL != "" && c.APIKey != ""
}

// OverseerrConfig holds request-management provider connection settings.
//
// Environment Variables:
//   - OVERSEERR_URL: Overseerr server URL (e.g., http://localhost:5055)
//   - OVERSEERR_API_KEY: API key from Settings > General
type OverseerrConfig struct {
	URL     string        `koanf:"url" validate:"omitempty,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Configured reports whether the provider has both a URL and an API key.
func (c *OverseerrConfig) Configured() bool {
	return c.URL != "" && c.APIKey != ""
}

// TMDBConfig holds metadata/catalog provider settings.
// The image base URL is used by the poster cache fallback path.
type TMDBConfig struct {
	URL          string        `koanf:"url" validate:"omitempty,url"`
	APIToken     string        `koanf:"api_token"`
	ImageBaseURL string        `koanf:"image_base_url" validate:"omitempty,url"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Configured reports whether the provider has both a URL and an API token.
func (c *TMDBConfig) Configured() bool {
	return c.URL != "" && c.APIToken != ""
}

// SMTPConfig holds outbound email settings for the admin mail flow.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from" validate:"omitempty,email"`
}

// Configured reports whether SMTP sending is usable.
func (c *SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port != 0 && c.From != ""
}

// Addr returns the host:port dial address.
func (c *SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"`
}

// SyncConfig controls the sync orchestrator.
//
// ScheduleEnabled turns on the periodic background sync loop; syncs can
// always be triggered manually through the API regardless of this setting.
type SyncConfig struct {
	ScheduleEnabled bool          `koanf:"schedule_enabled"`
	Interval        time.Duration `koanf:"interval" validate:"gt=0"`
	PageSize        int           `koanf:"page_size" validate:"gt=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// CacheConfig holds the read-through HTTP response cache settings.
type CacheConfig struct {
	Path           string        `koanf:"path" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

// PosterConfig holds the on-disk poster cache settings.
type PosterConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// JobsConfig holds the background job registry settings.
//
// Retention bounds how long finished jobs remain queryable; the registry
// evicts them afterwards so the in-memory map cannot grow without bound.
type JobsConfig struct {
	Retention time.Duration `koanf:"retention" validate:"gt=0"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Validate checks field constraints on the loaded configuration.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

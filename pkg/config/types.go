/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

const (
	defaultListenAddr      = ":8080"
	defaultRoot            = "."
	defaultBasePath        = "/"
	defaultIndexFile       = "index.html"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultAPIPrefix       = "/_api"
	defaultAuthRealm       = "zserve"
	defaultMetricsSize     = 1000
	defaultRetention       = 7 * 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// CORSConfig controls cross-origin headers.
type CORSConfig struct {
	Enabled        bool     `json:"enabled"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"` // empty means "*"
}

// TLSConfig enables HTTPS when both files are set.
type TLSConfig struct {
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
}

// Enabled reports whether TLS is configured.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// AuthConfig enables HTTP basic auth. Users maps a user name to a bcrypt hash.
type AuthConfig struct {
	Realm string            `json:"realm,omitempty"`
	Users map[string]string `json:"users,omitempty"`
}

// RateLimitConfig limits requests per client IP. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

// AccessLogConfig persists access records to SQLite when DBPath is set.
type AccessLogConfig struct {
	DBPath          string   `json:"db_path"`
	Retention       Duration `json:"retention"`
	CleanupInterval Duration `json:"cleanup_interval"`
}

// MetricsConfig controls the in-memory request metrics.
type MetricsConfig struct {
	Enabled   *bool `json:"enabled,omitempty"`
	Retention int   `json:"retention"` // points kept per route class
}

// APIConfig controls the JSON admin API.
type APIConfig struct {
	Enabled  bool   `json:"enabled"`
	Prefix   string `json:"prefix"`
	DocsRoot string `json:"docs_root,omitempty"` // documentation tree checked by /site/check
	SiteFile string `json:"site_file,omitempty"` // site navigation config; built-in when empty
}

// ServerConfig represents the configuration for the file server.
type ServerConfig struct {
	ListenAddr       string            `json:"listen_addr"`
	Root             string            `json:"root"`
	BasePath         string            `json:"base_path"`
	IndexFile        string            `json:"index_file"`
	DirectoryListing *bool             `json:"directory_listing,omitempty"`
	ShowHidden       bool              `json:"show_hidden"`
	SPAFallback      string            `json:"spa_fallback,omitempty"`   // served for extensionless misses
	NotFoundPage     string            `json:"not_found_page,omitempty"` // served with 404 status
	CacheMaxAge      Duration          `json:"cache_max_age"`
	Precompressed    *bool             `json:"precompressed,omitempty"`
	MimeTypes        map[string]string `json:"mime_types,omitempty"` // extension -> content type overrides
	CORS             CORSConfig        `json:"cors"`
	TLS              TLSConfig         `json:"tls"`
	Auth             AuthConfig        `json:"auth"`
	RateLimit        RateLimitConfig   `json:"rate_limit"`
	MaxConnections   int               `json:"max_connections"`
	ReadTimeout      Duration          `json:"read_timeout"`
	WriteTimeout     Duration          `json:"write_timeout"`
	IdleTimeout      Duration          `json:"idle_timeout"`
	ShutdownTimeout  Duration          `json:"shutdown_timeout"`
	AccessLog        AccessLogConfig   `json:"access_log"`
	Metrics          MetricsConfig     `json:"metrics"`
	API              APIConfig         `json:"api"`
	PprofAddr        string            `json:"pprof_addr,omitempty"`
}

// ApplyDefaults fills every unset field with its default value.
func (c *ServerConfig) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.Root == "" {
		c.Root = defaultRoot
	}

	if c.BasePath == "" {
		c.BasePath = defaultBasePath
	}

	if c.IndexFile == "" {
		c.IndexFile = defaultIndexFile
	}

	if c.DirectoryListing == nil {
		c.DirectoryListing = boolPtr(true)
	}

	if c.Precompressed == nil {
		c.Precompressed = boolPtr(true)
	}

	if c.ReadTimeout == 0 {
		c.ReadTimeout = Duration(defaultReadTimeout)
	}

	if c.WriteTimeout == 0 {
		c.WriteTimeout = Duration(defaultWriteTimeout)
	}

	if c.IdleTimeout == 0 {
		c.IdleTimeout = Duration(defaultIdleTimeout)
	}

	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = Duration(defaultShutdownTimeout)
	}

	if c.API.Prefix == "" {
		c.API.Prefix = defaultAPIPrefix
	}

	if c.Auth.Realm == "" {
		c.Auth.Realm = defaultAuthRealm
	}

	if c.Metrics.Enabled == nil {
		c.Metrics.Enabled = boolPtr(true)
	}

	if c.Metrics.Retention == 0 {
		c.Metrics.Retention = defaultMetricsSize
	}

	if c.AccessLog.Retention == 0 {
		c.AccessLog.Retention = Duration(defaultRetention)
	}

	if c.AccessLog.CleanupInterval == 0 {
		c.AccessLog.CleanupInterval = Duration(defaultCleanupInterval)
	}

	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = int(c.RateLimit.RequestsPerSecond) + 1
	}
}

// Validate implements Validator.
func (c *ServerConfig) Validate() error {
	info, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("root %q: %w", c.Root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDirectory, c.Root)
	}

	if !strings.HasPrefix(c.BasePath, "/") || !strings.HasSuffix(c.BasePath, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidBasePath, c.BasePath)
	}

	if strings.ContainsAny(c.IndexFile, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidIndexFile, c.IndexFile)
	}

	if c.API.Enabled && (!strings.HasPrefix(c.API.Prefix, "/") ||
		strings.TrimSuffix(c.API.Prefix, "/") == strings.TrimSuffix(c.BasePath, "/")) {
		return fmt.Errorf("%w: %q", ErrInvalidAPIPrefix, c.API.Prefix)
	}

	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return ErrIncompleteTLS
	}

	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst < 1 {
		return ErrInvalidRateLimit
	}

	if c.MaxConnections < 0 {
		return ErrNegativeConnection
	}

	for user, hash := range c.Auth.Users {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return fmt.Errorf("%w: user %q", ErrInvalidAuthHash, user)
		}
	}

	return nil
}

// ListingEnabled reports whether directory listings are served.
func (c *ServerConfig) ListingEnabled() bool {
	return c.DirectoryListing == nil || *c.DirectoryListing
}

// PrecompressedEnabled reports whether .br/.gz siblings are served.
func (c *ServerConfig) PrecompressedEnabled() bool {
	return c.Precompressed == nil || *c.Precompressed
}

// MetricsEnabled reports whether request metrics are collected.
func (c *ServerConfig) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

func boolPtr(b bool) *bool {
	return &b
}

/*
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

// Package core assembles the file server from its parts.
package core

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mfreeman451/zserve/pkg/api"
	"github.com/mfreeman451/zserve/pkg/config"
	"github.com/mfreeman451/zserve/pkg/db"
	"github.com/mfreeman451/zserve/pkg/docsite"
	"github.com/mfreeman451/zserve/pkg/fileserver"
	httpx "github.com/mfreeman451/zserve/pkg/http"
	"github.com/mfreeman451/zserve/pkg/metrics"
	"github.com/mfreeman451/zserve/pkg/mimetypes"
	"github.com/mfreeman451/zserve/pkg/models"
	"github.com/mfreeman451/zserve/pkg/resolve"
)

// Server is the assembled file server. It implements lifecycle.Service.
type Server struct {
	config    *config.ServerConfig
	handler   http.Handler
	files     *fileserver.Handler
	metrics   *metrics.Manager
	hub       *api.Hub
	apiServer *api.APIServer
	store     db.Service
	writer    *db.AsyncWriter
	cleanup   *db.CleanupService
	apiPrefix string
}

// NewServer builds every component described by cfg. cfg must already have
// defaults applied and be validated.
func NewServer(cfg *config.ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	resolver, err := resolve.New(cfg.Root, resolve.Options{ShowHidden: cfg.ShowHidden})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errResolverInit, err)
	}

	s := &Server{
		config: cfg,
		files: fileserver.NewHandler(resolver, mimetypes.NewMapper(cfg.MimeTypes), fileserver.Options{
			BasePath:         cfg.BasePath,
			IndexFile:        cfg.IndexFile,
			DirectoryListing: cfg.ListingEnabled(),
			ShowHidden:       cfg.ShowHidden,
			SPAFallback:      cfg.SPAFallback,
			NotFoundPage:     cfg.NotFoundPage,
			CacheMaxAge:      cfg.CacheMaxAge.Std(),
			Precompressed:    cfg.PrecompressedEnabled(),
		}),
		metrics: metrics.NewManager(metrics.Config{
			Enabled:   cfg.MetricsEnabled(),
			Retention: cfg.Metrics.Retention,
		}),
		hub: api.NewHub(0),
	}

	if cfg.AccessLog.DBPath != "" {
		if err := s.openStore(cfg.AccessLog); err != nil {
			return nil, err
		}
	}

	if cfg.API.Enabled {
		if err := s.setupAPI(cfg.API); err != nil {
			_ = s.closeStore()
			return nil, err
		}
	}

	s.handler = s.buildHandler()

	return s, nil
}

func (s *Server) openStore(cfg config.AccessLogConfig) error {
	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errStoreInit, err)
	}

	s.store = database
	s.writer = db.NewAsyncWriter(database, db.WriterConfig{})
	s.cleanup = db.NewCleanupService(database, db.CleanupConfig{
		Interval:  cfg.CleanupInterval.Std(),
		Retention: cfg.Retention.Std(),
	})

	return nil
}

func (s *Server) setupAPI(cfg config.APIConfig) error {
	site := docsite.Default()

	if cfg.SiteFile != "" {
		loaded, err := docsite.Load(cfg.SiteFile)
		if err != nil {
			return fmt.Errorf("%w: %w", errSiteLoad, err)
		}

		site = loaded
	}

	opts := []api.Option{
		api.WithMetrics(s.metrics),
		api.WithEvents(s.hub),
		api.WithSite(site, cfg.DocsRoot),
	}

	if s.config.ListingEnabled() {
		opts = append(opts, api.WithFiles(s.files))
	}

	if s.store != nil {
		opts = append(opts, api.WithStore(s.store))
	}

	s.apiServer = api.NewAPIServer(cfg.Prefix, opts...)
	s.apiPrefix = s.apiServer.Prefix()

	return nil
}

func (s *Server) buildHandler() http.Handler {
	router := mux.NewRouter().SkipClean(true)

	if s.apiServer != nil {
		router.PathPrefix(s.apiPrefix + "/").Handler(s.apiServer)
	}

	router.PathPrefix("/").Handler(s.files)

	cfg := s.config

	mws := []httpx.Middleware{
		httpx.RequestID,
		httpx.AccessLog(s),
		httpx.SecurityHeaders(cfg.TLS.Enabled()),
	}

	switch {
	case cfg.CORS.Enabled && len(cfg.CORS.AllowedOrigins) == 0:
		mws = append(mws, httpx.CommonMiddleware)
	case cfg.CORS.Enabled:
		mws = append(mws, httpx.CORS(cfg.CORS.AllowedOrigins))
	}

	if cfg.RateLimit.RequestsPerSecond > 0 {
		mws = append(mws, httpx.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware)
	}

	if len(cfg.Auth.Users) > 0 {
		mws = append(mws, httpx.BasicAuth(cfg.Auth.Realm, cfg.Auth.Users))
	}

	return httpx.Chain(router, mws...)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the request metrics collector.
func (s *Server) Metrics() metrics.Collector {
	return s.metrics
}

// Record implements httpx.AccessSink.
func (s *Server) Record(rec *models.AccessRecord) {
	rec.Class = s.classify(rec.Path, rec.Status)

	s.metrics.Record(rec.Class, models.RequestPoint{
		Timestamp: rec.Timestamp,
		Duration:  rec.Duration,
		Status:    rec.Status,
		Bytes:     rec.Bytes,
	})

	s.hub.Publish(rec)

	if s.writer != nil {
		s.writer.Record(rec)
	}
}

func (s *Server) classify(path string, status int) string {
	switch {
	case s.apiPrefix != "" && (path == s.apiPrefix || strings.HasPrefix(path, s.apiPrefix+"/")):
		return models.ClassAPI
	case status >= http.StatusBadRequest:
		return models.ClassError
	case strings.HasSuffix(path, "/"):
		return models.ClassListing
	default:
		return models.ClassFile
	}
}

// Start implements lifecycle.Service.
func (s *Server) Start(context.Context) error {
	log.Printf("Serving %s at %s (listing=%t, api=%t, access log=%t)",
		s.config.Root, s.config.BasePath, s.config.ListingEnabled(), s.apiServer != nil, s.store != nil)

	if s.writer != nil {
		s.writer.Start()
	}

	if s.cleanup != nil {
		s.cleanup.Start()
	}

	return nil
}

// Stop implements lifecycle.Service.
func (s *Server) Stop(context.Context) error {
	s.hub.Close()

	if s.cleanup != nil {
		s.cleanup.Stop()
	}

	if s.writer != nil {
		s.writer.Stop()

		if dropped := s.writer.Dropped(); dropped > 0 {
			log.Printf("Access log dropped %d records", dropped)
		}
	}

	return s.closeStore()
}

func (s *Server) closeStore() error {
	if s.store == nil {
		return nil
	}

	if err := s.store.Close(); err != nil {
		return fmt.Errorf("failed to close access log store: %w", err)
	}

	s.store = nil

	return nil
}

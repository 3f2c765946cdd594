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

// Package api serves the JSON admin API.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mfreeman451/zserve/pkg/db"
	"github.com/mfreeman451/zserve/pkg/docsite"
	"github.com/mfreeman451/zserve/pkg/fileserver"
	"github.com/mfreeman451/zserve/pkg/metrics"
	"github.com/mfreeman451/zserve/pkg/models"
	"github.com/mfreeman451/zserve/pkg/resolve"
)

const (
	defaultRequestLimit = 100
	defaultTopLimit     = 10
	defaultTopWindow    = 24 * time.Hour
)

type APIServer struct {
	router   *mux.Router
	prefix   string
	started  time.Time
	metrics  metrics.Collector
	files    FileLister
	store    db.Service
	events   EventSource
	site     *docsite.Site
	docsRoot string
}

// Option configures an APIServer.
type Option func(*APIServer)

func WithMetrics(m metrics.Collector) Option {
	return func(s *APIServer) { s.metrics = m }
}

func WithFiles(f FileLister) Option {
	return func(s *APIServer) { s.files = f }
}

// WithStore enables the /requests endpoints.
func WithStore(store db.Service) Option {
	return func(s *APIServer) { s.store = store }
}

func WithEvents(e EventSource) Option {
	return func(s *APIServer) { s.events = e }
}

// WithSite serves site as the documentation navigation and checks it against
// docsRoot. An empty docsRoot skips page existence checks.
func WithSite(site *docsite.Site, docsRoot string) Option {
	return func(s *APIServer) {
		s.site = site
		s.docsRoot = docsRoot
	}
}

// NewAPIServer creates the API mounted under prefix.
func NewAPIServer(prefix string, opts ...Option) *APIServer {
	s := &APIServer{
		router:  mux.NewRouter(),
		prefix:  strings.TrimSuffix(prefix, "/"),
		started: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s
}

// Prefix returns the path the API is mounted under, without a trailing slash.
func (s *APIServer) Prefix() string {
	return s.prefix
}

func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *APIServer) setupRoutes() {
	// Registered on the top-level router; a subrouter turns method mismatches into 404s.
	routes := []struct {
		path    string
		handler http.HandlerFunc
		methods []string
	}{
		{"/health", s.getHealth, []string{http.MethodGet, http.MethodHead}},
		{"/stats", s.getStats, []string{http.MethodGet}},
		{"/files", s.getFiles, []string{http.MethodGet}},
		{"/requests", s.getRequests, []string{http.MethodGet}},
		{"/requests/top", s.getTopPaths, []string{http.MethodGet}},
		{"/site", s.getSite, []string{http.MethodGet}},
		{"/site/check", s.getSiteCheck, []string{http.MethodGet}},
		{"/events", s.streamEvents, []string{http.MethodGet}},
	}

	for _, route := range routes {
		s.router.HandleFunc(s.prefix+route.path, route.handler).Methods(route.methods...)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

func (s *APIServer) uptime() string {
	return time.Since(s.started).Round(time.Second).String()
}

func (s *APIServer) getHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Uptime: s.uptime()})
}

func (s *APIServer) getStats(w http.ResponseWriter, _ *http.Request) {
	resp := StatsResponse{
		Started: s.started,
		Uptime:  s.uptime(),
	}

	if s.metrics != nil {
		resp.Classes = s.metrics.Snapshot()
	}

	if resp.Classes == nil {
		resp.Classes = []models.ClassStats{}
	}

	if s.events != nil {
		resp.EventClients = s.events.Clients()
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *APIServer) getFiles(w http.ResponseWriter, r *http.Request) {
	if s.files == nil {
		respondError(w, http.StatusForbidden, errListingDisabled.Error())
		return
	}

	p := r.URL.Query().Get("path")
	if p == "" {
		p = "/"
	}

	listing, err := s.files.List(p)
	if err != nil {
		respondError(w, filesErrorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, listing)
}

func filesErrorStatus(err error) int {
	switch {
	case errors.Is(err, resolve.ErrNotFound), errors.Is(err, resolve.ErrHidden):
		return http.StatusNotFound
	case errors.Is(err, resolve.ErrOutsideRoot), errors.Is(err, fileserver.ErrListingDisabled):
		return http.StatusForbidden
	case errors.Is(err, resolve.ErrInvalidPath), errors.Is(err, fileserver.ErrNotDirectory):
		return http.StatusBadRequest
	default:
		log.Printf("Error listing files: %v", err)
		return http.StatusInternalServerError
	}
}

func (s *APIServer) getRequests(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, errAccessLogDisabled.Error())
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultRequestLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var records []models.AccessRecord

	if p := r.URL.Query().Get("path"); p != "" {
		records, err = s.store.AccessByPath(r.Context(), p, limit)
	} else {
		records, err = s.store.RecentAccess(r.Context(), limit)
	}

	if err != nil {
		log.Printf("Error querying access log: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to query access log")

		return
	}

	if records == nil {
		records = []models.AccessRecord{}
	}

	respondJSON(w, http.StatusOK, records)
}

func (s *APIServer) getTopPaths(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, errAccessLogDisabled.Error())
		return
	}

	q := r.URL.Query()

	limit, err := parseLimit(q.Get("limit"), defaultTopLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	since, err := parseSince(q.Get("since"), time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := s.store.TopPaths(r.Context(), since, limit)
	if err != nil {
		log.Printf("Error querying top paths: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to query access log")

		return
	}

	if counts == nil {
		counts = []models.PathCount{}
	}

	respondJSON(w, http.StatusOK, counts)
}

func (s *APIServer) getSite(w http.ResponseWriter, _ *http.Request) {
	if s.site == nil {
		respondError(w, http.StatusNotFound, errNoSite.Error())
		return
	}

	respondJSON(w, http.StatusOK, SiteResponse{Site: s.site, Links: s.site.OrderedLinks()})
}

func (s *APIServer) getSiteCheck(w http.ResponseWriter, _ *http.Request) {
	if s.site == nil {
		respondError(w, http.StatusNotFound, errNoSite.Error())
		return
	}

	respondJSON(w, http.StatusOK, docsite.Check(s.site, s.docsRoot))
}

func parseLimit(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errInvalidLimit
	}

	return n, nil
}

// parseSince accepts a look-back duration or an absolute RFC 3339 time.
func parseSince(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.Add(-defaultTopWindow), nil
	}

	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return now.Add(-d), nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Time{}, errInvalidSince
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Error: message})
}

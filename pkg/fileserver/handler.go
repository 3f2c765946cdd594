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

// Package fileserver writes files, directory listings and errors to HTTP
// clients.
package fileserver

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/mfreeman451/zserve/pkg/mimetypes"
	"github.com/mfreeman451/zserve/pkg/resolve"
)

// Options configures a Handler.
type Options struct {
	BasePath         string
	IndexFile        string
	DirectoryListing bool
	ShowHidden       bool
	SPAFallback      string
	NotFoundPage     string
	CacheMaxAge      time.Duration
	Precompressed    bool
}

// Handler serves files below a Resolver's root.
type Handler struct {
	resolver Resolver
	mapper   *mimetypes.Mapper
	opts     Options
}

// NewHandler creates a Handler. An empty BasePath means "/".
func NewHandler(resolver Resolver, mapper *mimetypes.Mapper, opts Options) *Handler {
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}

	if opts.IndexFile == "" {
		opts.IndexFile = "index.html"
	}

	return &Handler{
		resolver: resolver,
		mapper:   mapper,
		opts:     opts,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	reqPath := r.URL.Path

	if h.opts.BasePath != "/" && reqPath == strings.TrimSuffix(h.opts.BasePath, "/") {
		redirect(w, r, h.opts.BasePath)
		return
	}

	rel, err := h.relative(reqPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	target, err := h.resolver.Resolve(rel)
	if err != nil {
		h.handleResolveErr(w, r, rel, err)
		return
	}

	if target.IsDir {
		h.serveDir(w, r, target)
		return
	}

	if strings.HasSuffix(reqPath, "/") && reqPath != "/" {
		redirect(w, r, strings.TrimSuffix(reqPath, "/"))
		return
	}

	h.serveFile(w, r, target)
}

// relative strips the base path, returning a slash-rooted path.
func (h *Handler) relative(reqPath string) (string, error) {
	if h.opts.BasePath == "/" {
		return reqPath, nil
	}

	if !strings.HasPrefix(reqPath, h.opts.BasePath) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBase, reqPath)
	}

	return "/" + strings.TrimPrefix(reqPath, h.opts.BasePath), nil
}

func (h *Handler) serveDir(w http.ResponseWriter, r *http.Request, dir *resolve.Target) {
	if !strings.HasSuffix(r.URL.Path, "/") {
		redirect(w, r, r.URL.Path+"/")
		return
	}

	index, err := h.resolver.Resolve(path.Join(dir.URLPath, h.opts.IndexFile))
	if err == nil && !index.IsDir {
		h.serveFile(w, r, index)
		return
	}

	if !h.opts.DirectoryListing {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	listing, err := h.buildListing(dir)
	if err != nil {
		log.Printf("Error listing directory %s: %v", dir.URLPath, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	h.writeListing(w, r, listing)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, target *resolve.Target) {
	f, err := os.Open(target.FSPath)
	if err != nil {
		h.handleResolveErr(w, r, target.URLPath, err)
		return
	}
	defer closeFile(f)

	ctype, err := h.mapper.TypeForFile(target.FSPath, f)
	if err != nil {
		log.Printf("Error detecting content type for %s: %v", target.URLPath, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", ctype)

	if h.opts.CacheMaxAge > 0 {
		hdr.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.opts.CacheMaxAge.Seconds())))
	}

	if h.opts.Precompressed {
		hdr.Add("Vary", "Accept-Encoding")

		if variant := findPrecompressed(target.FSPath, r.Header.Get("Accept-Encoding")); variant != nil {
			defer closeFile(variant.file)

			hdr.Set("Content-Encoding", variant.encoding)
			hdr.Set("ETag", etag(variant.info, variant.encoding))
			http.ServeContent(w, r, target.FSPath, variant.info.ModTime(), variant.file)

			return
		}
	}

	hdr.Set("ETag", etag(target.Info, ""))
	http.ServeContent(w, r, target.FSPath, target.Info.ModTime(), f)
}

func (h *Handler) handleResolveErr(w http.ResponseWriter, r *http.Request, rel string, err error) {
	switch {
	case errors.Is(err, resolve.ErrNotFound), errors.Is(err, resolve.ErrHidden), errors.Is(err, os.ErrNotExist):
		h.notFound(w, r, rel)
	case errors.Is(err, resolve.ErrOutsideRoot), errors.Is(err, os.ErrPermission):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, resolve.ErrInvalidPath):
		http.Error(w, "Bad request", http.StatusBadRequest)
	default:
		log.Printf("Error serving %s: %v", rel, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// notFound serves the SPA fallback for extensionless paths, then the
// configured 404 page, then a plain 404.
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, rel string) {
	if h.opts.SPAFallback != "" && path.Ext(rel) == "" {
		if target, err := h.resolver.Resolve(h.opts.SPAFallback); err == nil && !target.IsDir {
			h.serveFile(w, r, target)
			return
		}
	}

	if h.opts.NotFoundPage != "" {
		if target, err := h.resolver.Resolve(h.opts.NotFoundPage); err == nil && !target.IsDir {
			if body, err := os.ReadFile(target.FSPath); err == nil {
				w.Header().Set("Content-Type", h.mapper.TypeFor(target.FSPath, body))
				w.Header().Set("Cache-Control", "no-cache")
				w.WriteHeader(http.StatusNotFound)

				if r.Method != http.MethodHead {
					_, _ = w.Write(body)
				}

				return
			}
		}
	}

	http.NotFound(w, r)
}

// redirect sends a 301 to the local path to, keeping the query string.
// Leading slashes are collapsed so the target can never become a
// scheme-relative URL.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	u := url.URL{
		Path:     "/" + strings.TrimLeft(to, "/"),
		RawQuery: r.URL.RawQuery,
	}

	http.Redirect(w, r, u.String(), http.StatusMovedPermanently)
}

func etag(info os.FileInfo, encoding string) string {
	tag := fmt.Sprintf("%x-%x", info.Size(), info.ModTime().UnixNano())
	if encoding != "" {
		tag += "-" + encoding
	}

	return `W/"` + tag + `"`
}

func closeFile(f *os.File) {
	if err := f.Close(); err != nil {
		log.Printf("failed to close %s: %v", f.Name(), err)
	}
}

package fileserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mfreeman451/zserve/pkg/resolve"
)

// Entry is one item of a directory listing.
type Entry struct {
	Name    string    `json:"name"`
	URL     string    `json:"url"`
	IsDir   bool      `json:"is_dir"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Listing is a directory's visible contents, directories first.
type Listing struct {
	Path    string  `json:"path"`
	Parent  string  `json:"parent,omitempty"`
	Entries []Entry `json:"entries"`
}

var listingTmpl = template.Must(template.New("listing").Funcs(template.FuncMap{
	"size": humanSize,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Index of {{.Path}}</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem}
table{border-collapse:collapse}
td,th{padding:.2rem 1rem;text-align:left}
td.size{text-align:right}
</style>
</head>
<body>
<h1>Index of {{.Path}}</h1>
<table>
<thead><tr><th>Name</th><th>Size</th><th>Modified</th></tr></thead>
<tbody>
{{- if .Parent}}
<tr class="parent"><td><a href="{{.Parent}}">../</a></td><td></td><td></td></tr>
{{- end}}
{{- range .Entries}}
<tr class="entry"><td><a href="{{.URL}}">{{.Name}}{{if .IsDir}}/{{end}}</a></td><td class="size">{{if not .IsDir}}{{size .Size}}{{end}}</td><td>{{.ModTime.UTC.Format "2006-01-02 15:04"}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// List returns the listing for a directory given as a path relative to the
// base path. It honours the directory listing and hidden file settings.
func (h *Handler) List(relPath string) (*Listing, error) {
	if !h.opts.DirectoryListing {
		return nil, ErrListingDisabled
	}

	target, err := h.resolver.Resolve(relPath)
	if err != nil {
		return nil, err
	}

	if !target.IsDir {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, target.URLPath)
	}

	return h.buildListing(target)
}

func (h *Handler) buildListing(dir *resolve.Target) (*Listing, error) {
	dirEntries, err := os.ReadDir(dir.FSPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir.URLPath, err)
	}

	urlDir := h.publicPath(dir.URLPath)
	if !strings.HasSuffix(urlDir, "/") {
		urlDir += "/"
	}

	listing := &Listing{
		Path:    urlDir,
		Entries: make([]Entry, 0, len(dirEntries)),
	}

	if dir.URLPath != "/" {
		listing.Parent = escapePath(h.publicPath(path.Dir(dir.URLPath)))
		if !strings.HasSuffix(listing.Parent, "/") {
			listing.Parent += "/"
		}
	}

	for _, de := range dirEntries {
		name := de.Name()
		if !h.opts.ShowHidden && resolve.IsHidden("/"+name) {
			continue
		}

		// Stat follows symlinks so linked directories list as directories.
		info, err := os.Stat(filepath.Join(dir.FSPath, name))
		if err != nil {
			log.Printf("Skipping %s in listing: %v", name, err)
			continue
		}

		entry := Entry{
			Name:    name,
			URL:     escapePath(urlDir + name),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		}

		if entry.IsDir {
			entry.URL += "/"
		} else {
			entry.Size = info.Size()
		}

		listing.Entries = append(listing.Entries, entry)
	}

	sort.Slice(listing.Entries, func(i, j int) bool {
		a, b := listing.Entries[i], listing.Entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}

		return a.Name < b.Name
	})

	return listing, nil
}

func (h *Handler) writeListing(w http.ResponseWriter, r *http.Request, listing *Listing) {
	w.Header().Set("Cache-Control", "no-cache")

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(listing); err != nil {
			log.Printf("Error encoding listing for %s: %v", listing.Path, err)
		}

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := listingTmpl.Execute(w, listing); err != nil {
		log.Printf("Error rendering listing for %s: %v", listing.Path, err)
	}
}

// publicPath prefixes a root-relative path with the base path.
func (h *Handler) publicPath(rel string) string {
	if h.opts.BasePath == "/" {
		return rel
	}

	return strings.TrimSuffix(h.opts.BasePath, "/") + rel
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}

	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

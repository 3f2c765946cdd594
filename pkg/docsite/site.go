// Package docsite models documentation site navigation and checks it against
// the markdown tree it points into.
package docsite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mfreeman451/zserve/pkg/config"
)

const (
	minHeadingLevel = 1
	maxHeadingLevel = 6
)

// Load reads a site definition from a JSON, YAML or TOML file and applies
// defaults. It only fails on unreadable or malformed files; semantic problems
// are left for Check to report.
func Load(path string) (*Site, error) {
	var site Site

	if err := config.LoadFile(path, &site); err != nil {
		return nil, fmt.Errorf("failed to load site %s: %w", path, err)
	}

	site.ApplyDefaults()

	return &site, nil
}

// Default returns the built-in site describing this server's own guide.
func Default() *Site {
	return &Site{
		Title:       "Local Server",
		Description: "A lightweight HTTP file server",
		Lang:        "en-US",
		Base:        "/zserve/",
		Head: []HeadTag{
			{Tag: "link", Attrs: map[string]string{"rel": "icon", "type": "image/svg+xml", "href": "/logo.svg"}},
		},
		Theme: Theme{
			Logo: "/logo.svg",
			Nav: []Link{
				{Text: "Home", Link: "/"},
				{Text: "Guide", Link: "/guide/getting-started"},
				{Text: "API", Link: "/guide/api"},
			},
			Sidebar: Sidebar{
				"/guide/": {
					{
						Text: "Guide",
						Items: []Link{
							{Text: "Getting Started", Link: "/guide/getting-started"},
							{Text: "Configuration", Link: "/guide/configuration"},
							{Text: "Features", Link: "/guide/features"},
							{Text: "HTTP API", Link: "/guide/api"},
						},
					},
					{
						Text: "Advanced",
						Items: []Link{
							{Text: "Security", Link: "/guide/security"},
							{Text: "Performance", Link: "/guide/performance"},
						},
					},
					{
						Text:  "Project",
						Items: []Link{{Text: "Roadmap", Link: "/guide/roadmap"}},
					},
				},
			},
			SocialLinks: []SocialLink{{Icon: "github", Link: "https://github.com/mfreeman451/zserve"}},
			Footer: &Footer{
				Message:   "Released under the MIT License.",
				Copyright: "Copyright © 2026-present",
			},
			Search:  &Search{Provider: "local"},
			Outline: &Outline{Levels: []int{2, 3}},
		},
	}
}

// Validate implements config.Validator.
func (s *Site) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrMissingTitle
	}

	if !strings.HasPrefix(s.Base, "/") || !strings.HasSuffix(s.Base, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidBase, s.Base)
	}

	if o := s.Theme.Outline; o != nil {
		if len(o.Levels) > 2 {
			return fmt.Errorf("%w: %v", ErrInvalidOutline, o.Levels)
		}

		lo, hi := o.Range()
		if lo < minHeadingLevel || hi > maxHeadingLevel || lo > hi {
			return fmt.Errorf("%w: %v", ErrInvalidOutline, o.Levels)
		}
	}

	return nil
}

// SidebarPrefixes returns the sidebar prefixes in rendering order.
func (s *Site) SidebarPrefixes() []string {
	prefixes := make([]string, 0, len(s.Theme.Sidebar))
	for prefix := range s.Theme.Sidebar {
		prefixes = append(prefixes, prefix)
	}

	sort.Strings(prefixes)

	return prefixes
}

// OrderedLinks flattens the navigation in rendering order: the nav bar, then
// each sidebar prefix with its groups and items in the order they were given.
func (s *Site) OrderedLinks() []Link {
	links := make([]Link, 0, len(s.Theme.Nav))
	links = append(links, s.Theme.Nav...)

	for _, prefix := range s.SidebarPrefixes() {
		for _, group := range s.Theme.Sidebar[prefix] {
			links = append(links, group.Items...)
		}
	}

	return links
}

package docsite

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IssueKind classifies a Report entry.
type IssueKind string

const (
	IssueInvalid      IssueKind = "invalid"
	IssueDuplicate    IssueKind = "duplicate"
	IssueMissingPage  IssueKind = "missing_page"
	IssueMissingAsset IssueKind = "missing_asset"
)

// Issue is one consistency problem.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Section string    `json:"section"`
	Link    string    `json:"link,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	if i.Link == "" {
		return fmt.Sprintf("%s [%s]: %s", i.Kind, i.Section, i.Message)
	}

	return fmt.Sprintf("%s [%s] %s: %s", i.Kind, i.Section, i.Link, i.Message)
}

// Report lists the issues Check found, in navigation order.
type Report struct {
	Links  int     `json:"links"`
	Pages  int     `json:"pages"`
	Issues []Issue `json:"issues"`
}

// OK reports whether no issues were found.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

type section struct {
	name   string
	prefix string
	links  []Link
}

// Check verifies the site definition. Link paths must be unique within each
// section, where the nav bar is one section and every sidebar group is one.
// When docsRoot is set every internal link must name an existing markdown
// page and the logo and head assets must exist under docsRoot/public.
func Check(site *Site, docsRoot string) *Report {
	report := &Report{Issues: []Issue{}}

	if err := site.Validate(); err != nil {
		report.add(IssueInvalid, "site", "", err.Error())
	}

	pages := make(map[string]struct{})

	for _, sec := range sections(site) {
		seen := make(map[string]struct{}, len(sec.links))

		for _, l := range sec.links {
			report.Links++

			if strings.TrimSpace(l.Text) == "" || strings.TrimSpace(l.Link) == "" {
				report.add(IssueInvalid, sec.name, l.Link, ErrEmptyLink.Error())
				continue
			}

			if isExternal(l.Link) {
				continue
			}

			target := pagePath(sec.prefix, l.Link)
			if _, dup := seen[target]; dup {
				report.add(IssueDuplicate, sec.name, l.Link, "link appears more than once in this section")
				continue
			}

			seen[target] = struct{}{}

			if docsRoot == "" {
				continue
			}

			if _, checked := pages[target]; checked {
				continue
			}

			pages[target] = struct{}{}

			if !pageExists(docsRoot, target) {
				report.add(IssueMissingPage, sec.name, l.Link,
					fmt.Sprintf("no page at %s", strings.Join(pageCandidates(target), " or ")))
			}
		}
	}

	report.Pages = len(pages)

	if docsRoot != "" {
		checkAssets(report, site, docsRoot)
	}

	return report
}

func (r *Report) add(kind IssueKind, sectionName, link, msg string) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Section: sectionName, Link: link, Message: msg})
}

func sections(site *Site) []section {
	secs := []section{{name: "nav", prefix: "/", links: site.Theme.Nav}}

	for _, prefix := range site.SidebarPrefixes() {
		for _, group := range site.Theme.Sidebar[prefix] {
			secs = append(secs, section{
				name:   "sidebar " + prefix + " " + group.Text,
				prefix: prefix,
				links:  group.Items,
			})
		}
	}

	return secs
}

func checkAssets(report *Report, site *Site, docsRoot string) {
	if site.Theme.Logo != "" && !isExternal(site.Theme.Logo) && !assetExists(docsRoot, site.Theme.Logo) {
		report.add(IssueMissingAsset, "logo", site.Theme.Logo, "not found in public/")
	}

	for _, tag := range site.Head {
		for _, attr := range []string{"href", "src"} {
			ref := tag.Attrs[attr]
			if ref == "" || isExternal(ref) {
				continue
			}

			if !assetExists(docsRoot, ref) {
				report.add(IssueMissingAsset, "head "+tag.Tag, ref, "not found in public/")
			}
		}
	}
}

func isExternal(link string) bool {
	lower := strings.ToLower(link)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(link, "//")
}

// pagePath strips anchors, queries and page extensions, and resolves
// relative links against the section prefix.
func pagePath(prefix, link string) string {
	if i := strings.IndexAny(link, "#?"); i >= 0 {
		link = link[:i]
	}

	if link == "" {
		link = prefix
	}

	if !strings.HasPrefix(link, "/") {
		link = path.Join(prefix, link)
	}

	trailing := strings.HasSuffix(link, "/")
	link = path.Clean(link)

	for _, ext := range []string{".html", ".md"} {
		link = strings.TrimSuffix(link, ext)
	}

	if trailing && link != "/" {
		link += "/"
	}

	return link
}

// pageCandidates maps a page path to the markdown files that can back it,
// relative to the docs root.
func pageCandidates(page string) []string {
	switch {
	case page == "/":
		return []string{"index.md"}
	case strings.HasSuffix(page, "/"):
		return []string{strings.TrimPrefix(page, "/") + "index.md"}
	default:
		rel := strings.TrimPrefix(page, "/")
		return []string{rel + ".md", rel + "/index.md"}
	}
}

func pageExists(docsRoot, page string) bool {
	for _, candidate := range pageCandidates(page) {
		info, err := os.Stat(filepath.Join(docsRoot, filepath.FromSlash(candidate)))
		if err == nil && info.Mode().IsRegular() {
			return true
		}
	}

	return false
}

func assetExists(docsRoot, ref string) bool {
	if i := strings.IndexAny(ref, "#?"); i >= 0 {
		ref = ref[:i]
	}

	clean := path.Clean("/" + ref)

	info, err := os.Stat(filepath.Join(docsRoot, "public", filepath.FromSlash(clean)))

	return err == nil && info.Mode().IsRegular()
}

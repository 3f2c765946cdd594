package docsite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, root, rel string) {
	t.Helper()

	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("# page\n"), 0o600))
}

func docsTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	for _, rel := range []string{
		"index.md",
		"guide/getting-started.md",
		"guide/configuration.md",
		"guide/features.md",
		"guide/api.md",
		"guide/security.md",
		"guide/performance/index.md",
		"guide/roadmap.md",
		"public/logo.svg",
	} {
		writeDoc(t, root, rel)
	}

	return root
}

func TestDefaultSiteIsConsistent(t *testing.T) {
	report := Check(Default(), docsTree(t))

	assert.True(t, report.OK(), "issues: %v", report.Issues)
	assert.Equal(t, 10, report.Links)
	assert.Equal(t, 8, report.Pages)
}

func TestCheckReportsMissingPagesAndAssets(t *testing.T) {
	root := docsTree(t)
	require.NoError(t, os.Remove(filepath.Join(root, "guide", "roadmap.md")))
	require.NoError(t, os.Remove(filepath.Join(root, "public", "logo.svg")))

	report := Check(Default(), root)
	require.Len(t, report.Issues, 3)

	assert.Equal(t, IssueMissingPage, report.Issues[0].Kind)
	assert.Equal(t, "/guide/roadmap", report.Issues[0].Link)
	assert.Equal(t, "sidebar /guide/ Project", report.Issues[0].Section)
	assert.Contains(t, report.Issues[0].Message, "guide/roadmap.md or guide/roadmap/index.md")

	assert.Equal(t, IssueMissingAsset, report.Issues[1].Kind)
	assert.Equal(t, "logo", report.Issues[1].Section)
	assert.Equal(t, IssueMissingAsset, report.Issues[2].Kind)
	assert.Equal(t, "head link", report.Issues[2].Section)
}

func TestCheckDuplicatesPerSection(t *testing.T) {
	site := Default()
	site.Theme.Nav = append(site.Theme.Nav, Link{Text: "Start", Link: "/guide/getting-started#install"})
	site.Theme.Sidebar["/guide/"][1].Items = append(site.Theme.Sidebar["/guide/"][1].Items,
		Link{Text: "Security again", Link: "security.html"})

	report := Check(site, "")
	require.Len(t, report.Issues, 2)

	assert.Equal(t, IssueDuplicate, report.Issues[0].Kind)
	assert.Equal(t, "nav", report.Issues[0].Section)
	assert.Equal(t, IssueDuplicate, report.Issues[1].Kind)
	assert.Equal(t, "sidebar /guide/ Advanced", report.Issues[1].Section)
	assert.Equal(t, "security.html", report.Issues[1].Link)
}

func TestCheckSameLinkInDifferentSectionsIsAllowed(t *testing.T) {
	site := Default()

	// "/guide/api" is in both the nav and the Guide group.
	report := Check(site, "")
	assert.True(t, report.OK())
}

func TestCheckSkipsExternalLinks(t *testing.T) {
	site := Default()
	site.Theme.Nav = append(site.Theme.Nav,
		Link{Text: "Source", Link: "https://github.com/mfreeman451/zserve"},
		Link{Text: "Source", Link: "https://github.com/mfreeman451/zserve"},
	)

	report := Check(site, docsTree(t))
	assert.True(t, report.OK(), "issues: %v", report.Issues)
}

func TestCheckInvalidSite(t *testing.T) {
	site := Default()
	site.Title = ""
	site.Theme.Nav = append(site.Theme.Nav, Link{Text: "", Link: "/x"})

	report := Check(site, "")
	require.Len(t, report.Issues, 2)
	assert.Equal(t, IssueInvalid, report.Issues[0].Kind)
	assert.Equal(t, "site", report.Issues[0].Section)
	assert.Equal(t, IssueInvalid, report.Issues[1].Kind)
	assert.Equal(t, "/x", report.Issues[1].Link)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Site)
		wantErr error
	}{
		{name: "default", mutate: func(*Site) {}},
		{name: "no title", mutate: func(s *Site) { s.Title = " " }, wantErr: ErrMissingTitle},
		{name: "base without slash", mutate: func(s *Site) { s.Base = "/zserve" }, wantErr: ErrInvalidBase},
		{name: "outline too deep", mutate: func(s *Site) { s.Theme.Outline = &Outline{Levels: []int{2, 7}} }, wantErr: ErrInvalidOutline},
		{name: "outline reversed", mutate: func(s *Site) { s.Theme.Outline = &Outline{Levels: []int{3, 2}} }, wantErr: ErrInvalidOutline},
		{name: "outline deep", mutate: func(s *Site) { s.Theme.Outline = &Outline{Deep: true} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := Default()
			tt.mutate(site)

			err := site.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOrderedLinks(t *testing.T) {
	site := Default()
	site.Theme.Sidebar["/api/"] = []SidebarGroup{{Text: "Reference", Items: []Link{{Text: "Stats", Link: "/api/stats"}}}}

	var got []string
	for _, l := range site.OrderedLinks() {
		got = append(got, l.Link)
	}

	assert.Equal(t, []string{
		"/", "/guide/getting-started", "/guide/api",
		"/api/stats",
		"/guide/getting-started", "/guide/configuration", "/guide/features", "/guide/api",
		"/guide/security", "/guide/performance",
		"/guide/roadmap",
	}, got)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")

	require.NoError(t, os.WriteFile(path, []byte(`
title: Local Server
base: /zserve/
head:
  - [link, {rel: icon, href: /logo.svg}]
themeConfig:
  nav:
    - {text: Home, link: /}
  sidebar:
    - text: Guide
      items:
        - {text: Intro, link: /guide/intro}
  outline: deep
`), 0o600))

	site, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "en-US", site.Lang)
	require.Len(t, site.Head, 1)
	assert.Equal(t, "link", site.Head[0].Tag)
	assert.Equal(t, "/logo.svg", site.Head[0].Attrs["href"])
	require.Contains(t, site.Theme.Sidebar, "/")
	assert.Equal(t, "Intro", site.Theme.Sidebar["/"][0].Items[0].Text)
	require.NotNil(t, site.Theme.Outline)
	assert.True(t, site.Theme.Outline.Deep)
}

func TestLoadLeavesValidationToCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "x", "base": "docs"}`), 0o600))

	site, err := Load(path)
	require.NoError(t, err)
	assert.ErrorIs(t, site.Validate(), ErrInvalidBase)

	report := Check(site, "")
	require.False(t, report.OK())
	assert.Equal(t, IssueInvalid, report.Issues[0].Kind)
	assert.Equal(t, "site", report.Issues[0].Section)
}

func TestOutlineForms(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi int
		deep   bool
		err    bool
	}{
		{in: `2`, lo: 2, hi: 2},
		{in: `[2, 3]`, lo: 2, hi: 3},
		{in: `"deep"`, lo: 2, hi: 6, deep: true},
		{in: `{"level": [2, 4]}`, lo: 2, hi: 4},
		{in: `false`, lo: 2, hi: 2},
		{in: `"shallow"`, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var o Outline

			err := json.Unmarshal([]byte(tt.in), &o)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidOutline)
				return
			}

			require.NoError(t, err)

			lo, hi := o.Range()
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
			assert.Equal(t, tt.deep, o.Deep)
		})
	}
}

func TestHeadTagRoundTrip(t *testing.T) {
	var tag HeadTag

	require.NoError(t, json.Unmarshal([]byte(`["meta", {"name": "theme-color", "content": "#fff"}]`), &tag))
	assert.Equal(t, "meta", tag.Tag)

	out, err := json.Marshal(tag)
	require.NoError(t, err)
	assert.JSONEq(t, `["meta", {"name": "theme-color", "content": "#fff"}]`, string(out))

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"tag": "meta"}`), &tag), ErrInvalidHead)
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		prefix, link, want string
	}{
		{"/", "/", "/"},
		{"/", "/guide/api#errors", "/guide/api"},
		{"/guide/", "security", "/guide/security"},
		{"/guide/", "security.html", "/guide/security"},
		{"/guide/", "/guide/", "/guide/"},
		{"/guide/", "#top", "/guide/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pagePath(tt.prefix, tt.link), tt.link)
	}
}

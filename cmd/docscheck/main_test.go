package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mfreeman451/zserve/pkg/docsite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryDocsAreConsistent(t *testing.T) {
	var out bytes.Buffer

	code := run(&out, filepath.Join("..", "..", "docs", "site.json"), filepath.Join("..", "..", "docs"), false)
	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "0 issues")
}

func TestMissingPageFails(t *testing.T) {
	var out bytes.Buffer

	code := run(&out, "", t.TempDir(), true)
	assert.Equal(t, 1, code)

	var report docsite.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.NotEmpty(t, report.Issues)
}

func TestUnreadableSite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": `), 0o600))

	var out bytes.Buffer
	assert.Equal(t, 2, run(&out, path, t.TempDir(), false))
}

func TestInvalidSiteReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base": "/docs/"}`), 0o600))

	var out bytes.Buffer

	code := run(&out, path, "", true)
	assert.Equal(t, 1, code)

	var report docsite.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, docsite.IssueInvalid, report.Issues[0].Kind)
}

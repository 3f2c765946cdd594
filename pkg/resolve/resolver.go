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

// Package resolve maps request paths onto files below a served root.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/text/unicode/norm"
)

const wellKnown = ".well-known"

// Options tune what Resolve is willing to return.
type Options struct {
	ShowHidden bool
}

// Target is a resolved filesystem entry.
type Target struct {
	URLPath string // cleaned, slash-rooted request path
	FSPath  string // absolute, symlink-free filesystem path
	Info    fs.FileInfo
	IsDir   bool
}

// Resolver turns URL paths into filesystem paths without ever leaving root.
type Resolver struct {
	root string
	opts Options
}

// New creates a Resolver for root. The root is made absolute and its
// symlinks evaluated so containment checks compare like with like.
func New(root string, opts Options) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}

	return &Resolver{root: resolved, opts: opts}, nil
}

// Root returns the absolute root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Clean normalizes a request path to NFC and cleans it rooted at "/".
func Clean(urlPath string) (string, error) {
	if strings.ContainsAny(urlPath, "\x00\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, urlPath)
	}

	return path.Clean("/" + norm.NFC.String(urlPath)), nil
}

// Resolve maps urlPath (already percent-decoded) onto the filesystem.
func (r *Resolver) Resolve(urlPath string) (*Target, error) {
	clean, err := Clean(urlPath)
	if err != nil {
		return nil, err
	}

	if !r.opts.ShowHidden && IsHidden(clean) {
		return nil, fmt.Errorf("%w: %s", ErrHidden, clean)
	}

	joined := filepath.Join(r.root, filepath.FromSlash(clean))

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}

		return nil, fmt.Errorf("failed to resolve %s: %w", clean, err)
	}

	if !r.contains(resolved) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, clean)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}

		return nil, fmt.Errorf("failed to stat %s: %w", clean, err)
	}

	return &Target{
		URLPath: clean,
		FSPath:  resolved,
		Info:    info,
		IsDir:   info.IsDir(),
	}, nil
}

// isMissing also treats a path that walks through a regular file as missing.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func (r *Resolver) contains(p string) bool {
	rel, err := filepath.Rel(r.root, p)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// IsHidden reports whether any segment of a cleaned path is a dotfile.
// The .well-known directory is never considered hidden.
func IsHidden(clean string) bool {
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" || seg == wellKnown {
			continue
		}

		if strings.HasPrefix(seg, ".") {
			return true
		}
	}

	return false
}

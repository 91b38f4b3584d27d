// SPDX-License-Identifier: MIT

// Package pathutil locates the project root by walking up the directory tree
// looking for marker files.
package pathutil

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no marker file is found within the search
// depth and no default path was configured.
var ErrNotFound = errors.New("pathutil: project root not found")

// DefaultMarkers are the files that identify a project root.
var DefaultMarkers = []string{"go.mod", ".project_root"}

// DefaultMaxDepth bounds how many parent directories are searched.
const DefaultMaxDepth = 5

type options struct {
	markers  []string
	maxDepth int
	fallback string
	hasFall  bool
}

// Option configures FindRoot.
type Option func(*options)

// WithMarkers replaces the marker file names to search for.
func WithMarkers(markers ...string) Option {
	return func(o *options) { o.markers = markers }
}

// WithMaxDepth sets how many parents above start are searched.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithDefault sets the path returned when no marker is found.
func WithDefault(path string) Option {
	return func(o *options) {
		o.fallback = path
		o.hasFall = true
	}
}

// FindRoot walks from start upward, returning the first directory that
// contains one of the marker files. start may be a file; the search begins at
// its directory. When no marker is found within the depth limit, the
// configured default is returned, or ErrNotFound.
func FindRoot(start string, opts ...Option) (string, error) {
	o := options{markers: DefaultMarkers, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	dir := abs
	for depth := 0; depth <= o.maxDepth; depth++ {
		for _, marker := range o.markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if o.hasFall {
		return o.fallback, nil
	}
	return "", ErrNotFound
}

// ExecutableDir returns the directory holding the running binary, the
// deployed-artifact analog of a source checkout root.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

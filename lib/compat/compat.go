// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/dbx/lib/clock"
)

// DefaultURL is the location of the compatibility document. The %s is
// replaced by the program version.
const DefaultURL = "https://raw.githubusercontent.com/89luca89/distrobox/%s/docs/compatibility.md"

// maxDocumentSize bounds the downloaded document.
const maxDocumentSize = 4 << 20

// cacheEntry is the on-disk cache format.
type cacheEntry struct {
	Version   string    `yaml:"version"`
	Source    string    `yaml:"source"`
	FetchedAt time.Time `yaml:"fetched_at"`
	Images    []string  `yaml:"images"`
}

// Lister returns the compatible image list for one program version.
type Lister struct {
	Version string

	// URL is a format string with one %s for the version. Defaults to
	// DefaultURL.
	URL string

	// CacheDir holds the per-version cache files.
	CacheDir string

	Client *http.Client
	Clock  clock.Clock
	Logger *slog.Logger
}

// CacheDir returns the cache directory: $XDG_CACHE_HOME/dbx, falling
// back to ~/.cache/dbx.
func CacheDir(home, xdgCacheHome string) string {
	if xdgCacheHome == "" {
		xdgCacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(xdgCacheHome, "dbx")
}

// Images returns the list, from the cache when present and downloading
// it otherwise. A failure to write the cache is logged, not returned.
func (l *Lister) Images(ctx context.Context) ([]string, error) {
	if images, ok := l.readCache(); ok {
		return images, nil
	}

	source := l.source()
	document, err := l.fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching compatibility list: %w", err)
	}
	images := ParseImages(document)
	if len(images) == 0 {
		return nil, fmt.Errorf("no images found in %s", source)
	}

	if err := l.writeCache(cacheEntry{
		Version:   l.Version,
		Source:    source,
		FetchedAt: l.now(),
		Images:    images,
	}); err != nil {
		l.logger().Warn("cannot cache compatibility list", "error", err)
	}
	return images, nil
}

func (l *Lister) cachePath() string {
	return filepath.Join(l.CacheDir, fmt.Sprintf("compatibility-%s.yaml", l.Version))
}

func (l *Lister) readCache() ([]string, bool) {
	data, err := os.ReadFile(l.cachePath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger().Debug("cannot read compatibility cache", "error", err)
		}
		return nil, false
	}
	var entry cacheEntry
	if err := yaml.Unmarshal(data, &entry); err != nil {
		l.logger().Debug("ignoring corrupt compatibility cache", "path", l.cachePath(), "error", err)
		return nil, false
	}
	if entry.Version != l.Version || len(entry.Images) == 0 {
		return nil, false
	}
	return entry.Images, true
}

// writeCache replaces the cache file atomically.
func (l *Lister) writeCache(entry cacheEntry) error {
	data, err := yaml.Marshal(entry)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.CacheDir, 0o755); err != nil {
		return err
	}
	temporary, err := os.CreateTemp(l.CacheDir, ".compatibility-*")
	if err != nil {
		return err
	}
	defer os.Remove(temporary.Name())
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return err
	}
	if err := temporary.Close(); err != nil {
		return err
	}
	return os.Rename(temporary.Name(), l.cachePath())
}

func (l *Lister) fetch(ctx context.Context, source string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", source, response.Status)
	}
	return io.ReadAll(io.LimitReader(response.Body, maxDocumentSize))
}

func (l *Lister) source() string {
	format := l.URL
	if format == "" {
		format = DefaultURL
	}
	return fmt.Sprintf(format, l.Version)
}

func (l *Lister) now() time.Time {
	if l.Clock == nil {
		return clock.Real().Now()
	}
	return l.Clock.Now()
}

func (l *Lister) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

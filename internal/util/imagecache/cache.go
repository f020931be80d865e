// Package imagecache downloads remote images into a local cache directory.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmylchreest/swatch/internal/security"
	httputil "github.com/jmylchreest/swatch/internal/util/http"
)

// CacheOptions configures image caching behavior.
type CacheOptions struct {
	// CacheDir is the directory where images will be cached.
	// If empty, DefaultCacheDir is used.
	CacheDir string

	// Filename overrides the derived cache filename. It must stay inside CacheDir.
	Filename string

	// AllowOverwrite re-downloads images that are already cached.
	AllowOverwrite bool
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "swatch", "images"), nil
	}
	return filepath.Join(cacheDir, "swatch", "images"), nil
}

var knownExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// cacheFilename derives a deterministic filename from the URL: the first 16
// bytes of its SHA-256 plus the image extension of the URL path, or .img.
func cacheFilename(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	name := fmt.Sprintf("%x", hash[:16])

	ext := ".img"
	if u, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); slices.Contains(knownExtensions, e) {
			ext = e
		}
	}
	return name + ext
}

// DownloadAndCache downloads a remote image into the cache directory and
// returns the local path. Cached files are reused unless AllowOverwrite is set.
func DownloadAndCache(ctx context.Context, rawURL string, opts CacheOptions) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return "", err
		}
		cacheDir = defaultDir
	}

	filename := opts.Filename
	if filename == "" {
		filename = cacheFilename(rawURL)
	}
	if err := security.ValidateFilePath(filename, cacheDir); err != nil {
		return "", fmt.Errorf("invalid cache filename: %w", err)
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath := filepath.Join(cacheDir, filename)
	if !opts.AllowOverwrite {
		if _, err := os.Stat(cachedPath); err == nil {
			return cachedPath, nil
		}
	}

	data, err := httputil.Fetch(ctx, rawURL, httputil.FetchOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	if err := os.WriteFile(cachedPath, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	return cachedPath, nil
}

// Package source resolves opaque document references to raw bytes. The
// pipeline treats resolution as a fallible external call wrapped by its
// top-level failure handler.
package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Resolver yields the raw bytes behind a URI-like reference.
type Resolver interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// FileResolver resolves plain paths and file:// URIs from the local
// filesystem.
type FileResolver struct{}

func (FileResolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := filePath(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: reading a user-provided document is the point
	if err != nil {
		return nil, fmt.Errorf("could not read file: %w", err)
	}
	return data, nil
}

func filePath(ref string) (string, error) {
	if !strings.Contains(ref, "://") {
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid source reference %q: %w", ref, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
	return u.Path, nil
}

// DisplayName derives a human-readable file name from a reference: its last
// path segment, or a placeholder when the reference has none.
func DisplayName(ref string) string {
	trimmed := strings.TrimSuffix(ref, "/")
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		trimmed = u.Path
	}
	name := filepath.Base(trimmed)
	if name == "" || name == "." || name == "/" {
		return "unknown_file.pdf"
	}
	return name
}

package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// fileSourceHandler reads feeds from local files
type fileSourceHandler struct{}

// NewFileSourceHandler creates a new file source handler
func NewFileSourceHandler() SourceHandler {
	return &fileSourceHandler{}
}

// Fetch reads the file named by a file:// URL
func (*fileSourceHandler) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := filePath(rawURL)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // File path comes from the communities list, this is expected behavior
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return data, nil
}

// filePath maps file:///abs, file://localhost/abs, file://rel/path and
// file:rel onto a filesystem path
func filePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid file URL %s: %w", rawURL, err)
	}
	if u.Scheme != SchemeFile {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	path := u.Path
	switch {
	case u.Opaque != "":
		path = u.Opaque
	case u.Host != "" && u.Host != "localhost":
		path = u.Host + u.Path
	}
	if path == "" {
		return "", fmt.Errorf("file URL %s has no path", rawURL)
	}

	return filepath.FromSlash(path), nil
}

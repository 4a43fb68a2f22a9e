package sources

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"

	"github.com/freifunk/gluon-census/internal/formats"
)

// Loader runs fetch, format detection and node extraction for one source
type Loader struct {
	factory  SourceHandlerFactory
	registry *formats.Registry
}

// NewLoader creates a loader that reads through factory and recognizes
// formats from registry
func NewLoader(factory SourceHandlerFactory, registry *formats.Registry) *Loader {
	return &Loader{
		factory:  factory,
		registry: registry,
	}
}

// Load fetches rawURL and extracts its nodes. The returned error wraps
// ErrUnsupportedScheme, formats.ErrInvalidJSON or
// formats.ErrUnrecognizedFormat where applicable.
func (l *Loader) Load(ctx context.Context, rawURL string) (*FetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}

	handler, err := l.factory.CreateHandler(u.Scheme)
	if err != nil {
		return nil, err
	}

	data, err := handler.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}

	spec, doc, err := l.registry.Detect(data)
	if err != nil {
		return nil, err
	}

	extraction := spec.Extract(doc)

	return &FetchResult{
		Format:  spec.Name,
		Nodes:   extraction.Nodes,
		Skipped: extraction.Skipped,
		Hash:    fmt.Sprintf("%x", sha256.Sum256(data)),
	}, nil
}

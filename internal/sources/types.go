package sources

import (
	"context"
	"errors"

	"github.com/freifunk/gluon-census/internal/formats"
)

// ErrUnsupportedScheme is returned for source URLs no handler can read
var ErrUnsupportedScheme = errors.New("unsupported source scheme")

//go:generate mockgen -destination=mocks/mock_source_handler.go -package=mocks -source=types.go SourceHandler,SourceHandlerFactory

// SourceHandler reads the raw payload behind a source URL
type SourceHandler interface {
	// Fetch returns the payload at rawURL
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// SourceHandlerFactory creates source handlers based on URL scheme
type SourceHandlerFactory interface {
	// CreateHandler creates a source handler for the given scheme
	CreateHandler(scheme string) (SourceHandler, error)
}

// FetchResult contains the result of loading one source
type FetchResult struct {
	// Format is the name of the detected feed format
	Format string

	// Nodes are the projected nodes in document order
	Nodes []formats.CanonicalNode

	// Skipped counts node entries without a usable id
	Skipped int

	// Hash is the SHA256 hash of the raw payload
	Hash string
}

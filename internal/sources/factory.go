package sources

import (
	"fmt"
	"strings"

	"github.com/freifunk/gluon-census/internal/httpclient"
)

// Supported URL schemes
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeFile  = "file"
)

// defaultSourceHandlerFactory is the default implementation of SourceHandlerFactory
type defaultSourceHandlerFactory struct {
	http SourceHandler
	file SourceHandler
}

var _ SourceHandlerFactory = (*defaultSourceHandlerFactory)(nil)

// NewSourceHandlerFactory creates a factory whose http(s) handler uses client
func NewSourceHandlerFactory(client httpclient.Client) SourceHandlerFactory {
	return &defaultSourceHandlerFactory{
		http: NewHTTPSourceHandler(client),
		file: NewFileSourceHandler(),
	}
}

// CreateHandler creates a source handler for the given URL scheme
func (f *defaultSourceHandlerFactory) CreateHandler(scheme string) (SourceHandler, error) {
	switch strings.ToLower(scheme) {
	case SchemeHTTP, SchemeHTTPS:
		return f.http, nil
	case SchemeFile:
		return f.file, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

package sources

import (
	"context"

	"github.com/freifunk/gluon-census/internal/httpclient"
)

// httpSourceHandler fetches feeds over HTTP(S)
type httpSourceHandler struct {
	client httpclient.Client
}

// NewHTTPSourceHandler creates a handler that fetches with client.
// A nil client selects the default client.
func NewHTTPSourceHandler(client httpclient.Client) SourceHandler {
	if client == nil {
		client = httpclient.NewDefaultClient(0)
	}
	return &httpSourceHandler{client: client}
}

// Fetch performs one GET. Failures are not retried.
func (h *httpSourceHandler) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return h.client.Get(ctx, rawURL)
}

package httpclient_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freifunk/gluon-census/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		url           string
		message       string
		expectedError string
	}{
		{
			name:          "not found",
			statusCode:    404,
			url:           "https://map.example.net/data/nodes.json",
			message:       "404 Not Found",
			expectedError: "HTTP 404 for URL https://map.example.net/data/nodes.json: 404 Not Found",
		},
		{
			name:          "server error",
			statusCode:    503,
			url:           "https://map.example.net/data/meshviewer.json",
			message:       "503 Service Unavailable",
			expectedError: "HTTP 503 for URL https://map.example.net/data/meshviewer.json: 503 Service Unavailable",
		},
		{
			name:          "empty message",
			statusCode:    301,
			url:           "http://example.com",
			expectedError: "HTTP 301 for URL http://example.com: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := httpclient.NewHTTPError(tt.statusCode, tt.url, tt.message)
			require.Error(t, err)
			assert.Equal(t, tt.expectedError, err.Error())
		})
	}
}

func TestHTTPError_As(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("fetch failed: %w", httpclient.NewHTTPError(500, "http://example.com", "boom"))

	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, 500, httpErr.StatusCode)
	assert.Equal(t, "http://example.com", httpErr.URL)
}

func TestHTTPError_Temporary(t *testing.T) {
	t.Parallel()

	for status, want := range map[int]bool{
		404: false,
		403: false,
		429: true,
		500: true,
		503: true,
	} {
		err := httpclient.NewHTTPError(status, "http://example.com", "")
		var httpErr *httpclient.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, want, httpErr.Temporary(), "status %d", status)
	}
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 502, httpclient.StatusCode(fmt.Errorf("wrapped: %w", httpclient.NewHTTPError(502, "http://example.com", ""))))
	assert.Equal(t, 0, httpclient.StatusCode(errors.New("connection refused")))
	assert.Equal(t, 0, httpclient.StatusCode(nil))
}

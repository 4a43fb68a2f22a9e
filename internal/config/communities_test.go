package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommunities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		ext      string
		expected Communities
		wantErr  string
	}{
		{
			name:     "empty object",
			content:  `{}`,
			ext:      ".json",
			expected: Communities{},
		},
		{
			name: "plain json",
			content: `{
  "aachen": ["https://map.aachen.freifunk.net/data/meshviewer.json"],
  "bremen": ["https://downloads.bremen.freifunk.net/data/nodes.json", "https://b.example/meshviewer.json"]
}`,
			ext: ".json",
			expected: Communities{
				"aachen": {"https://map.aachen.freifunk.net/data/meshviewer.json"},
				"bremen": {"https://downloads.bremen.freifunk.net/data/nodes.json", "https://b.example/meshviewer.json"},
			},
		},
		{
			name: "json with comments and trailing commas",
			content: `{
  // primary map
  "kiel": [
    "https://map.freifunk.in-kiel.de/data/nodes.json",
  ],
}`,
			ext:      ".json",
			expected: Communities{"kiel": {"https://map.freifunk.in-kiel.de/data/nodes.json"}},
		},
		{
			name: "yaml",
			content: `muenster:
  - https://map.ffms.de/data/meshviewer.json
`,
			ext:      ".yml",
			expected: Communities{"muenster": {"https://map.ffms.de/data/meshviewer.json"}},
		},
		{
			name:    "empty url",
			content: `{"x": [""]}`,
			ext:     ".json",
			wantErr: "url[0] cannot be empty",
		},
		{
			name:    "empty community",
			content: `{"": ["https://a.example/nodes.json"]}`,
			ext:     ".json",
			wantErr: "community name cannot be empty",
		},
		{
			name:    "not an object",
			content: `["https://a.example/nodes.json"]`,
			ext:     ".json",
			wantErr: "failed to parse communities",
		},
		{
			name:    "broken json",
			content: `{"x": [`,
			ext:     "",
			wantErr: "failed to parse communities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCommunities([]byte(tt.content), tt.ext)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoadCommunities(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "communities.json", `{"a": ["file:///tmp/a.json"]}`)
	got, err := LoadCommunities(path)
	require.NoError(t, err)
	assert.Equal(t, Communities{"a": {"file:///tmp/a.json"}}, got)

	_, err = LoadCommunities(path + ".missing")
	assert.ErrorContains(t, err, "failed to read communities file")
}

func TestCommunities_Sources(t *testing.T) {
	t.Parallel()

	communities := Communities{
		"zeta":  {"https://z.example/1", "https://z.example/2"},
		"alpha": {"https://a.example/1"},
		"empty": {},
	}

	assert.Equal(t, []Source{
		{Community: "alpha", URL: "https://a.example/1"},
		{Community: "zeta", URL: "https://z.example/1"},
		{Community: "zeta", URL: "https://z.example/2"},
	}, communities.Sources())

	assert.Empty(t, Communities{}.Sources())
}

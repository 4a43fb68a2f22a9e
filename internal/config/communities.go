package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Communities maps a community name to the URLs of its node-status feeds
type Communities map[string][]string

// Source is one (community, URL) pair of the flattened worklist
type Source struct {
	Community string
	URL       string
}

// LoadCommunities reads the community source list. JSON files may carry
// comments and trailing commas; .yaml and .yml files are read as YAML.
func LoadCommunities(path string) (Communities, error) {
	//nolint:gosec // path comes from user configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read communities file: %w", err)
	}

	return ParseCommunities(data, filepath.Ext(path))
}

// ParseCommunities decodes a source list. ext selects the decoder.
func ParseCommunities(data []byte, ext string) (Communities, error) {
	var communities Communities

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &communities); err != nil {
			return nil, fmt.Errorf("failed to parse YAML communities: %w", err)
		}
	default:
		standard, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse communities: %w", err)
		}
		if err := json.Unmarshal(standard, &communities); err != nil {
			return nil, fmt.Errorf("failed to parse communities: %w", err)
		}
	}

	if communities == nil {
		communities = Communities{}
	}

	if err := communities.validate(); err != nil {
		return nil, err
	}

	return communities, nil
}

func (c Communities) validate() error {
	for name, urls := range c {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("community name cannot be empty")
		}
		for i, u := range urls {
			if strings.TrimSpace(u) == "" {
				return fmt.Errorf("community %s: url[%d] cannot be empty", name, i)
			}
		}
	}
	return nil
}

// Sources flattens the source list into one worklist, ordered by community
// and then by position in the community's URL list
func (c Communities) Sources() []Source {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	var sources []Source
	for _, name := range names {
		for _, u := range c[name] {
			sources = append(sources, Source{Community: name, URL: u})
		}
	}
	return sources
}

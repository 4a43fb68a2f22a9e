// Package filtering selects the communities that take part in a census.
package filtering

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/freifunk/gluon-census/internal/config"
)

// CommunityFilter decides by glob pattern whether a community is counted
type CommunityFilter interface {
	// ShouldInclude reports whether the community is counted and why
	ShouldInclude(community string) (bool, string)
}

type communityFilter struct {
	include []glob.Glob
	exclude []glob.Glob
	rawInc  []string
	rawExc  []string
}

var _ CommunityFilter = (*communityFilter)(nil)

// NewCommunityFilter compiles the include and exclude patterns. Exclusion
// wins over inclusion; without include patterns every community not
// excluded is counted.
func NewCommunityFilter(include, exclude []string) (CommunityFilter, error) {
	inc, err := compile(include)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	exc, err := compile(exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	return &communityFilter{include: inc, exclude: exc, rawInc: include, rawExc: exclude}, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		// filepath.Match rejects malformed brackets that glob accepts silently
		if _, err := filepath.Match(pattern, "test"); err != nil {
			return nil, fmt.Errorf("%q: %w", pattern, err)
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func (f *communityFilter) ShouldInclude(community string) (bool, string) {
	for i, g := range f.exclude {
		if g.Match(community) {
			return false, fmt.Sprintf("excluded by pattern '%s'", f.rawExc[i])
		}
	}

	if len(f.include) > 0 {
		for i, g := range f.include {
			if g.Match(community) {
				return true, fmt.Sprintf("included by pattern '%s'", f.rawInc[i])
			}
		}
		return false, fmt.Sprintf("no match found in include patterns %v", f.rawInc)
	}

	if len(f.exclude) > 0 {
		return true, fmt.Sprintf("no match in exclude patterns %v", f.rawExc)
	}
	return true, "no community filters specified"
}

// Apply returns the sources whose community passes the filter, keeping
// their order. skip is called once per dropped community.
func Apply(f CommunityFilter, sources []config.Source, skip func(community, reason string)) []config.Source {
	kept := make([]config.Source, 0, len(sources))
	decided := make(map[string]bool)
	for _, src := range sources {
		include, ok := decided[src.Community]
		if !ok {
			var reason string
			include, reason = f.ShouldInclude(src.Community)
			decided[src.Community] = include
			if !include && skip != nil {
				skip(src.Community, reason)
			}
		}
		if include {
			kept = append(kept, src)
		}
	}
	return kept
}

package versions

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const gluonReleasePrefix = "gluon-v"

// IsNewerBase reports whether newBase is a strictly later gluon release than
// oldBase. Tagged releases (gluon-vYYYY.N[.N]) are compared as versions and
// always sort above non-release bases; everything else falls back to
// lexicographic comparison.
func IsNewerBase(newBase, oldBase string) bool {
	newSemver, errNew := parseRelease(newBase)
	oldSemver, errOld := parseRelease(oldBase)

	switch {
	case errNew == nil && errOld == nil:
		return newSemver.GreaterThan(oldSemver)
	case errNew == nil:
		return true
	case errOld == nil:
		return false
	default:
		return newBase > oldBase
	}
}

func parseRelease(base string) (*semver.Version, error) {
	if !strings.HasPrefix(base, gluonReleasePrefix) {
		return nil, fmt.Errorf("not a gluon release: %s", base)
	}
	return semver.NewVersion(strings.TrimPrefix(base, gluonReleasePrefix))
}

// Package versions classifies node-reported firmware build identifiers into
// the gluon release taxonomy and orders gluon releases.
package versions

import "regexp"

// VType is the classification bucket assigned to a firmware base string
type VType string

const (
	// VTypeGluonBase is a tagged gluon release, e.g. gluon-v2023.2.1
	VTypeGluonBase VType = "gluon-base"

	// VTypeGluonUnknown is the literal gluon-unknown reported by untagged builds
	VTypeGluonUnknown VType = "gluon-unknown"

	// VTypeGluonCommitID is a gluon build identified by a commit hash
	VTypeGluonCommitID VType = "gluon-commitid"

	// VTypeGluonCustom is any other gluon- prefixed identifier
	VTypeGluonCustom VType = "gluon-custom"

	// VTypeUndefined is an absent or empty firmware base
	VTypeUndefined VType = "undefined"

	// VTypeForeign is a non-empty identifier that is not gluon
	VTypeForeign VType = "foreign"
)

// Undefined is the version and base reported for nodes without a firmware base
const Undefined = "undefined"

// Class is the derived classification of one firmware base string
type Class struct {
	Version string
	Base    string
	VType   VType
}

// IsGluon reports whether the classification routes into the gluon aggregate.
// undefined and foreign nodes are counted as aliens.
func (c Class) IsGluon() bool {
	return c.VType.IsGluon()
}

// IsGluon reports whether the vtype is one of the recognized gluon vtypes
func (t VType) IsGluon() bool {
	switch t {
	case VTypeGluonBase, VTypeGluonUnknown, VTypeGluonCommitID, VTypeGluonCustom:
		return true
	default:
		return false
	}
}

type pattern struct {
	vtype   VType
	version *regexp.Regexp
	base    *regexp.Regexp
}

// patterns is evaluated in order and the first match wins. gluon-base must
// precede gluon-custom, which would otherwise swallow every tagged release.
var patterns = []pattern{
	{
		vtype:   VTypeGluonBase,
		version: regexp.MustCompile(`^(gluon-v\d{4}\.\d(?:\.\d)?(?:-\d+)?)`),
		base:    regexp.MustCompile(`^(gluon-v\d{4}\.\d(?:\.\d)?)`),
	},
	{
		vtype:   VTypeGluonUnknown,
		version: regexp.MustCompile(`^(gluon-unknown)$`),
		base:    regexp.MustCompile(`^(gluon-unknown)$`),
	},
	{
		vtype:   VTypeGluonCommitID,
		version: regexp.MustCompile(`^(gluon-[0-9a-f]{7,})$`),
		base:    regexp.MustCompile(`^(gluon-[0-9a-f]{7,})$`),
	},
	{
		vtype:   VTypeGluonCustom,
		version: regexp.MustCompile(`^(gluon-.*)`),
		base:    regexp.MustCompile(`^(gluon-.*)`),
	},
}

// Classify maps a firmware base to its version, base and vtype. An empty
// string stands for both a missing and an empty firmware base.
func Classify(firmwareBase string) Class {
	if firmwareBase == "" {
		return Class{Version: Undefined, Base: Undefined, VType: VTypeUndefined}
	}

	for _, p := range patterns {
		version := p.version.FindStringSubmatch(firmwareBase)
		if version == nil {
			continue
		}
		class := Class{Version: version[1], Base: version[1], VType: p.vtype}
		if base := p.base.FindStringSubmatch(firmwareBase); base != nil {
			class.Base = base[1]
		}
		return class
	}

	return Class{Version: firmwareBase, Base: firmwareBase, VType: VTypeForeign}
}

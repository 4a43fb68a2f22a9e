// Package formats recognizes community node feeds and projects their nodes
// into canonical census records.
package formats

import (
	"bytes"
	"embed"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"
)

// Names of the recognized feed formats. They double as source_type labels.
const (
	Meshviewer      = "meshviewer"
	MeshviewerOld   = "meshviewer (old)"
	NodesJSONV1     = "nodes.json v1"
	NodesJSONV2     = "nodes.json v2"
	schemaURLPrefix = "https://gluon-census.freifunk.net/schemas/"
)

var (
	// ErrInvalidJSON is returned when a payload cannot be decoded
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrUnrecognizedFormat is returned when no registered format accepts a payload
	ErrUnrecognizedFormat = errors.New("unrecognized format")
)

//go:embed schemas/*.json
var schemaFS embed.FS

// KeyPath is a sequence of object keys leading to a value inside a node.
// A nil KeyPath means the format does not carry the field.
type KeyPath []string

// FormatSpec describes one feed shape: how to recognize it and where each
// node field lives.
type FormatSpec struct {
	Name string

	// ID locates the node id inside a node object. A nil ID means nodes
	// are keyed by id in the enclosing "nodes" object.
	ID     KeyPath
	Base   KeyPath
	Model  KeyPath
	Domain KeyPath
	Site   KeyPath

	schemaFile string
	schema     *jsonschema.Schema
}

// Accepts reports whether the decoded document satisfies the format's schema
func (f *FormatSpec) Accepts(doc any) bool {
	return f.schema != nil && f.schema.Validate(doc) == nil
}

// builtinFormats returns the known formats in detection order. Order matters:
// the first accepting schema wins.
func builtinFormats() []*FormatSpec {
	meshviewer := func(name, schemaFile string) *FormatSpec {
		return &FormatSpec{
			Name:       name,
			ID:         KeyPath{"node_id"},
			Base:       KeyPath{"firmware", "base"},
			Model:      KeyPath{"model"},
			Domain:     KeyPath{"domain"},
			schemaFile: schemaFile,
		}
	}

	return []*FormatSpec{
		meshviewer(Meshviewer, "meshviewer.json"),
		meshviewer(MeshviewerOld, "meshviewer-old.json"),
		{
			Name:       NodesJSONV1,
			Base:       KeyPath{"nodeinfo", "software", "firmware", "base"},
			schemaFile: "nodes-v1.json",
		},
		{
			Name:       NodesJSONV2,
			ID:         KeyPath{"nodeinfo", "node_id"},
			Base:       KeyPath{"nodeinfo", "software", "firmware", "base"},
			Model:      KeyPath{"nodeinfo", "hardware", "model"},
			Domain:     KeyPath{"nodeinfo", "system", "domain_code"},
			Site:       KeyPath{"nodeinfo", "system", "site_code"},
			schemaFile: "nodes-v2.json",
		},
	}
}

// Registry holds the formats in detection order
type Registry struct {
	formats []*FormatSpec
}

// NewRegistry compiles the embedded format schemas
func NewRegistry() (*Registry, error) {
	compiler := jsonschema.NewCompiler()
	formats := builtinFormats()

	for _, f := range formats {
		raw, err := schemaFS.ReadFile("schemas/" + f.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", f.schemaFile, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema %s: %w", f.schemaFile, err)
		}
		if err := compiler.AddResource(schemaURLPrefix+f.schemaFile, doc); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", f.schemaFile, err)
		}
	}

	for _, f := range formats {
		schema, err := compiler.Compile(schemaURLPrefix + f.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for %s: %w", f.Name, err)
		}
		f.schema = schema
	}

	return &Registry{formats: formats}, nil
}

// Formats returns the registered formats in detection order
func (r *Registry) Formats() []*FormatSpec {
	out := make([]*FormatSpec, len(r.formats))
	copy(out, r.formats)
	return out
}

// Lookup returns the format registered under name
func (r *Registry) Lookup(name string) (*FormatSpec, bool) {
	for _, f := range r.formats {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Detect decodes data and returns the first format whose schema accepts it,
// together with the document ready for extraction.
func (r *Registry) Detect(data []byte) (*FormatSpec, gjson.Result, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, gjson.Result{}, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	for _, f := range r.formats {
		if f.Accepts(doc) {
			return f, gjson.ParseBytes(data), nil
		}
	}

	return nil, gjson.Result{}, ErrUnrecognizedFormat
}

package formats

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// CanonicalNode is a node projected out of any feed format. Fields the feed
// does not carry are empty.
type CanonicalNode struct {
	ID     string
	Base   string
	Model  string
	Domain string
	Site   string
}

// Extraction is the result of projecting one document
type Extraction struct {
	Nodes []CanonicalNode
	// Skipped counts node entries without a usable id
	Skipped int
}

var whitespaceRun = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)

// NormalizeModel collapses runs of whitespace into a single space
func NormalizeModel(model string) string {
	return whitespaceRun.ReplaceAllString(model, " ")
}

// Extract projects every node of doc. Nodes without an id are skipped,
// missing or mistyped fields come back empty.
func (f *FormatSpec) Extract(doc gjson.Result) Extraction {
	var out Extraction

	doc.Get("nodes").ForEach(func(key, node gjson.Result) bool {
		var id string
		var ok bool
		if f.ID == nil {
			id, ok = validUTF8(key.String()), key.Exists() && key.String() != ""
		} else {
			id, ok = lookupID(node, f.ID)
		}
		if !ok {
			out.Skipped++
			return true
		}

		model, _ := Lookup(node, f.Model)
		domain, _ := Lookup(node, f.Domain)
		site, _ := Lookup(node, f.Site)
		base, _ := Lookup(node, f.Base)

		out.Nodes = append(out.Nodes, CanonicalNode{
			ID:     id,
			Base:   base,
			Model:  NormalizeModel(model),
			Domain: domain,
			Site:   site,
		})
		return true
	})

	return out
}

// Lookup walks path inside node and returns the value when it exists and is
// a JSON string. Any other outcome reports false.
func Lookup(node gjson.Result, path KeyPath) (string, bool) {
	if len(path) == 0 || !node.IsObject() {
		return "", false
	}

	v := node.Get(gjsonPath(path))
	if !v.Exists() || v.Type != gjson.String {
		return "", false
	}
	return validUTF8(v.Str), true
}

// lookupID resolves a node id. Numeric ids keep their JSON spelling.
func lookupID(node gjson.Result, path KeyPath) (string, bool) {
	if id, ok := Lookup(node, path); ok {
		return id, id != ""
	}
	if len(path) == 0 || !node.IsObject() {
		return "", false
	}
	v := node.Get(gjsonPath(path))
	if v.Type != gjson.Number {
		return "", false
	}
	return v.Raw, true
}

// validUTF8 replaces invalid byte sequences, which gjson passes through
// unchanged, with U+FFFD
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

const gjsonSpecial = `\.*?|#@!=<>%:`

func gjsonPath(path KeyPath) string {
	parts := make([]string, len(path))
	for i, key := range path {
		var b strings.Builder
		for _, r := range key {
			if strings.ContainsRune(gjsonSpecial, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, ".")
}

// Package jsonschema exports review field trees as OpenAPI-flavoured JSON
// Schema, so an edited v4 schema can be copied back into a document.
package jsonschema

import (
	"sort"

	"github.com/reoring/apireview"
)

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	Ref         string `json:"$ref,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Nullable    bool   `json:"nullable,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// Object
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
}

// RefPrefix is prepended to ref targets.
const RefPrefix = "#/components/schemas/"

// FromField converts n. Properties are keyed by display name, so renames
// made during review show up in the export. A nil node yields nil.
func FromField(n *apireview.FieldNode) *Schema {
	if n == nil {
		return nil
	}
	out := &Schema{Description: n.Description, Nullable: n.Nullable}
	switch n.Kind {
	case apireview.KindRef:
		out.Ref = RefPrefix + n.RefTarget
	case apireview.KindPrimitive:
		out.Type = typeName(n.BaseType)
	case apireview.KindEnum:
		out.Type = typeName(n.BaseType)
		out.Enum = make([]any, 0, len(n.EnumValues))
		for _, v := range n.EnumValues {
			out.Enum = append(out.Enum, v)
		}
	case apireview.KindObject:
		out.Type = "object"
		out.Properties = make(map[string]*Schema, len(n.Children))
		for _, c := range n.Children {
			name := c.Label()
			out.Properties[name] = FromField(c)
			if c.Required {
				out.Required = append(out.Required, name)
			}
		}
		// Required list sorted for deterministic output
		sort.Strings(out.Required)
	case apireview.KindArray:
		out.Type = "array"
		out.Items = FromField(n.Items)
		if out.Items == nil {
			out.Items = &Schema{}
		}
	case apireview.KindUnion:
		for _, v := range n.Variants {
			out.OneOf = append(out.OneOf, FromField(v))
		}
	case apireview.KindAny, apireview.KindInvalid:
	}
	return out
}

// Components exports every named schema of spec, keyed by name.
func Components(spec *apireview.ReviewSpec) map[string]*Schema {
	out := map[string]*Schema{}
	if spec == nil {
		return out
	}
	for name, s := range spec.Schemas.All() {
		out[name] = FromField(s.Root)
	}
	return out
}

func typeName(base string) string {
	if base == "unknown" {
		return ""
	}
	return base
}

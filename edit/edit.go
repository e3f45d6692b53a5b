// Package edit implements structural edits over a ReviewSpec.
//
// Every operation is a pure function from a spec to a spec. The field is
// located by id anywhere in the spec (parameters, request and response
// schemas, named schema roots, and below them through children, items and
// variants). Only the nodes on the path from the root to the edited node are
// rebuilt; every other subtree is shared with the input.
//
// When the id is not found, or the operation does not apply to the node's
// kind, the input spec is returned unchanged, so callers can test for a no-op
// with ==.
package edit

import (
	"slices"

	"github.com/google/uuid"

	"github.com/reoring/apireview"
)

// Update replaces the node with the given id by fn(node). fn must not modify
// its argument; returning the argument itself leaves the spec unchanged.
func Update(spec *apireview.ReviewSpec, id string, fn func(*apireview.FieldNode) *apireview.FieldNode) *apireview.ReviewSpec {
	w := &rewriter{id: id, apply: fn}
	return w.spec(spec)
}

// RenameField sets the display name. The original name is kept.
func RenameField(spec *apireview.ReviewSpec, id, newName string) *apireview.ReviewSpec {
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		c := n.Clone()
		c.DisplayName = newName
		return c
	})
}

// ChangeFieldType turns the node into a primitive of the given type. Any
// enum values, properties, items, variants or ref target are discarded.
func ChangeFieldType(spec *apireview.ReviewSpec, id, newType string) *apireview.ReviewSpec {
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		c := n.Clone()
		c.Kind = apireview.KindPrimitive
		c.BaseType = newType
		c.EnumValues = nil
		c.Children = nil
		c.Items = nil
		c.Variants = nil
		c.RefTarget = ""
		return apireview.WithSummary(c)
	})
}

func ToggleRequired(spec *apireview.ReviewSpec, id string) *apireview.ReviewSpec {
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		c := n.Clone()
		c.Required = !c.Required
		return c
	})
}

func ToggleNullable(spec *apireview.ReviewSpec, id string) *apireview.ReviewSpec {
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		c := n.Clone()
		c.Nullable = !c.Nullable
		return apireview.WithSummary(c)
	})
}

// ChangeRefTarget points a ref node at another named schema. Non-ref nodes
// are left alone.
func ChangeRefTarget(spec *apireview.ReviewSpec, id, target string) *apireview.ReviewSpec {
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		if n.Kind != apireview.KindRef {
			return n
		}
		c := n.Clone()
		c.RefTarget = target
		return apireview.WithSummary(c)
	})
}

// AddEnumValue appends value to an enum node. Duplicates are allowed.
func AddEnumValue(spec *apireview.ReviewSpec, id, value string) *apireview.ReviewSpec {
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		if n.Kind != apireview.KindEnum {
			return n
		}
		c := n.Clone()
		c.EnumValues = append(slices.Clip(n.EnumValues), value)
		return c
	})
}

// RemoveEnumValue drops every occurrence of value from an enum node.
func RemoveEnumValue(spec *apireview.ReviewSpec, id, value string) *apireview.ReviewSpec {
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		if n.Kind != apireview.KindEnum || !slices.Contains(n.EnumValues, value) {
			return n
		}
		c := n.Clone()
		c.EnumValues = slices.DeleteFunc(slices.Clone(n.EnumValues), func(v string) bool { return v == value })
		return c
	})
}

// AddObjectProperty appends prop to the children of an object node. A
// property without a location takes the parent's.
func AddObjectProperty(spec *apireview.ReviewSpec, parentID string, prop *apireview.FieldNode) *apireview.ReviewSpec {
	if prop == nil {
		return spec
	}
	return Update(spec, parentID, func(n *apireview.FieldNode) *apireview.FieldNode {
		if n.Kind != apireview.KindObject {
			return n
		}
		p := prop
		if p.Location == "" {
			p = p.Clone()
			p.Location = n.Location
		}
		c := n.Clone()
		c.Children = append(slices.Clip(n.Children), p)
		return c
	})
}

// AddField is AddObjectProperty.
func AddField(spec *apireview.ReviewSpec, parentID string, field *apireview.FieldNode) *apireview.ReviewSpec {
	return AddObjectProperty(spec, parentID, field)
}

// RemoveObjectProperty removes the children of an object node whose original
// name is name.
func RemoveObjectProperty(spec *apireview.ReviewSpec, parentID, name string) *apireview.ReviewSpec {
	return Update(spec, parentID, func(n *apireview.FieldNode) *apireview.FieldNode {
		if n.Kind != apireview.KindObject {
			return n
		}
		has := func(c *apireview.FieldNode) bool { return c != nil && c.Name == name }
		if !slices.ContainsFunc(n.Children, has) {
			return n
		}
		c := n.Clone()
		c.Children = slices.DeleteFunc(slices.Clone(n.Children), has)
		return c
	})
}

// AddUnionVariant appends variant to a union node.
func AddUnionVariant(spec *apireview.ReviewSpec, id string, variant *apireview.FieldNode) *apireview.ReviewSpec {
	if variant == nil {
		return spec
	}
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		if n.Kind != apireview.KindUnion {
			return n
		}
		c := n.Clone()
		c.Variants = append(slices.Clip(n.Variants), variant)
		return apireview.WithSummary(c)
	})
}

// RemoveUnionVariant removes the variant at index. The node stays a union
// even when fewer than two variants remain.
func RemoveUnionVariant(spec *apireview.ReviewSpec, id string, index int) *apireview.ReviewSpec {
	return Update(spec, id, func(n *apireview.FieldNode) *apireview.FieldNode {
		if n.Kind != apireview.KindUnion || index < 0 || index >= len(n.Variants) {
			return n
		}
		c := n.Clone()
		c.Variants = slices.Delete(slices.Clone(n.Variants), index, index+1)
		return apireview.WithSummary(c)
	})
}

// DeleteField removes the node with the given id from the list that holds
// it: a route's parameters, an object's children or a union's variants.
// Request and response schemas, array items and named schema roots cannot
// be deleted this way.
func DeleteField(spec *apireview.ReviewSpec, id string) *apireview.ReviewSpec {
	w := &rewriter{id: id}
	return w.spec(spec)
}

// NewField returns a fresh primitive node for use with AddField. Its id is
// random and cannot collide with ids assigned at load time.
func NewField(name, baseType string) *apireview.FieldNode {
	n := &apireview.FieldNode{
		ID:          "field-" + uuid.NewString(),
		Name:        name,
		DisplayName: name,
		Kind:        apireview.KindPrimitive,
		BaseType:    baseType,
	}
	n.TypeSummary = apireview.Summarize(n)
	return n
}

// NewRefField returns a fresh ref node pointing at the named schema.
func NewRefField(name, target string) *apireview.FieldNode {
	n := &apireview.FieldNode{
		ID:          "field-" + uuid.NewString(),
		Name:        name,
		DisplayName: name,
		Kind:        apireview.KindRef,
		RefTarget:   target,
	}
	n.TypeSummary = apireview.Summarize(n)
	return n
}

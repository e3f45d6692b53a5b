package openapi

import (
	"fmt"
	"strconv"

	"github.com/reoring/apireview"
)

// normalizer turns dereferenced schema objects into field trees. Every step
// carries the matching node of the raw (non-dereferenced) document, because
// only the raw tree still knows which schemas were written as a bare $ref.
type normalizer struct {
	raw *Object
	// names maps a dereferenced component schema to its name; used when a
	// traversal runs into a cycle that was not written as a bare $ref.
	names map[*Object]string
	// active holds the dereferenced objects on the current descent path.
	active map[*Object]bool
	diag   *simpleDiag
}

type fieldSpec struct {
	name     string
	required bool
	loc      apireview.FieldLocation
	ptr      string
	nullable bool // forced by a collapsed "T | null" union
	// description of a collapsed union, used when the member has none
	description string
}

func (n *normalizer) field(schema, raw any, fs fieldSpec) *apireview.FieldNode {
	s, _ := schema.(*Object)
	r, _ := raw.(*Object)

	if r.IsBareRef() {
		ref, _ := r.Ref()
		return n.refNode(refName(ref), fs)
	}
	if s == nil {
		return n.finish(&apireview.FieldNode{Kind: apireview.KindAny}, fs)
	}
	if n.active[s] {
		// Cycle reached through an inlined (non-bare) reference.
		if name, ok := n.names[s]; ok {
			return n.refNode(name, fs)
		}
		n.diag.warnf("cyclic schema at %s rendered as any", fs.ptr)
		return n.finish(&apireview.FieldNode{Kind: apireview.KindAny}, fs)
	}
	n.active[s] = true
	defer delete(n.active, s)

	r = n.rawView(r)

	if c, ok := n.collapse(s, r); ok {
		fs.nullable = fs.nullable || c.nullable
		if fs.description == "" {
			fs.description = s.Str("description")
		}
		return n.field(c.schema, c.raw, fs)
	}

	node := &apireview.FieldNode{
		Kind:        classify(s, r),
		Nullable:    isNullable(s),
		Description: s.Str("description"),
	}
	switch node.Kind {
	case apireview.KindEnum:
		node.EnumValues = enumValues(s.List("enum"))
		node.BaseType = primitiveName(schemaType(s))
	case apireview.KindObject:
		node.Children = n.properties(s, r, fs)
	case apireview.KindArray:
		if items, ok := s.Get("items"); ok {
			rawItems, _ := r.Get("items")
			node.Items = n.field(items, rawItems, fieldSpec{
				name: "items",
				loc:  fs.loc,
				ptr:  fs.ptr + "/items",
			})
		}
	case apireview.KindUnion:
		node.Variants = n.variants(s, r, fs)
	case apireview.KindPrimitive:
		node.BaseType = primitiveName(schemaType(s))
	case apireview.KindAny, apireview.KindRef, apireview.KindInvalid:
	}
	return n.finish(node, fs)
}

func (n *normalizer) refNode(target string, fs fieldSpec) *apireview.FieldNode {
	return n.finish(&apireview.FieldNode{Kind: apireview.KindRef, RefTarget: target}, fs)
}

// finish stamps identity and provenance and derives the summary. It runs
// after all children are built.
func (n *normalizer) finish(node *apireview.FieldNode, fs fieldSpec) *apireview.FieldNode {
	node.ID = apireview.NextID(fs.name)
	node.Name = fs.name
	node.DisplayName = fs.name
	node.Required = fs.required
	node.Nullable = node.Nullable || fs.nullable
	if node.Description == "" {
		node.Description = fs.description
	}
	node.Location = fs.loc
	node.JSONPointer = fs.ptr
	node.TypeSummary = apireview.Summarize(node)
	return node
}

// rawView returns the raw node whose children line up with the dereferenced
// node. A $ref with siblings was inlined by dereferencing, so its children
// live under the raw target.
func (n *normalizer) rawView(r *Object) *Object {
	for i := 0; r != nil && i < 8; i++ {
		ref, ok := r.Ref()
		if !ok {
			return r
		}
		ptr, local := localPointer(ref)
		if !local {
			return nil
		}
		v, found := lookupPointer(n.raw, ptr)
		if !found {
			return nil
		}
		r, _ = v.(*Object)
	}
	return r
}

func (n *normalizer) properties(s, r *Object, fs fieldSpec) []*apireview.FieldNode {
	props := s.Obj("properties")
	rawProps := r.Obj("properties")
	required := map[string]bool{}
	for _, v := range s.List("required") {
		if name, ok := v.(string); ok {
			required[name] = true
		}
	}
	children := make([]*apireview.FieldNode, 0, props.Len())
	for _, name := range props.Keys() {
		ps, _ := props.Get(name)
		rps, _ := rawProps.Get(name)
		children = append(children, n.field(ps, rps, fieldSpec{
			name:     name,
			required: required[name],
			loc:      fs.loc,
			ptr:      fs.ptr + "/properties/" + escapePointer(name),
		}))
	}
	return children
}

func (n *normalizer) variants(s, r *Object, fs fieldSpec) []*apireview.FieldNode {
	keyword, resolved, raws := unionLists(s, r)
	out := make([]*apireview.FieldNode, 0, len(resolved))
	for i, v := range resolved {
		var rv any
		if i < len(raws) {
			rv = raws[i]
		}
		out = append(out, n.field(v, rv, fieldSpec{
			name: keyword + "[" + strconv.Itoa(i) + "]",
			loc:  fs.loc,
			ptr:  fs.ptr + "/" + keyword + "/" + strconv.Itoa(i),
		}))
	}
	return out
}

type collapsed struct {
	schema   any
	raw      any
	nullable bool
}

// collapse reduces a oneOf/anyOf with fewer than two non-null members to its
// single member: {anyOf: [T, {type: null}]} becomes a nullable T. Unions with
// two or more non-null members are left to classify.
func (n *normalizer) collapse(s, r *Object) (collapsed, bool) {
	_, resolved, raws := unionLists(s, r)
	if resolved == nil {
		return collapsed{}, false
	}
	var members []int
	hasNull := false
	for i, v := range resolved {
		var rv any
		if i < len(raws) {
			rv = raws[i]
		}
		if isNullVariant(v, rv) {
			hasNull = true
			continue
		}
		members = append(members, i)
	}
	if len(members) != 1 {
		return collapsed{}, false
	}
	i := members[0]
	var rv any
	if i < len(raws) {
		rv = raws[i]
	}
	return collapsed{schema: resolved[i], raw: rv, nullable: hasNull || isNullable(s)}, true
}

// unionLists returns the union keyword and the dereferenced and raw member
// lists. oneOf wins over anyOf; the raw list is preferred for choosing the
// keyword so ref detection lines up with the members.
func unionLists(s, r *Object) (string, []any, []any) {
	keyword := ""
	switch {
	case r.Has("oneOf"):
		keyword = "oneOf"
	case r.Has("anyOf"):
		keyword = "anyOf"
	case s.Has("oneOf"):
		keyword = "oneOf"
	case s.Has("anyOf"):
		keyword = "anyOf"
	default:
		return "", nil, nil
	}
	return keyword, s.List(keyword), r.List(keyword)
}

func isNullVariant(v, raw any) bool {
	if ro, ok := raw.(*Object); ok {
		if _, isRef := ro.Ref(); isRef {
			return false
		}
	}
	o, _ := v.(*Object)
	t, _ := typeInfo(o)
	return t == "null"
}

// classify picks the kind by precedence: union, enum, object, array,
// primitive, any.
func classify(s, r *Object) apireview.TypeKind {
	if _, resolved, raws := unionLists(s, r); resolved != nil {
		nonNull := 0
		for i, v := range resolved {
			var rv any
			if i < len(raws) {
				rv = raws[i]
			}
			if !isNullVariant(v, rv) {
				nonNull++
			}
		}
		if nonNull >= 2 {
			return apireview.KindUnion
		}
	}
	if s.Has("enum") {
		return apireview.KindEnum
	}
	t := schemaType(s)
	if t == "object" || s.Has("properties") {
		return apireview.KindObject
	}
	if t == "array" {
		return apireview.KindArray
	}
	switch t {
	case "string", "number", "integer", "boolean":
		return apireview.KindPrimitive
	case "":
		if !s.Has("items") {
			return apireview.KindAny
		}
	}
	return apireview.KindPrimitive
}

// typeInfo reads "type", accepting the 3.1 list form. It returns the first
// non-null type and whether "null" was listed.
func typeInfo(s *Object) (string, bool) {
	v, _ := s.Get("type")
	switch t := v.(type) {
	case string:
		return t, t == "null"
	case []any:
		first, hasNull := "", false
		for _, it := range t {
			name, _ := it.(string)
			if name == "null" {
				hasNull = true
				continue
			}
			if first == "" {
				first = name
			}
		}
		if first == "" && hasNull {
			return "null", true
		}
		return first, hasNull
	}
	return "", false
}

func schemaType(s *Object) string {
	t, _ := typeInfo(s)
	return t
}

func isNullable(s *Object) bool {
	if b, ok := s.Bool("nullable"); ok && b {
		return true
	}
	t, hasNull := typeInfo(s)
	return hasNull && t != "null"
}

// primitiveName maps schema types to display names: integer reads as
// number, a missing type as unknown.
func primitiveName(t string) string {
	switch t {
	case "":
		return "unknown"
	case "integer":
		return "number"
	default:
		return t
	}
}

func enumValues(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			out = append(out, "null")
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}

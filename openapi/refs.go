package openapi

import (
	"fmt"
)

// Dereferencer produces a fully inlined document from source text.
type Dereferencer interface {
	Dereference(text []byte) (*Object, error)
}

// RefError reports a $ref that cannot be resolved.
type RefError struct {
	Ref     string
	Pointer string // where the $ref was found
	Reason  string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("openapi: cannot resolve $ref %q at %s: %s", e.Ref, orRoot(e.Pointer), e.Reason)
}

func orRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// LocalDereferencer resolves document-local $refs ("#/..."). Every object
// reachable through a pointer is built once and shared, so cyclic schemas
// become cyclic pointer graphs instead of infinite trees. A $ref with
// sibling keys is merged over its target, siblings winning.
type LocalDereferencer struct{}

func (LocalDereferencer) Dereference(text []byte) (*Object, error) {
	doc, err := ReadDocument(text)
	if err != nil {
		return nil, err
	}
	return DereferenceObject(doc)
}

// DereferenceObject returns an inlined copy of doc. doc itself is not changed.
func DereferenceObject(doc *Object) (*Object, error) {
	r := &refResolver{
		root:     doc,
		memo:     map[string]*Object{},
		filling:  map[string]bool{},
		aliasing: map[string]bool{},
	}
	out, err := r.value(doc, "")
	if err != nil {
		return nil, err
	}
	o, _ := out.(*Object)
	return o, nil
}

type refResolver struct {
	root *Object
	// memo maps a JSON pointer to the output object built for it.
	memo     map[string]*Object
	filling  map[string]bool
	aliasing map[string]bool
}

func (r *refResolver) value(v any, ptr string) (any, error) {
	switch t := v.(type) {
	case *Object:
		if ref, ok := t.Ref(); ok {
			return r.refValue(t, ref, ptr)
		}
		if o, ok := r.memo[ptr]; ok {
			return o, nil
		}
		out := NewObject(t.Len())
		r.memo[ptr] = out
		r.filling[ptr] = true
		defer delete(r.filling, ptr)
		for _, k := range t.keys {
			cv, err := r.value(t.vals[k], ptr+"/"+escapePointer(k))
			if err != nil {
				return nil, err
			}
			out.Set(k, cv)
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i := range t {
			cv, err := r.value(t[i], ptr+"/"+fmt.Sprint(i))
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	default:
		return v, nil
	}
}

func (r *refResolver) refValue(t *Object, ref, at string) (any, error) {
	target, err := r.resolve(ref, at)
	if err != nil {
		return nil, err
	}
	if t.Len() == 1 {
		return target, nil
	}
	tp, _ := localPointer(ref)
	if r.filling[tp] {
		// target is still being built and its keys cannot be copied yet;
		// siblings are dropped
		return target, nil
	}
	merged := NewObject(target.Len() + t.Len())
	for _, k := range target.keys {
		merged.Set(k, target.vals[k])
	}
	for _, k := range t.keys {
		if k == "$ref" {
			continue
		}
		cv, err := r.value(t.vals[k], at+"/"+escapePointer(k))
		if err != nil {
			return nil, err
		}
		merged.Set(k, cv)
	}
	return merged, nil
}

func (r *refResolver) resolve(ref, at string) (*Object, error) {
	ptr, ok := localPointer(ref)
	if !ok {
		return nil, &RefError{Ref: ref, Pointer: at, Reason: "only document-local references are supported"}
	}
	if o, ok := r.memo[ptr]; ok {
		return o, nil
	}
	raw, ok := lookupPointer(r.root, ptr)
	if !ok {
		return nil, &RefError{Ref: ref, Pointer: at, Reason: "target not found"}
	}
	obj, ok := raw.(*Object)
	if !ok {
		return nil, &RefError{Ref: ref, Pointer: at, Reason: "target is not an object"}
	}
	if inner, isRef := obj.Ref(); isRef && obj.Len() == 1 {
		// alias: A is just {$ref: B}
		if r.aliasing[ptr] {
			return nil, &RefError{Ref: ref, Pointer: at, Reason: "circular alias"}
		}
		r.aliasing[ptr] = true
		defer delete(r.aliasing, ptr)
		o, err := r.resolve(inner, ptr)
		if err != nil {
			return nil, err
		}
		r.memo[ptr] = o
		return o, nil
	}
	v, err := r.value(obj, ptr)
	if err != nil {
		return nil, err
	}
	o, _ := v.(*Object)
	return o, nil
}

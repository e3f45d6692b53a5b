package openapi

// Object is a JSON-like mapping that keeps key order. Documents read by
// ReadDocument are trees of *Object, []any and scalars (string, int64,
// float64, bool, nil). Order matters: routes, properties, responses and named
// schemas are all presented in document order.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject returns an empty Object with room for n keys.
func NewObject(n int) *Object {
	return &Object{keys: make([]string, 0, n), vals: make(map[string]any, n)}
}

// Set adds or replaces a key. New keys are appended to the key order.
func (o *Object) Set(k string, v any) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

// Get returns the value stored under k.
func (o *Object) Get(k string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[k]
	return v, ok
}

// Has reports whether k is present.
func (o *Object) Has(k string) bool {
	_, ok := o.Get(k)
	return ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Obj returns the child object under k, or nil.
func (o *Object) Obj(k string) *Object {
	v, _ := o.Get(k)
	m, _ := v.(*Object)
	return m
}

// Str returns the string under k, or "".
func (o *Object) Str(k string) string {
	v, _ := o.Get(k)
	s, _ := v.(string)
	return s
}

// Bool returns the boolean under k and whether it was a boolean.
func (o *Object) Bool(k string) (bool, bool) {
	v, _ := o.Get(k)
	b, ok := v.(bool)
	return b, ok
}

// List returns the sequence under k, or nil.
func (o *Object) List(k string) []any {
	v, _ := o.Get(k)
	l, _ := v.([]any)
	return l
}

// Ref returns the $ref string of o, if any.
func (o *Object) Ref() (string, bool) {
	v, ok := o.Get("$ref")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IsBareRef reports whether o is a single-key {"$ref": ...} object. Only bare
// refs are rendered as references; refs with siblings are treated as inlined.
func (o *Object) IsBareRef() bool {
	_, ok := o.Ref()
	return ok && o.Len() == 1
}

// ToAny converts the tree rooted at v into plain map[string]any values.
// Key order is lost.
func ToAny(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = ToAny(t.vals[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = ToAny(t[i])
		}
		return out
	default:
		return v
	}
}

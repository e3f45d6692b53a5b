package apireview

import "fmt"

// TypeKind is the closed set of node kinds. Every consumer switches over all
// kinds explicitly; KindInvalid only appears on zero values.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindPrimitive
	KindEnum
	KindObject
	KindArray
	KindUnion
	KindRef
	KindAny
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindPrimitive: "primitive",
	KindEnum:      "enum",
	KindObject:    "object",
	KindArray:     "array",
	KindUnion:     "union",
	KindRef:       "ref",
	KindAny:       "any",
}

func (k TypeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("TypeKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseTypeKind maps a kind name back to its TypeKind.
func ParseTypeKind(s string) (TypeKind, bool) {
	for i, n := range kindNames {
		if n == s && TypeKind(i) != KindInvalid {
			return TypeKind(i), true
		}
	}
	return KindInvalid, false
}

func (k TypeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TypeKind) UnmarshalText(b []byte) error {
	v, ok := ParseTypeKind(string(b))
	if !ok {
		return fmt.Errorf("apireview: unknown type kind %q", string(b))
	}
	*k = v
	return nil
}

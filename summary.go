package apireview

import "strings"

// Summarize renders the compact type string for n, e.g. "string",
// "ActOptions", "array<Action>", "string | Action", "string (enum)".
// Nullable nodes get a trailing "?" after the whole base string, so a nullable
// union reads "string | Action?".
//
// Ref nodes render their target name and are never resolved, so Summarize
// terminates on cyclic schema graphs.
func Summarize(n *FieldNode) string {
	if n == nil {
		return "unknown"
	}
	var base string
	switch n.Kind {
	case KindPrimitive:
		base = orDefault(n.BaseType, "unknown")
	case KindRef:
		base = orDefault(n.RefTarget, "unknown")
	case KindArray:
		inner := "unknown"
		if n.Items != nil {
			inner = Summarize(n.Items)
		}
		base = "array<" + inner + ">"
	case KindUnion:
		parts := make([]string, 0, len(n.Variants))
		for _, v := range n.Variants {
			parts = append(parts, Summarize(v))
		}
		base = strings.Join(parts, " | ")
	case KindEnum:
		base = orDefault(n.BaseType, "string") + " (enum)"
	case KindObject:
		base = "object"
	case KindAny:
		base = "any"
	case KindInvalid:
		base = "unknown"
	default:
		base = "unknown"
	}
	if n.Nullable {
		base += "?"
	}
	return base
}

// WithSummary returns a copy of n whose TypeSummary is recomputed.
func WithSummary(n *FieldNode) *FieldNode {
	c := n.Clone()
	c.TypeSummary = Summarize(c)
	return c
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package openapi

import (
	"strconv"
	"strings"
)

// escapePointer escapes a JSON Pointer reference token per RFC 6901.
func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}

// refName returns the last segment of a $ref, e.g. "Action" for
// "#/components/schemas/Action".
func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return unescapePointer(ref[i+1:])
	}
	return ref
}

// lookupPointer resolves a document-local pointer ("/a/b/0", "" for the root)
// against root.
func lookupPointer(root *Object, ptr string) (any, bool) {
	if ptr == "" {
		return root, true
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, false
	}
	var cur any = root
	for _, tok := range strings.Split(ptr[1:], "/") {
		tok = unescapePointer(tok)
		switch t := cur.(type) {
		case *Object:
			v, ok := t.Get(tok)
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// localPointer strips the "#" of a document-local ref. Refs into other
// documents are reported as not local.
func localPointer(ref string) (string, bool) {
	if !strings.HasPrefix(ref, "#") {
		return "", false
	}
	return ref[1:], true
}

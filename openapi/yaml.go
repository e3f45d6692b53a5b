package openapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// ErrEmptyDocument is returned when the input holds no document.
var ErrEmptyDocument = errors.New("openapi: empty document")

// ErrExcessiveAliasing is returned when alias expansion makes up most of a
// large document, which only happens with nested anchor bombs.
var ErrExcessiveAliasing = errors.New("openapi: document contains excessive aliasing")

// ErrNotMapping is returned when the document root is not a mapping.
var ErrNotMapping = errors.New("openapi: document root is not a mapping")

// ReadDocument decodes a YAML or JSON document (JSON is valid YAML) into an
// ordered *Object tree. Duplicate keys are rejected with their positions.
// Only the first document of a multi-document stream is read.
func ReadDocument(data []byte) (*Object, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}
	r := &nodeReader{}
	v, err := r.value(&root)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrEmptyDocument
	}
	o, ok := v.(*Object)
	if !ok {
		return nil, ErrNotMapping
	}
	return o, nil
}

// nodeReader converts a node tree, counting every produced value so alias
// expansion stays within the ratio yaml.v3 itself allows when decoding.
type nodeReader struct {
	decodes      int
	aliasDecodes int
	aliasDepth   int
}

func (r *nodeReader) count() error {
	r.decodes++
	if r.aliasDepth > 0 {
		r.aliasDecodes++
	}
	if r.aliasDecodes > 100 && r.decodes > 1000 &&
		float64(r.aliasDecodes)/float64(r.decodes) > allowedAliasRatio(r.decodes) {
		return ErrExcessiveAliasing
	}
	return nil
}

// allowedAliasRatio mirrors yaml.v3: small documents may be almost all
// aliases, large ones only a tenth.
func allowedAliasRatio(decodes int) float64 {
	const (
		lo, hi           = 400_000, 4_000_000
		loRatio, hiRatio = 0.99, 0.10
	)
	switch {
	case decodes <= lo:
		return loRatio
	case decodes >= hi:
		return hiRatio
	}
	return loRatio - (loRatio-hiRatio)*float64(decodes-lo)/float64(hi-lo)
}

func (r *nodeReader) value(n *yaml.Node) (any, error) {
	if err := r.count(); err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return r.value(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		r.aliasDepth++
		defer func() { r.aliasDepth-- }()
		return r.value(n.Alias)
	case yaml.MappingNode:
		m := NewObject(len(n.Content) / 2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			// merge keys (<<: *anchor) splice the aliased mapping in place
			if k.Tag == "!!merge" {
				if err := r.mergeInto(m, v); err != nil {
					return nil, err
				}
				continue
			}
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			val, err := r.value(v)
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := r.value(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarValue(n), nil
	default:
		return nil, nil
	}
}

func (r *nodeReader) mergeInto(dst *Object, v *yaml.Node) error {
	src, err := r.value(v)
	if err != nil {
		return err
	}
	switch t := src.(type) {
	case *Object:
		for _, k := range t.keys {
			if !dst.Has(k) {
				dst.Set(k, t.vals[k])
			}
		}
	case []any:
		for _, it := range t {
			if o, ok := it.(*Object); ok {
				for _, k := range o.keys {
					if !dst.Has(k) {
						dst.Set(k, o.vals[k])
					}
				}
			}
		}
	}
	return nil
}

func scalarValue(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!str":
		return n.Value
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
		return n.Value
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
		return n.Value
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
		return n.Value
	default:
		return n.Value
	}
}

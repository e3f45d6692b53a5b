package apireview

import "iter"

// SchemaTable maps schema names to schemas and remembers document order.
// A table is never mutated after construction; With returns a new table that
// shares every other entry.
type SchemaTable struct {
	names  []string
	byName map[string]*Schema
}

// NewSchemaTable builds a table from schemas in the given order. Later
// duplicates replace earlier ones in place.
func NewSchemaTable(schemas ...*Schema) *SchemaTable {
	t := &SchemaTable{byName: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		if s == nil {
			continue
		}
		if _, dup := t.byName[s.Name]; !dup {
			t.names = append(t.names, s.Name)
		}
		t.byName[s.Name] = s
	}
	return t
}

// Len returns the number of schemas.
func (t *SchemaTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Get looks up a schema by name.
func (t *SchemaTable) Get(name string) (*Schema, bool) {
	if t == nil {
		return nil, false
	}
	s, ok := t.byName[name]
	return s, ok
}

// Names returns schema names in document order.
func (t *SchemaTable) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

// All iterates schemas in document order.
func (t *SchemaTable) All() iter.Seq2[string, *Schema] {
	return func(yield func(string, *Schema) bool) {
		if t == nil {
			return
		}
		for _, n := range t.names {
			if !yield(n, t.byName[n]) {
				return
			}
		}
	}
}

// With returns a table where name maps to s. The receiver is unchanged.
func (t *SchemaTable) With(name string, s *Schema) *SchemaTable {
	out := &SchemaTable{byName: make(map[string]*Schema, t.Len()+1)}
	if t != nil {
		out.names = append(make([]string, 0, len(t.names)+1), t.names...)
		for k, v := range t.byName {
			out.byName[k] = v
		}
	}
	if _, ok := out.byName[name]; !ok {
		out.names = append(out.names, name)
	}
	out.byName[name] = s
	return out
}

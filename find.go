package apireview

// Walk visits every field node of spec depth-first in a fixed order: each
// route's parameters, request body schema and response schemas, then every
// named schema root in document order. Descent covers Children, Items and
// Variants. Returning false from fn stops the walk.
func Walk(spec *ReviewSpec, fn func(n *FieldNode) bool) {
	if spec == nil {
		return
	}
	for _, root := range Roots(spec) {
		if !walkNode(root, fn) {
			return
		}
	}
}

// Roots lists the tree roots of spec in Walk order.
func Roots(spec *ReviewSpec) []*FieldNode {
	if spec == nil {
		return nil
	}
	var out []*FieldNode
	for _, r := range spec.Routes {
		out = append(out, r.Parameters...)
		if r.RequestBody != nil && r.RequestBody.Schema != nil {
			out = append(out, r.RequestBody.Schema)
		}
		for _, resp := range r.Responses {
			if resp.Schema != nil {
				out = append(out, resp.Schema)
			}
		}
	}
	for _, s := range spec.Schemas.All() {
		if s != nil && s.Root != nil {
			out = append(out, s.Root)
		}
	}
	return out
}

func walkNode(n *FieldNode, fn func(*FieldNode) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !walkNode(c, fn) {
			return false
		}
	}
	if !walkNode(n.Items, fn) {
		return false
	}
	for _, v := range n.Variants {
		if !walkNode(v, fn) {
			return false
		}
	}
	return true
}

// FindField searches the whole spec for the node with the given id.
func FindField(spec *ReviewSpec, id string) (*FieldNode, bool) {
	var found *FieldNode
	Walk(spec, func(n *FieldNode) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Route returns the route with the given operation id.
func (s *ReviewSpec) Route(operationID string) (*Route, bool) {
	if s == nil {
		return nil, false
	}
	for _, r := range s.Routes {
		if r.OperationID == operationID {
			return r, true
		}
	}
	return nil, false
}

// Schema returns the named schema.
func (s *ReviewSpec) Schema(name string) (*Schema, bool) {
	if s == nil {
		return nil, false
	}
	return s.Schemas.Get(name)
}

// ResolveRef follows a chain of ref nodes through the named-schema table and
// returns the first non-ref node. The chain stops at a missing target or at a
// name already visited, returning the last node reached.
func (s *ReviewSpec) ResolveRef(n *FieldNode) *FieldNode {
	cur := n
	seen := map[string]struct{}{}
	for cur != nil && cur.Kind == KindRef && cur.RefTarget != "" {
		if _, ok := seen[cur.RefTarget]; ok {
			break
		}
		seen[cur.RefTarget] = struct{}{}
		next, ok := s.Schema(cur.RefTarget)
		if !ok || next.Root == nil {
			break
		}
		cur = next.Root
	}
	return cur
}

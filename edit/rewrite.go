package edit

import (
	"slices"

	"github.com/reoring/apireview"
)

// rewriter performs one copy-on-write pass over a spec. It stops at the
// first match: ids are unique, so nothing after it can change.
//
// Every node on the path from a root to the match is cloned with its
// summary recomputed; everything off the path is returned by pointer.
type rewriter struct {
	id string
	// apply builds the replacement for the matched node. A nil apply removes
	// the match from its parent's list instead.
	apply func(*apireview.FieldNode) *apireview.FieldNode

	found   bool
	changed bool
}

func (w *rewriter) spec(s *apireview.ReviewSpec) *apireview.ReviewSpec {
	if s == nil || w.id == "" {
		return s
	}
	routes := s.Routes
	for i, r := range s.Routes {
		if nr := w.route(r); nr != r {
			routes = slices.Clone(s.Routes)
			routes[i] = nr
		}
		if w.found {
			break
		}
	}
	schemas := s.Schemas
	if !w.found {
		for name, sc := range s.Schemas.All() {
			if sc == nil {
				continue
			}
			if root := w.node(sc.Root); root != sc.Root {
				schemas = s.Schemas.With(name, &apireview.Schema{Name: sc.Name, Root: root})
			}
			if w.found {
				break
			}
		}
	}
	if !w.changed {
		return s
	}
	out := *s
	out.Routes = routes
	out.Schemas = schemas
	return &out
}

func (w *rewriter) route(r *apireview.Route) *apireview.Route {
	params := w.list(r.Parameters)

	body := r.RequestBody
	if !w.found && body != nil {
		if sch := w.node(body.Schema); sch != body.Schema {
			nb := *body
			nb.Schema = sch
			body = &nb
		}
	}

	resps := r.Responses
	for i, resp := range r.Responses {
		if w.found {
			break
		}
		if resp == nil {
			continue
		}
		if sch := w.node(resp.Schema); sch != resp.Schema {
			nr := *resp
			nr.Schema = sch
			resps = slices.Clone(r.Responses)
			resps[i] = &nr
		}
	}

	if sameList(params, r.Parameters) && body == r.RequestBody && sameList(resps, r.Responses) {
		return r
	}
	out := *r
	out.Parameters = params
	out.RequestBody = body
	out.Responses = resps
	return &out
}

func (w *rewriter) node(n *apireview.FieldNode) *apireview.FieldNode {
	if n == nil || w.found {
		return n
	}
	if w.apply != nil && n.ID == w.id {
		w.found = true
		out := w.apply(n)
		if out == nil || out == n {
			return n
		}
		w.changed = true
		return out
	}
	children := w.list(n.Children)
	items := w.node(n.Items)
	variants := w.list(n.Variants)
	if sameList(children, n.Children) && items == n.Items && sameList(variants, n.Variants) {
		return n
	}
	out := n.Clone()
	out.Children = children
	out.Items = items
	out.Variants = variants
	out.TypeSummary = apireview.Summarize(out)
	return out
}

// list rewrites a child or variant list. The returned slice is ns itself when
// nothing in it changed.
func (w *rewriter) list(ns []*apireview.FieldNode) []*apireview.FieldNode {
	for i, c := range ns {
		if w.found {
			break
		}
		if w.apply == nil && c != nil && c.ID == w.id {
			w.found, w.changed = true, true
			return slices.Delete(slices.Clone(ns), i, i+1)
		}
		if nc := w.node(c); nc != c {
			out := slices.Clone(ns)
			out[i] = nc
			return out
		}
	}
	return ns
}

func sameList[T any](a, b []*T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

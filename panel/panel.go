// Package panel holds the side panel's navigation state: the field being
// inspected and the breadcrumb trail that led to it.
//
// State values are immutable; every function returns a new State. Nodes are
// held by reference but identified by id, so after an edit replaces nodes the
// state must be passed through Rebase.
package panel

import (
	"slices"

	"github.com/reoring/apireview"
)

// Breadcrumb is one step of the navigation trail.
type Breadcrumb struct {
	Label string
	Field *apireview.FieldNode
}

// State is the side panel state. The zero value is a closed panel.
type State struct {
	Side        apireview.Side
	Current     *apireview.FieldNode
	Breadcrumbs []Breadcrumb
	Editable    bool
}

// IsOpen reports whether the panel shows a field.
func (s State) IsOpen() bool { return s.Current != nil }

// Open starts a new trail at field.
func Open(field *apireview.FieldNode, side apireview.Side) State {
	if field == nil {
		return State{}
	}
	return State{
		Side:        side,
		Current:     field,
		Breadcrumbs: []Breadcrumb{{Label: field.Name, Field: field}},
		Editable:    side.Editable(),
	}
}

// DrillDown pushes target onto the trail. Refs are not resolved; see
// DrillInto.
func DrillDown(s State, target *apireview.FieldNode) State {
	if target == nil || !s.IsOpen() {
		return s
	}
	out := s
	out.Current = target
	out.Breadcrumbs = append(slices.Clip(s.Breadcrumbs), Breadcrumb{Label: target.Name, Field: target})
	return out
}

// DrillInto is DrillDown that first follows a ref field to the root of the
// named schema it points at. An unresolvable ref is pushed as is.
func DrillInto(s State, spec *apireview.ReviewSpec, target *apireview.FieldNode) State {
	if target == nil {
		return s
	}
	resolved := spec.ResolveRef(target)
	if resolved == nil || resolved == target {
		return DrillDown(s, target)
	}
	out := DrillDown(s, resolved)
	out.Breadcrumbs[len(out.Breadcrumbs)-1].Label = target.RefTarget
	return out
}

// Back pops one breadcrumb. The first entry is never popped.
func Back(s State) State {
	if len(s.Breadcrumbs) <= 1 {
		return s
	}
	out := s
	out.Breadcrumbs = slices.Clip(s.Breadcrumbs[:len(s.Breadcrumbs)-1])
	out.Current = out.Breadcrumbs[len(out.Breadcrumbs)-1].Field
	return out
}

// Rebase re-resolves every breadcrumb by id against spec. The trail is cut at
// the first entry whose node no longer exists. ok is false when nothing is
// left, in which case the returned state is closed.
func Rebase(s State, spec *apireview.ReviewSpec) (State, bool) {
	if !s.IsOpen() {
		return s, false
	}
	want := make(map[string]*apireview.FieldNode, len(s.Breadcrumbs))
	for _, b := range s.Breadcrumbs {
		if b.Field != nil {
			want[b.Field.ID] = nil
		}
	}
	remaining := len(want)
	apireview.Walk(spec, func(n *apireview.FieldNode) bool {
		if v, ok := want[n.ID]; ok && v == nil {
			want[n.ID] = n
			remaining--
		}
		return remaining > 0
	})

	crumbs := make([]Breadcrumb, 0, len(s.Breadcrumbs))
	for _, b := range s.Breadcrumbs {
		if b.Field == nil || want[b.Field.ID] == nil {
			break
		}
		n := want[b.Field.ID]
		label := b.Label
		// ref crumbs from DrillInto are labelled with the ref target
		if label == b.Field.Label() {
			label = n.Label()
		}
		crumbs = append(crumbs, Breadcrumb{Label: label, Field: n})
	}
	if len(crumbs) == 0 {
		return State{}, false
	}
	out := s
	out.Breadcrumbs = crumbs
	out.Current = crumbs[len(crumbs)-1].Field
	return out, true
}

package panel_test

import (
	"testing"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/edit"
	"github.com/reoring/apireview/panel"
)

func node(name string, kind apireview.TypeKind, children ...*apireview.FieldNode) *apireview.FieldNode {
	n := &apireview.FieldNode{ID: apireview.NextID(name), Name: name, DisplayName: name, Kind: kind, Children: children}
	if kind == apireview.KindPrimitive {
		n.BaseType = "string"
	}
	n.TypeSummary = apireview.Summarize(n)
	return n
}

func fixture() (*apireview.ReviewSpec, *apireview.FieldNode, *apireview.FieldNode, *apireview.FieldNode) {
	label := node("label", apireview.KindPrimitive)
	tag := node("Tag", apireview.KindObject, label)
	ref := &apireview.FieldNode{ID: apireview.NextID("tag"), Name: "tag", DisplayName: "tag", Kind: apireview.KindRef, RefTarget: "Tag", TypeSummary: "Tag"}
	body := node("body", apireview.KindObject, ref)
	spec := &apireview.ReviewSpec{
		Side: apireview.SideV4,
		Routes: []*apireview.Route{{
			OperationID: "op",
			RequestBody: &apireview.RequestBody{Schema: body},
		}},
		Schemas: apireview.NewSchemaTable(&apireview.Schema{Name: "Tag", Root: tag}),
	}
	return spec, body, ref, label
}

func TestOpen(t *testing.T) {
	_, body, _, _ := fixture()
	s := panel.Open(body, apireview.SideV4)
	if !s.IsOpen() || !s.Editable || s.Current != body || len(s.Breadcrumbs) != 1 || s.Breadcrumbs[0].Label != "body" {
		t.Fatalf("unexpected state: %+v", s)
	}
	if panel.Open(body, apireview.SideV3).Editable {
		t.Fatalf("v3 must not be editable")
	}
	if panel.Open(nil, apireview.SideV4).IsOpen() {
		t.Fatalf("nil field must give a closed panel")
	}
}

func TestDrillAndBack(t *testing.T) {
	spec, body, ref, label := fixture()
	s := panel.Open(body, apireview.SideV4)
	s2 := panel.DrillInto(s, spec, ref)
	tag, _ := spec.Schema("Tag")
	if s2.Current != tag.Root || len(s2.Breadcrumbs) != 2 || s2.Breadcrumbs[1].Label != "Tag" {
		t.Fatalf("drill into ref: %+v", s2)
	}
	s3 := panel.DrillDown(s2, label)
	if s3.Current != label || len(s3.Breadcrumbs) != 3 {
		t.Fatalf("drill down: %+v", s3)
	}
	if len(s.Breadcrumbs) != 1 || len(s2.Breadcrumbs) != 2 {
		t.Fatalf("earlier states must not change")
	}
	b := panel.Back(s3)
	if b.Current != tag.Root || len(b.Breadcrumbs) != 2 {
		t.Fatalf("back: %+v", b)
	}
	b = panel.Back(panel.Back(b))
	if b.Current != body || len(b.Breadcrumbs) != 1 {
		t.Fatalf("back must stop at the first entry: %+v", b)
	}
}

func TestRebase_FollowsEdits(t *testing.T) {
	spec, body, ref, label := fixture()
	s := panel.DrillDown(panel.DrillInto(panel.Open(body, apireview.SideV4), spec, ref), label)

	edited := edit.RenameField(spec, label.ID, "caption")
	r, ok := panel.Rebase(s, edited)
	if !ok {
		t.Fatalf("rebase failed")
	}
	if r.Current == label || r.Current.ID != label.ID || r.Current.Label() != "caption" {
		t.Fatalf("current not rebased: %+v", r.Current)
	}
	if r.Breadcrumbs[0].Field != body {
		t.Fatalf("unchanged nodes keep their pointer")
	}
	tag, _ := edited.Schema("Tag")
	if r.Breadcrumbs[1].Field != tag.Root {
		t.Fatalf("ancestor must be the rebuilt node")
	}
	if got := r.Breadcrumbs[2].Label; got != "caption" {
		t.Fatalf("breadcrumb label should follow the rename, got %q", got)
	}
	if got := r.Breadcrumbs[1].Label; got != s.Breadcrumbs[1].Label {
		t.Fatalf("ref crumb label changed: %q", got)
	}
}

func TestRebase_DeletedNodeCutsTrail(t *testing.T) {
	spec, body, ref, label := fixture()
	s := panel.DrillDown(panel.DrillInto(panel.Open(body, apireview.SideV4), spec, ref), label)

	edited := edit.DeleteField(spec, label.ID)
	r, ok := panel.Rebase(s, edited)
	if !ok || len(r.Breadcrumbs) != 2 {
		t.Fatalf("trail should be cut at the deleted node: %+v", r)
	}
	tag, _ := edited.Schema("Tag")
	if r.Current != tag.Root {
		t.Fatalf("current should fall back to the parent")
	}

	edited = edit.DeleteField(spec, ref.ID)
	s = panel.Open(ref, apireview.SideV4)
	if r, ok := panel.Rebase(s, edited); ok || r.IsOpen() {
		t.Fatalf("panel should close when its root is gone: %+v", r)
	}
}

package edit_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/edit"
)

func leaf(name, base string) *apireview.FieldNode {
	return fin(&apireview.FieldNode{Name: name, Kind: apireview.KindPrimitive, BaseType: base})
}

func ref(name, target string) *apireview.FieldNode {
	return fin(&apireview.FieldNode{Name: name, Kind: apireview.KindRef, RefTarget: target})
}

func obj(name string, children ...*apireview.FieldNode) *apireview.FieldNode {
	return fin(&apireview.FieldNode{Name: name, Kind: apireview.KindObject, Children: children, Location: apireview.LocationResponse})
}

func fin(n *apireview.FieldNode) *apireview.FieldNode {
	n.ID = apireview.NextID(n.Name)
	n.DisplayName = n.Name
	n.TypeSummary = apireview.Summarize(n)
	return n
}

type fixture struct {
	spec *apireview.ReviewSpec

	param, body, status, kind, items, tags, union, variant, petRoot, petName, petOwner *apireview.FieldNode
}

func newFixture() *fixture {
	f := &fixture{}
	f.param = leaf("id", "string")
	f.status = leaf("status", "string")
	f.kind = fin(&apireview.FieldNode{Name: "kind", Kind: apireview.KindEnum, BaseType: "string", EnumValues: []string{"a", "b"}})
	f.items = ref("items", "Tag")
	f.tags = fin(&apireview.FieldNode{Name: "tags", Kind: apireview.KindArray, Items: f.items})
	f.variant = ref("oneOf[1]", "Tag")
	f.union = fin(&apireview.FieldNode{Name: "action", Kind: apireview.KindUnion, Variants: []*apireview.FieldNode{leaf("oneOf[0]", "string"), f.variant}})
	f.body = obj("body", f.status, f.kind, f.tags, f.union)
	f.petName = leaf("name", "string")
	f.petOwner = ref("owner", "Owner")
	f.petRoot = obj("Pet", f.petName, f.petOwner)
	tagRoot := obj("Tag", leaf("label", "string"))

	f.spec = &apireview.ReviewSpec{
		Side: apireview.SideV4,
		Routes: []*apireview.Route{
			{
				ID: "route-a", OperationID: "a", Path: "/a/{id}", Method: "post",
				Parameters:  []*apireview.FieldNode{f.param},
				RequestBody: &apireview.RequestBody{MediaType: "application/json", Schema: f.body},
				Responses:   []*apireview.Response{{StatusCode: "200", Schema: ref("response", "Pet")}},
			},
			{ID: "route-b", OperationID: "b", Path: "/b", Method: "get",
				Responses: []*apireview.Response{{StatusCode: "204"}}},
		},
		Schemas: apireview.NewSchemaTable(
			&apireview.Schema{Name: "Pet", Root: f.petRoot},
			&apireview.Schema{Name: "Tag", Root: tagRoot},
		),
	}
	return f
}

func checkSummaries(t *testing.T, spec *apireview.ReviewSpec) {
	t.Helper()
	apireview.Walk(spec, func(n *apireview.FieldNode) bool {
		if got := apireview.Summarize(n); got != n.TypeSummary {
			t.Errorf("%s: stored %q regenerated %q", n.ID, n.TypeSummary, got)
		}
		return true
	})
}

func TestOperations_MissingIDIsIdentity(t *testing.T) {
	f := newFixture()
	const missing = "nope::0"
	ops := map[string]func(*apireview.ReviewSpec) *apireview.ReviewSpec{
		"rename":         func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.RenameField(s, missing, "x") },
		"changeType":     func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.ChangeFieldType(s, missing, "x") },
		"required":       func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.ToggleRequired(s, missing) },
		"nullable":       func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.ToggleNullable(s, missing) },
		"refTarget":      func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.ChangeRefTarget(s, missing, "X") },
		"addEnum":        func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.AddEnumValue(s, missing, "x") },
		"removeEnum":     func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.RemoveEnumValue(s, missing, "x") },
		"addProperty":    func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.AddObjectProperty(s, missing, edit.NewField("x", "string")) },
		"removeProperty": func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.RemoveObjectProperty(s, missing, "x") },
		"addVariant":     func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.AddUnionVariant(s, missing, edit.NewField("x", "string")) },
		"removeVariant":  func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.RemoveUnionVariant(s, missing, 0) },
		"delete":         func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.DeleteField(s, missing) },
		"addField":       func(s *apireview.ReviewSpec) *apireview.ReviewSpec { return edit.AddField(s, missing, edit.NewField("x", "string")) },
	}
	for name, op := range ops {
		if got := op(f.spec); got != f.spec {
			t.Errorf("%s: expected identical spec for missing id", name)
		}
	}
}

func TestOperations_KindMismatchIsIdentity(t *testing.T) {
	f := newFixture()
	cases := map[string]*apireview.ReviewSpec{
		"enum on primitive":     edit.AddEnumValue(f.spec, f.status.ID, "x"),
		"absent enum value":     edit.RemoveEnumValue(f.spec, f.kind.ID, "zzz"),
		"property on enum":      edit.AddObjectProperty(f.spec, f.kind.ID, edit.NewField("x", "string")),
		"absent property":       edit.RemoveObjectProperty(f.spec, f.body.ID, "zzz"),
		"variant on object":     edit.AddUnionVariant(f.spec, f.body.ID, edit.NewField("x", "string")),
		"variant out of range":  edit.RemoveUnionVariant(f.spec, f.union.ID, 5),
		"ref target on non-ref": edit.ChangeRefTarget(f.spec, f.status.ID, "Tag"),
		"delete request root":   edit.DeleteField(f.spec, f.body.ID),
		"delete schema root":    edit.DeleteField(f.spec, f.petRoot.ID),
		"nil property":          edit.AddObjectProperty(f.spec, f.body.ID, nil),
	}
	for name, got := range cases {
		if got != f.spec {
			t.Errorf("%s: expected identical spec", name)
		}
	}
}

func TestRenameField_StructuralSharing(t *testing.T) {
	f := newFixture()
	out := edit.RenameField(f.spec, f.petName.ID, "fullName")
	if out == f.spec {
		t.Fatalf("expected a new spec")
	}
	pet, _ := out.Schema("Pet")
	if pet.Root == f.petRoot {
		t.Fatalf("path to the edited node must be rebuilt")
	}
	if pet.Root.Children[0].DisplayName != "fullName" || pet.Root.Children[0].Name != "name" {
		t.Fatalf("unexpected rename: %+v", pet.Root.Children[0])
	}
	if pet.Root.Children[0].ID != f.petName.ID {
		t.Fatalf("rename must keep the id")
	}
	if pet.Root.Children[1] != f.petOwner {
		t.Fatalf("sibling must be shared")
	}
	if out.Routes[0] != f.spec.Routes[0] || out.Routes[1] != f.spec.Routes[1] {
		t.Fatalf("routes off the path must be shared")
	}
	tagBefore, _ := f.spec.Schema("Tag")
	tagAfter, _ := out.Schema("Tag")
	if tagBefore != tagAfter {
		t.Fatalf("untouched schema must be shared")
	}
	if f.petName.DisplayName != "name" {
		t.Fatalf("input must not be modified")
	}
	if orig, _ := f.spec.Schema("Pet"); orig.Root != f.petRoot {
		t.Fatalf("input schema table must not be modified")
	}
}

func TestRenameField_RouteSharing(t *testing.T) {
	f := newFixture()
	out := edit.RenameField(f.spec, f.status.ID, "state")
	r := out.Routes[0]
	if r == f.spec.Routes[0] || r.RequestBody == f.spec.Routes[0].RequestBody {
		t.Fatalf("route and body on the path must be rebuilt")
	}
	if r.Parameters[0] != f.param || r.Responses[0] != f.spec.Routes[0].Responses[0] {
		t.Fatalf("siblings of the body must be shared")
	}
	if r.RequestBody.Schema.Children[2] != f.tags {
		t.Fatalf("sibling field must be shared")
	}
	if out.Schemas != f.spec.Schemas {
		t.Fatalf("schema table must be shared")
	}
}

func TestEnumRoundTrip(t *testing.T) {
	f := newFixture()
	added := edit.AddEnumValue(f.spec, f.kind.ID, "X")
	n, _ := apireview.FindField(added, f.kind.ID)
	if !slices.Equal(n.EnumValues, []string{"a", "b", "X"}) {
		t.Fatalf("after add: %v", n.EnumValues)
	}
	removed := edit.RemoveEnumValue(added, f.kind.ID, "X")
	n, _ = apireview.FindField(removed, f.kind.ID)
	if !slices.Equal(n.EnumValues, f.kind.EnumValues) {
		t.Fatalf("after remove: %v", n.EnumValues)
	}
	if !slices.Equal(f.kind.EnumValues, []string{"a", "b"}) {
		t.Fatalf("input mutated: %v", f.kind.EnumValues)
	}
}

func TestChangeFieldType(t *testing.T) {
	f := newFixture()
	out := edit.ChangeFieldType(f.spec, f.tags.ID, "string")
	n, _ := apireview.FindField(out, f.tags.ID)
	if n.Kind != apireview.KindPrimitive || n.BaseType != "string" || n.TypeSummary != "string" || n.Items != nil {
		t.Fatalf("unexpected node: %+v", n)
	}
	if _, ok := apireview.FindField(out, f.items.ID); ok {
		t.Fatalf("items must be discarded")
	}
	checkSummaries(t, out)
}

func TestToggleNullableAndRequired(t *testing.T) {
	f := newFixture()
	out := edit.ToggleNullable(f.spec, f.tags.ID)
	n, _ := apireview.FindField(out, f.tags.ID)
	if !n.Nullable || n.TypeSummary != "array<Tag>?" {
		t.Fatalf("unexpected: %+v", n)
	}
	back := edit.ToggleNullable(out, f.tags.ID)
	n, _ = apireview.FindField(back, f.tags.ID)
	if n.Nullable || n.TypeSummary != "array<Tag>" {
		t.Fatalf("unexpected: %+v", n)
	}
	req := edit.ToggleRequired(f.spec, f.param.ID)
	if !req.Routes[0].Parameters[0].Required || f.param.Required {
		t.Fatalf("required not toggled on copy only")
	}
}

func TestChangeRefTarget_RefreshesAncestors(t *testing.T) {
	f := newFixture()
	out := edit.ChangeRefTarget(f.spec, f.items.ID, "Pet")
	arr, _ := apireview.FindField(out, f.tags.ID)
	if arr.TypeSummary != "array<Pet>" || arr.Items.TypeSummary != "Pet" {
		t.Fatalf("unexpected summaries: %q %q", arr.TypeSummary, arr.Items.TypeSummary)
	}
	out = edit.ChangeRefTarget(out, f.variant.ID, "Owner")
	u, _ := apireview.FindField(out, f.union.ID)
	if u.TypeSummary != "string | Owner" {
		t.Fatalf("union summary: %q", u.TypeSummary)
	}
	checkSummaries(t, out)
}

func TestObjectProperties(t *testing.T) {
	f := newFixture()
	nf := edit.NewField("extra", "boolean")
	out := edit.AddField(f.spec, f.petRoot.ID, nf)
	pet, _ := out.Schema("Pet")
	if len(pet.Root.Children) != 3 || pet.Root.Children[2].ID != nf.ID {
		t.Fatalf("property not appended: %+v", pet.Root.Children)
	}
	if pet.Root.Children[2].Location != apireview.LocationResponse || nf.Location != "" {
		t.Fatalf("location must be inherited on a copy")
	}
	if len(f.petRoot.Children) != 2 {
		t.Fatalf("input mutated")
	}

	out = edit.RemoveObjectProperty(out, f.petRoot.ID, "name")
	pet, _ = out.Schema("Pet")
	if len(pet.Root.Children) != 2 || pet.Root.Children[0] != f.petOwner {
		t.Fatalf("unexpected children: %+v", pet.Root.Children)
	}
	checkSummaries(t, out)
}

func TestUnionVariants(t *testing.T) {
	f := newFixture()
	out := edit.AddUnionVariant(f.spec, f.union.ID, edit.NewField("oneOf[2]", "number"))
	u, _ := apireview.FindField(out, f.union.ID)
	if u.TypeSummary != "string | Tag | number" {
		t.Fatalf("summary: %q", u.TypeSummary)
	}
	out = edit.RemoveUnionVariant(out, f.union.ID, 0)
	u, _ = apireview.FindField(out, f.union.ID)
	if u.Kind != apireview.KindUnion || u.TypeSummary != "Tag | number" {
		t.Fatalf("after remove: %v %q", u.Kind, u.TypeSummary)
	}
	checkSummaries(t, out)
}

func TestDeleteField(t *testing.T) {
	f := newFixture()
	out := edit.DeleteField(f.spec, f.param.ID)
	if len(out.Routes[0].Parameters) != 0 || len(f.spec.Routes[0].Parameters) != 1 {
		t.Fatalf("parameter not removed on copy")
	}
	if out.Routes[0].RequestBody != f.spec.Routes[0].RequestBody {
		t.Fatalf("body must be shared")
	}

	out = edit.DeleteField(f.spec, f.variant.ID)
	u, _ := apireview.FindField(out, f.union.ID)
	if len(u.Variants) != 1 || u.TypeSummary != "string" {
		t.Fatalf("variant not removed: %+v", u)
	}
	if _, ok := apireview.FindField(out, f.variant.ID); ok {
		t.Fatalf("deleted node still reachable")
	}

	out = edit.DeleteField(f.spec, f.petOwner.ID)
	pet, _ := out.Schema("Pet")
	if len(pet.Root.Children) != 1 || pet.Root.Children[0] != f.petName {
		t.Fatalf("child not removed")
	}
	checkSummaries(t, out)
}

func TestNewField_UniqueIDs(t *testing.T) {
	a, b := edit.NewField("x", "string"), edit.NewRefField("y", "Pet")
	if a.ID == b.ID || !strings.HasPrefix(a.ID, "field-") {
		t.Fatalf("ids: %s %s", a.ID, b.ID)
	}
	if a.TypeSummary != "string" || b.TypeSummary != "Pet" {
		t.Fatalf("summaries: %q %q", a.TypeSummary, b.TypeSummary)
	}
}

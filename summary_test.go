package apireview_test

import (
	"testing"

	"github.com/reoring/apireview"
)

func TestSummarize_Kinds(t *testing.T) {
	ref := &apireview.FieldNode{Kind: apireview.KindRef, RefTarget: "Action"}
	str := &apireview.FieldNode{Kind: apireview.KindPrimitive, BaseType: "string"}
	cases := []struct {
		name string
		node *apireview.FieldNode
		want string
	}{
		{"primitive", str, "string"},
		{"primitive missing base", &apireview.FieldNode{Kind: apireview.KindPrimitive}, "unknown"},
		{"ref", ref, "Action"},
		{"array of ref", &apireview.FieldNode{Kind: apireview.KindArray, Items: ref}, "array<Action>"},
		{"array without items", &apireview.FieldNode{Kind: apireview.KindArray}, "array<unknown>"},
		{"union", &apireview.FieldNode{Kind: apireview.KindUnion, Variants: []*apireview.FieldNode{str, ref}}, "string | Action"},
		{"enum", &apireview.FieldNode{Kind: apireview.KindEnum, BaseType: "string", EnumValues: []string{"a"}}, "string (enum)"},
		{"enum default base", &apireview.FieldNode{Kind: apireview.KindEnum}, "string (enum)"},
		{"object", &apireview.FieldNode{Kind: apireview.KindObject}, "object"},
		{"any", &apireview.FieldNode{Kind: apireview.KindAny}, "any"},
		{"nullable array", &apireview.FieldNode{Kind: apireview.KindArray, Items: ref, Nullable: true}, "array<Action>?"},
		{"nullable union trails whole string", &apireview.FieldNode{Kind: apireview.KindUnion, Variants: []*apireview.FieldNode{str, ref}, Nullable: true}, "string | Action?"},
	}
	for _, tc := range cases {
		if got := apireview.Summarize(tc.node); got != tc.want {
			t.Errorf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestSummarize_SelfReferenceTerminates(t *testing.T) {
	// A ref node only names its target, so a schema that references itself
	// still produces a finite summary.
	self := &apireview.FieldNode{Kind: apireview.KindRef, RefTarget: "Node"}
	arr := &apireview.FieldNode{Kind: apireview.KindArray, Items: self}
	if got := apireview.Summarize(arr); got != "array<Node>" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestTypeKind_TextRoundTrip(t *testing.T) {
	for _, k := range []apireview.TypeKind{
		apireview.KindPrimitive, apireview.KindEnum, apireview.KindObject,
		apireview.KindArray, apireview.KindUnion, apireview.KindRef, apireview.KindAny,
	} {
		b, _ := k.MarshalText()
		var back apireview.TypeKind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Fatalf("kind %v: got %v err=%v", k, back, err)
		}
	}
	var k apireview.TypeKind
	if err := k.UnmarshalText([]byte("invalid")); err == nil {
		t.Fatalf("expected error for the invalid kind name")
	}
}

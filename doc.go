// Package apireview holds the review IR shared by every stage of the API
// review board:
//
// - ReviewSpec / Route / FieldNode: a normalized OpenAPI document with stable
// node identities, a closed TypeKind tag and a derived TypeSummary
// - Summarize: the type-summary generator
// - FindField / Walk / ResolveRef: lookups used by layout and the side panel
// - Issues / LoadError: the error model of document loading
//
// Layout:
// - openapi/ turns a document into a ReviewSpec, pairing/ matches operations,
// edit/ applies copy-on-write edits, panel/ keeps breadcrumb state,
// layout/ positions shapes on a canvas.Editor, session/ ties them together.
// - The CLI lives under cmd/apireview.
//
// Typical usage:
//
//	v3, v4, err := openapi.LoadPair(ctx, oldYAML, newYAML, openapi.Options{})
//	pairs := pairing.Build(v3, v4)
//	res, err := layout.New(layout.DefaultGeometry()).Layout(board, pairs, v3, v4)
//	v4 = edit.RenameField(v4, fieldID, "newName")
package apireview

package layout_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/canvas"
	"github.com/reoring/apireview/layout"
	"github.com/reoring/apireview/openapi"
	"github.com/reoring/apireview/pairing"
)

const v3Doc = `
openapi: 3.0.3
info: {title: items, version: "3"}
paths:
  /v1/items/{id}:
    get:
      operationId: getItem
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Item'
  /v1/legacy:
    get:
      operationId: legacyOnly
      responses:
        "200": {description: ok}
components:
  schemas:
    Item:
      type: object
      properties:
        id: {type: string}
        name: {type: string}
`

const v4Doc = `
openapi: 3.0.3
info: {title: items, version: "4"}
paths:
  /v1/items/{id}:
    get:
      operationId: getItem
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Item'
components:
  schemas:
    Item:
      type: object
      properties:
        id: {type: string}
        owner:
          $ref: '#/components/schemas/Owner'
        tags:
          type: array
          items:
            $ref: '#/components/schemas/Tag'
    Owner:
      type: object
      properties:
        email: {type: string}
    Tag:
      type: object
      properties:
        label: {type: string}
`

const cyclicDoc = `
openapi: 3.0.3
info: {title: tree, version: "1"}
paths:
  /nodes/{id}:
    get:
      operationId: getNode
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Node'
components:
  schemas:
    Node:
      type: object
      properties:
        next:
          $ref: '#/components/schemas/Node'
        children:
          type: array
          items:
            $ref: '#/components/schemas/Node'
        peer:
          $ref: '#/components/schemas/Peer'
    Peer:
      type: object
      properties:
        back:
          $ref: '#/components/schemas/Node'
`

func loadPair(t *testing.T, v3Text, v4Text string) (*apireview.ReviewSpec, *apireview.ReviewSpec, []apireview.RouteCardPair) {
	t.Helper()
	v3, v4, err := openapi.LoadPair(context.Background(), []byte(v3Text), []byte(v4Text), openapi.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return v3, v4, pairing.Build(v3, v4)
}

func newEngine(t *testing.T) *layout.Engine {
	t.Helper()
	e, err := layout.New(layout.DefaultGeometry())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func schemaNodes(shapes []canvas.Shape, side apireview.Side) []canvas.Shape {
	var out []canvas.Shape
	for _, s := range shapes {
		if p, ok := s.Props.(canvas.SchemaNodeProps); ok && p.Side == side {
			out = append(out, s)
		}
	}
	return out
}

func TestLayout_EndToEnd(t *testing.T) {
	v3, v4, pairs := loadPair(t, v3Doc, v4Doc)
	if len(pairs) != 1 || pairs[0].V3.OperationID != "getItem" {
		t.Fatalf("want one getItem pair, got %+v", pairs)
	}

	board := canvas.NewBoard()
	res, err := newEngine(t).Layout(board, pairs, v3, v4)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if res.ShapeCount != len(board.Shapes()) {
		t.Fatalf("shape count %d, board has %d", res.ShapeCount, len(board.Shapes()))
	}

	left, ok := board.Shape(canvas.NewShapeID("v3-getItem"))
	if !ok || left.X != 100 || left.Y != 100 {
		t.Fatalf("v3 card: %+v", left)
	}
	right, ok := board.Shape(canvas.NewShapeID("v4-getItem"))
	if !ok || right.X != 540 || right.Y != 100 {
		t.Fatalf("v4 card: %+v", right)
	}
	if p := right.Props.(canvas.RouteCardProps); p.Side != apireview.SideV4 || p.Method != "get" || p.W != 380 || p.H != 520 {
		t.Fatalf("v4 props: %+v", p)
	}

	v3Nodes := schemaNodes(board.Shapes(), apireview.SideV3)
	if len(v3Nodes) != 1 {
		t.Fatalf("want one v3 satellite, got %d", len(v3Nodes))
	}
	item := v3Nodes[0]
	if item.X != -300 || item.Y != 131 {
		t.Fatalf("v3 satellite at (%v, %v)", item.X, item.Y)
	}
	if p := item.Props.(canvas.SchemaNodeProps); p.Title != "Item" || p.SchemaName != "Item" || p.H != 140 || p.Subtitle != "response" {
		t.Fatalf("v3 satellite props: %+v", p)
	}

	v4Nodes := schemaNodes(board.Shapes(), apireview.SideV4)
	if len(v4Nodes) != 3 {
		t.Fatalf("want Item, Owner and Tag on v4, got %d", len(v4Nodes))
	}
	if v4Nodes[0].X != 1000 || v4Nodes[1].X != 1400 || v4Nodes[2].X != 1400 {
		t.Fatalf("v4 columns: %v %v %v", v4Nodes[0].X, v4Nodes[1].X, v4Nodes[2].X)
	}
	tag := v4Nodes[2].Props.(canvas.SchemaNodeProps)
	if tag.Title != "Tag" || tag.Subtitle != "tags[]" {
		t.Fatalf("array target props: %+v", tag)
	}

	for _, b := range board.Bindings() {
		if _, ok := board.Shape(b.ToID); !ok {
			t.Fatalf("binding to missing shape %s", b.ToID)
		}
		if b.Anchor.X < 0 || b.Anchor.X > 1 || b.Anchor.Y < 0 || b.Anchor.Y > 1 {
			t.Fatalf("anchor out of range: %+v", b)
		}
	}
	if len(board.Bindings()) != 2*(len(v3Nodes)+len(v4Nodes)) {
		t.Fatalf("want two bindings per satellite, got %d", len(board.Bindings()))
	}
	if res.MaxY < 620 {
		t.Fatalf("max y %v below card bottom", res.MaxY)
	}
}

func TestLayout_Anchors(t *testing.T) {
	v3, v4, pairs := loadPair(t, v3Doc, v4Doc)
	board := canvas.NewBoard()
	if _, err := newEngine(t).Layout(board, pairs, v3, v4); err != nil {
		t.Fatalf("layout: %v", err)
	}
	v3Node := schemaNodes(board.Shapes(), apireview.SideV3)[0]
	bs := board.BindingsOf(v3Node.ID)
	if len(bs) != 1 {
		t.Fatalf("want one binding on the v3 satellite, got %d", len(bs))
	}
	end := bs[0]
	if end.Terminal != canvas.TerminalEnd || end.Anchor.X != 1 || end.Anchor.Y != 0.5 || !end.IsPrecise || end.IsExact {
		t.Fatalf("v3 end binding: %+v", end)
	}
	var start canvas.Binding
	for _, b := range board.BindingsOf(end.FromID) {
		if b.Terminal == canvas.TerminalStart {
			start = b
		}
	}
	if start.ToID != canvas.NewShapeID("v3-getItem") || start.Anchor.X != 0 || start.Anchor.Y != 101.0/520 {
		t.Fatalf("v3 start binding: %+v", start)
	}
	arrow, _ := board.Shape(end.FromID)
	ap := arrow.Props.(canvas.ArrowProps)
	if ap.ArrowheadEnd != canvas.ArrowheadArrow || ap.ArrowheadStart != canvas.ArrowheadNone {
		t.Fatalf("arrow props: %+v", ap)
	}
	// the arrow runs from the card's left edge to the satellite's right edge
	if arrow.X+ap.Start.X != 100 || arrow.X+ap.End.X != 20 {
		t.Fatalf("arrow ends: start %v end %v", arrow.X+ap.Start.X, arrow.X+ap.End.X)
	}
}

func TestLayout_Deterministic(t *testing.T) {
	v3, v4, pairs := loadPair(t, v3Doc, v4Doc)
	e := newEngine(t)
	a, b := canvas.NewBoard(), canvas.NewBoard()
	if _, err := e.Layout(a, pairs, v3, v4); err != nil {
		t.Fatalf("layout a: %v", err)
	}
	if _, err := e.Layout(b, pairs, v3, v4); err != nil {
		t.Fatalf("layout b: %v", err)
	}
	if !reflect.DeepEqual(a.Shapes(), b.Shapes()) || !reflect.DeepEqual(a.Bindings(), b.Bindings()) {
		t.Fatalf("layouts differ")
	}
}

func TestLayout_Idempotent(t *testing.T) {
	v3, v4, pairs := loadPair(t, v3Doc, v4Doc)
	e := newEngine(t)
	board := canvas.NewBoard()
	first, err := e.Layout(board, pairs, v3, v4)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	second, err := e.Layout(board, pairs, v3, v4)
	if err != nil {
		t.Fatalf("second layout: %v", err)
	}
	if second.ShapeCount != 0 || len(second.Bindings) != 0 {
		t.Fatalf("second pass created %d shapes", second.ShapeCount)
	}
	if len(board.Shapes()) != first.ShapeCount || second.MaxY != first.MaxY {
		t.Fatalf("board changed on second pass")
	}
}

func TestLayout_CycleTerminates(t *testing.T) {
	v3, v4, pairs := loadPair(t, cyclicDoc, cyclicDoc)
	board := canvas.NewBoard()
	if _, err := newEngine(t).Layout(board, pairs, v3, v4); err != nil {
		t.Fatalf("layout: %v", err)
	}
	nodes := schemaNodes(board.Shapes(), apireview.SideV4)
	var titles []string
	for _, n := range nodes {
		titles = append(titles, n.Props.(canvas.SchemaNodeProps).Title)
	}
	// Node, then Peer; Peer.back leads to Node which is already on the path
	if got := strings.Join(titles, ","); got != "Node,Peer" {
		t.Fatalf("satellites: %s", got)
	}
	for _, n := range nodes {
		if !strings.Contains(string(n.ID), "schema-v4-getNode-") {
			t.Fatalf("unexpected id %s", n.ID)
		}
	}
}

func TestLayout_SameSchemaOnSiblingBranches(t *testing.T) {
	doc := `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /a:
    get:
      operationId: getA
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  first: {$ref: '#/components/schemas/Leaf'}
                  second: {$ref: '#/components/schemas/Wrap'}
components:
  schemas:
    Wrap:
      type: object
      properties:
        leaf: {$ref: '#/components/schemas/Leaf'}
    Leaf:
      type: object
      properties:
        v: {type: string}
`
	v3, v4, pairs := loadPair(t, doc, doc)
	board := canvas.NewBoard()
	if _, err := newEngine(t).Layout(board, pairs, v3, v4); err != nil {
		t.Fatalf("layout: %v", err)
	}
	leaves := 0
	var prev *canvas.Shape
	for _, n := range schemaNodes(board.Shapes(), apireview.SideV4) {
		if n.Props.(canvas.SchemaNodeProps).Title == "Leaf" {
			leaves++
		}
		if prev != nil && prev.X == n.X && n.Y < prev.Y+prev.Bounds().H {
			t.Fatalf("nodes overlap in column %v", n.X)
		}
		p := n
		prev = &p
	}
	if leaves != 2 {
		t.Fatalf("Leaf should appear once per branch, got %d", leaves)
	}
}

func TestLayout_RowsAndGroups(t *testing.T) {
	g := layout.DefaultGeometry()
	mk := func(op, path, prefix string) *apireview.Route {
		return &apireview.Route{OperationID: op, Path: path, PathPrefix: prefix, Method: "get"}
	}
	v3 := &apireview.ReviewSpec{Side: apireview.SideV3, Routes: []*apireview.Route{
		mk("b1", "/b/1", "/b"), mk("a1", "/a/1", "/a"), mk("a2", "/a/2", "/a"),
	}}
	v4 := &apireview.ReviewSpec{Side: apireview.SideV4, Routes: []*apireview.Route{
		mk("a1", "/a/1", "/a"), mk("a2", "/a/2", "/a"), mk("b1", "/b/1", "/b"),
	}}
	board := canvas.NewBoard()
	res, err := newEngine(t).Layout(board, pairing.Build(v3, v4), v3, v4)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if res.ShapeCount != 6 {
		t.Fatalf("want 6 cards, got %d", res.ShapeCount)
	}
	ys := map[string]float64{}
	for _, op := range []string{"a1", "a2", "b1"} {
		s, _ := board.Shape(canvas.NewShapeID("v4-" + op))
		ys[op] = s.Y
	}
	rowStep := g.CardHeight + g.CardGapY
	if ys["a1"] != g.StartY || ys["a2"] != g.StartY+rowStep || ys["b1"] != g.StartY+2*rowStep+g.GroupGapY {
		t.Fatalf("row positions: %v", ys)
	}
	if res.MaxY != ys["b1"]+g.CardHeight {
		t.Fatalf("max y: %v", res.MaxY)
	}
}

func TestNew_RejectsBadGeometry(t *testing.T) {
	g := layout.DefaultGeometry()
	g.CardWidth = 0
	if _, err := layout.New(g); err == nil {
		t.Fatalf("expected validation error")
	}
	g = layout.DefaultGeometry()
	g.SchemaGapY = -1
	if err := g.Validate(); err == nil {
		t.Fatalf("expected validation error for negative gap")
	}
}

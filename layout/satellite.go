package layout

import (
	"regexp"
	"strconv"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/canvas"
)

type box struct {
	id   canvas.ShapeID
	rect canvas.Rect
}

// row is a field drawn on a card or satellite, with the vertical center of
// its row relative to the top of the box.
type row struct {
	field  *apireview.FieldNode
	offset float64
}

// target is a schema to expand into a satellite node.
type target struct {
	node       *apireview.FieldNode
	title      string
	subtitle   string
	schemaName string
	// key identifies the target for cycle detection. base is the key of the
	// innermost ref or object, without array or union wrapping.
	key  string
	base string
}

// ancestry is the chain of target keys expanded on one path from a card.
type ancestry struct {
	key    string
	parent *ancestry
}

func (a *ancestry) has(key string) bool {
	for ; a != nil; a = a.parent {
		if a.key == key {
			return true
		}
	}
	return false
}

// blocks reports whether t was already expanded on this path, either under
// its own key or as the schema it wraps.
func (a *ancestry) blocks(t target) bool {
	return a.has(t.key) || a.has(t.base)
}

func (a *ancestry) with(t target) *ancestry {
	a = &ancestry{key: t.key, parent: a}
	if t.base != "" && t.base != t.key {
		a = &ancestry{key: t.base, parent: a}
	}
	return a
}

type queued struct {
	source box
	offset float64
	depth  int
	target target
	seen   *ancestry
}

type satelliteOutput struct {
	shapes   []canvas.Shape
	bindings []canvas.Binding
	maxY     float64
}

// satellites expands the schemas referenced from route's fields into columns
// beside card. dir is 1 to grow rightward and -1 to grow leftward.
func (e *Engine) satellites(spec *apireview.ReviewSpec, side apireview.Side, route *apireview.Route, card box, dir int) satelliteOutput {
	g := e.geom
	out := satelliteOutput{maxY: card.rect.Y + card.rect.H}

	var queue []queued
	for _, r := range e.routeRows(route) {
		for _, t := range collectTargets(r.field, spec) {
			queue = append(queue, queued{
				source: card,
				offset: r.offset,
				depth:  1,
				target: t,
				seen:   (*ancestry)(nil).with(t),
			})
		}
	}

	columnNextY := map[int]float64{}
	for index := 0; len(queue) > 0; index++ {
		item := queue[0]
		queue = queue[1:]

		rows, height := e.nodeRows(item.target.node, spec)
		height = max(g.SchemaMinHeight, height)

		colY, ok := columnNextY[item.depth]
		if !ok {
			colY = card.rect.Y
		}
		y := max(item.source.rect.Y+item.offset-height/2, colY)
		node := box{
			id: canvas.NewShapeID("schema-" + string(side) + "-" + route.OperationID + "-" +
				strconv.Itoa(item.depth) + "-" + strconv.Itoa(index) + "-" + sanitizeID(item.target.key)),
			rect: canvas.Rect{X: e.columnX(card, dir, item.depth), Y: y, W: g.SchemaWidth, H: height},
		}
		props := canvas.SchemaNodeProps{
			W:          node.rect.W,
			H:          node.rect.H,
			Side:       side,
			Title:      item.target.title,
			Subtitle:   item.target.subtitle,
			SchemaName: item.target.schemaName,
		}
		if props.SchemaName == "" {
			props.FieldID = item.target.node.ID
		}
		out.shapes = append(out.shapes, canvas.Shape{
			ID:    node.id,
			Type:  canvas.TypeSchemaNode,
			X:     node.rect.X,
			Y:     node.rect.Y,
			Props: props,
		})
		columnNextY[item.depth] = y + height + g.SchemaGapY
		out.maxY = max(out.maxY, y+height)

		arrow, bindings := connect(route.OperationID, side, item.source, item.offset, node, dir)
		out.shapes = append(out.shapes, arrow)
		out.bindings = append(out.bindings, bindings...)

		for _, r := range rows {
			for _, t := range collectTargets(r.field, spec) {
				if item.seen.blocks(t) {
					continue
				}
				queue = append(queue, queued{
					source: node,
					offset: r.offset,
					depth:  item.depth + 1,
					target: t,
					seen:   item.seen.with(t),
				})
			}
		}
	}
	return out
}

// connect draws the arrow from a source row to a satellite node and binds
// both ends at relative anchors.
func connect(opID string, side apireview.Side, src box, offset float64, dst box, dir int) (canvas.Shape, []canvas.Binding) {
	srcAnchor := canvas.Point{X: 1, Y: clamp(offset / src.rect.H)}
	dstAnchor := canvas.Point{X: 0, Y: clamp((src.rect.Y + offset - dst.rect.Y) / dst.rect.H)}
	if dir < 0 {
		srcAnchor.X, dstAnchor.X = 0, 1
	}
	sp := src.rect.Point(srcAnchor)
	dp := dst.rect.Point(dstAnchor)
	origin := canvas.Point{X: min(sp.X, dp.X), Y: min(sp.Y, dp.Y)}

	id := canvas.NewShapeID("arrow-" + string(side) + "-" + opID + "-" + string(dst.id))
	arrow := canvas.Shape{
		ID:   id,
		Type: canvas.TypeArrow,
		X:    origin.X,
		Y:    origin.Y,
		Props: canvas.ArrowProps{
			Start:          canvas.Point{X: sp.X - origin.X, Y: sp.Y - origin.Y},
			End:            canvas.Point{X: dp.X - origin.X, Y: dp.Y - origin.Y},
			ArrowheadStart: canvas.ArrowheadNone,
			ArrowheadEnd:   canvas.ArrowheadArrow,
		},
	}
	return arrow, []canvas.Binding{
		{FromID: id, ToID: src.id, Type: "arrow", Terminal: canvas.TerminalStart, Anchor: srcAnchor, IsPrecise: true},
		{FromID: id, ToID: dst.id, Type: "arrow", Terminal: canvas.TerminalEnd, Anchor: dstAnchor, IsPrecise: true},
	}
}

func (e *Engine) columnX(card box, dir, depth int) float64 {
	g := e.geom
	step := float64(depth-1) * (g.SchemaWidth + g.SchemaGapX)
	if dir > 0 {
		return card.rect.X + card.rect.W + g.SchemaGapX + step
	}
	return card.rect.X - g.SchemaGapX - g.SchemaWidth - step
}

// routeRows lists the field rows of a route card: parameters, request body
// fields, then each response's fields, each section under a header.
func (e *Engine) routeRows(r *apireview.Route) []row {
	g := e.geom
	var rows []row
	y := g.CardHeaderHeight
	add := func(fields []*apireview.FieldNode) {
		for _, f := range fields {
			rows = append(rows, row{field: f, offset: y + g.FieldRowHeight/2})
			y += g.FieldRowHeight
		}
	}
	if len(r.Parameters) > 0 {
		y += g.SectionHeaderHeight
		add(r.Parameters)
	}
	if r.RequestBody != nil && r.RequestBody.Schema != nil {
		y += g.SectionHeaderHeight
		add(bodyFields(r.RequestBody.Schema))
	}
	for _, resp := range r.Responses {
		y += g.SectionHeaderHeight
		if resp == nil || resp.Schema == nil {
			continue
		}
		add(bodyFields(resp.Schema))
	}
	return rows
}

// bodyFields returns the rows shown for a body schema: an object's
// properties, or the schema itself.
func bodyFields(n *apireview.FieldNode) []*apireview.FieldNode {
	if n.Kind == apireview.KindObject {
		return n.Children
	}
	return []*apireview.FieldNode{n}
}

// nodeRows lists the rows of a satellite for root and returns its natural
// height. Refs are followed to the named schema first.
func (e *Engine) nodeRows(root *apireview.FieldNode, spec *apireview.ReviewSpec) ([]row, float64) {
	g := e.geom
	resolved := spec.ResolveRef(root)
	fields := []*apireview.FieldNode{resolved}
	if len(resolved.Children) > 0 {
		fields = resolved.Children
	}
	rows := make([]row, 0, len(fields))
	y := g.SchemaHeaderHeight
	for _, f := range fields {
		rows = append(rows, row{field: f, offset: y + g.FieldRowHeight/2})
		y += g.FieldRowHeight
	}
	return rows, y + g.SchemaBodyPadding
}

// collectTargets returns the satellites a field expands to. Refs dedup by
// schema name and inline objects by field id; arrays and unions wrap the
// targets of their items or variants under a key of their own.
func collectTargets(f *apireview.FieldNode, spec *apireview.ReviewSpec) []target {
	if f == nil {
		return nil
	}
	switch f.Kind {
	case apireview.KindRef:
		if f.RefTarget == "" {
			return nil
		}
		sc, ok := spec.Schema(f.RefTarget)
		if !ok || sc.Root == nil {
			return nil
		}
		key := "ref:" + f.RefTarget
		t := target{node: sc.Root, title: f.RefTarget, schemaName: f.RefTarget, key: key, base: key}
		if f.Label() != f.RefTarget {
			t.subtitle = f.Label()
		}
		return []target{t}
	case apireview.KindObject:
		key := "field:" + f.ID
		return []target{{node: f, title: f.Label(), key: key, base: key}}
	case apireview.KindArray:
		inner := collectTargets(f.Items, spec)
		for i, t := range inner {
			if t.schemaName != "" {
				t.subtitle = f.Label() + "[]"
			} else {
				t.title = f.Label() + "[]"
			}
			t.key = "array:" + f.ID + ":" + t.key
			inner[i] = t
		}
		return inner
	case apireview.KindUnion:
		var out []target
		for idx, v := range f.Variants {
			for _, t := range collectTargets(v, spec) {
				t.subtitle = f.Label() + " (variant " + strconv.Itoa(idx+1) + ")"
				t.key = "union:" + f.ID + ":" + strconv.Itoa(idx) + ":" + t.key
				out = append(out, t)
			}
		}
		return out
	case apireview.KindPrimitive, apireview.KindEnum, apireview.KindAny, apireview.KindInvalid:
		return nil
	}
	return nil
}

var unsafeID = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitizeID(s string) string { return unsafeID.ReplaceAllString(s, "-") }

func clamp(v float64) float64 {
	return min(1, max(0, v))
}

// Package layout places paired route cards and their schema satellites on a
// canvas.
//
// Each pair gets one row: the v3 card on the left, the v4 card to its right.
// Schemas referenced from a card's fields are expanded breadth-first into
// columns of satellite nodes, leftward for v3 and rightward for v4, one column
// per reference hop. Every expansion is drawn as an arrow bound to a field
// row of the source and to the satellite, at anchors relative to each box.
//
// Layout is deterministic: the same specs and pairs give the same shape ids,
// positions and bindings. Shapes that already exist on the canvas are not
// created again, so laying out twice is harmless.
package layout

import (
	"fmt"
	"log/slog"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/canvas"
	"github.com/reoring/apireview/pairing"
)

// Engine lays out route pairs with a fixed Geometry.
type Engine struct {
	geom Geometry
	log  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an Engine. It fails when geom does not validate.
func New(geom Geometry, opts ...Option) (*Engine, error) {
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("layout: invalid geometry: %w", err)
	}
	e := &Engine{geom: geom, log: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Geometry returns the engine's geometry.
func (e *Engine) Geometry() Geometry { return e.geom }

// Result describes one layout pass.
type Result struct {
	// ShapeCount is the number of shapes created by this pass.
	ShapeCount int
	Shapes     []canvas.Shape
	Bindings   []canvas.Binding
	// MaxY is the bottom of the last row, before trailing gaps.
	MaxY float64
}

// Layout places every pair and creates the new shapes, then the new
// bindings, on ed.
func (e *Engine) Layout(ed canvas.Editor, pairs []apireview.RouteCardPair, v3, v4 *apireview.ReviewSpec) (Result, error) {
	p := e.plan(pairs, v3, v4)

	var res Result
	res.MaxY = p.maxY
	created := map[canvas.ShapeID]bool{}
	for _, s := range p.shapes {
		if created[s.ID] {
			continue
		}
		if _, exists := ed.Shape(s.ID); exists {
			continue
		}
		res.Shapes = append(res.Shapes, s)
		created[s.ID] = true
	}
	bound := map[canvas.Binding]bool{}
	for _, b := range p.bindings {
		// a binding belongs to its arrow; an arrow kept from an earlier pass
		// already has its bindings
		if created[b.FromID] && !bound[b] {
			bound[b] = true
			res.Bindings = append(res.Bindings, b)
		}
	}
	res.ShapeCount = len(res.Shapes)

	if len(res.Shapes) > 0 {
		if err := ed.CreateShapes(res.Shapes); err != nil {
			return Result{}, fmt.Errorf("layout: create shapes: %w", err)
		}
		if len(res.Bindings) > 0 {
			if err := ed.CreateBindings(res.Bindings); err != nil {
				return Result{}, fmt.Errorf("layout: create bindings: %w", err)
			}
		}
	}
	e.log.Debug("layout: done",
		slog.Int("pairs", len(pairs)),
		slog.Int("planned", len(p.shapes)),
		slog.Int("created", res.ShapeCount),
		slog.Int("bindings", len(res.Bindings)),
		slog.Float64("maxY", res.MaxY))
	return res, nil
}

type plan struct {
	shapes   []canvas.Shape
	bindings []canvas.Binding
	maxY     float64
}

func (e *Engine) plan(pairs []apireview.RouteCardPair, v3, v4 *apireview.ReviewSpec) plan {
	g := e.geom
	groups := map[string][]apireview.RouteCardPair{}
	for _, p := range pairs {
		if p.V3 == nil || p.V4 == nil {
			continue
		}
		groups[p.PathPrefix] = append(groups[p.PathPrefix], p)
	}

	var out plan
	var cards []canvas.Shape
	y := g.StartY
	out.maxY = y
	for _, prefix := range pairing.Prefixes(pairs) {
		for _, p := range groups[prefix] {
			rowY := y
			left := box{
				id:   canvas.NewShapeID("v3-" + p.V3.OperationID),
				rect: canvas.Rect{X: g.StartX, Y: rowY, W: g.CardWidth, H: g.CardHeight},
			}
			right := box{
				id:   canvas.NewShapeID("v4-" + p.V4.OperationID),
				rect: canvas.Rect{X: g.StartX + g.CardWidth + g.CardGapX, Y: rowY, W: g.CardWidth, H: g.CardHeight},
			}
			cards = append(cards, e.card(left, apireview.SideV3, p.V3), e.card(right, apireview.SideV4, p.V4))

			l := e.satellites(v3, apireview.SideV3, p.V3, left, -1)
			r := e.satellites(v4, apireview.SideV4, p.V4, right, 1)
			out.shapes = append(out.shapes, l.shapes...)
			out.shapes = append(out.shapes, r.shapes...)
			out.bindings = append(out.bindings, l.bindings...)
			out.bindings = append(out.bindings, r.bindings...)

			rowHeight := max(g.CardHeight, l.maxY-rowY, r.maxY-rowY)
			out.maxY = max(out.maxY, rowY+rowHeight)
			y += rowHeight + g.CardGapY
		}
		y += g.GroupGapY
	}
	out.shapes = append(cards, out.shapes...)
	return out
}

func (e *Engine) card(b box, side apireview.Side, r *apireview.Route) canvas.Shape {
	return canvas.Shape{
		ID:   b.id,
		Type: canvas.TypeRouteCard,
		X:    b.rect.X,
		Y:    b.rect.Y,
		Props: canvas.RouteCardProps{
			W:           b.rect.W,
			H:           b.rect.H,
			Side:        side,
			OperationID: r.OperationID,
			Method:      r.Method,
		},
	}
}

// Package canvas is the boundary to the 2D scene graph the review board draws
// on. Layout talks to an Editor; Board is an in-memory Editor used by the CLI,
// the HTTP API and tests.
package canvas

import (
	"errors"

	"github.com/reoring/apireview"
)

// ShapeID identifies a shape. IDs are derived from stable names, so the same
// input always yields the same IDs.
type ShapeID string

const idPrefix = "shape:"

// NewShapeID returns the shape id for name.
func NewShapeID(name string) ShapeID { return ShapeID(idPrefix + name) }

// ShapeType names the kind of a shape.
type ShapeType string

const (
	TypeRouteCard  ShapeType = "route-card"
	TypeSchemaNode ShapeType = "schema-node"
	TypeArrow      ShapeType = "arrow"
)

// Point is a position, either absolute or relative to a shape.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Props are the type-specific properties of a shape.
type Props interface {
	// Size returns the width and height of the shape's box.
	Size() (w, h float64)
}

// Shape is a box placed on the canvas.
type Shape struct {
	ID    ShapeID   `json:"id"`
	Type  ShapeType `json:"type"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Props Props     `json:"props"`
}

// Bounds returns the shape's box in page coordinates.
func (s Shape) Bounds() Rect {
	r := Rect{X: s.X, Y: s.Y}
	if s.Props != nil {
		r.W, r.H = s.Props.Size()
	}
	return r
}

// RouteCardProps describe one operation card.
type RouteCardProps struct {
	W           float64        `json:"w"`
	H           float64        `json:"h"`
	Side        apireview.Side `json:"specSide"`
	OperationID string         `json:"operationId"`
	Method      string         `json:"method"`
}

func (p RouteCardProps) Size() (float64, float64) { return p.W, p.H }

// SchemaNodeProps describe a satellite box showing a named schema or an
// inline object. SchemaName is set for named schemas, FieldID otherwise.
type SchemaNodeProps struct {
	W          float64        `json:"w"`
	H          float64        `json:"h"`
	Side       apireview.Side `json:"specSide"`
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle,omitempty"`
	SchemaName string         `json:"schemaName,omitempty"`
	FieldID    string         `json:"fieldId,omitempty"`
}

func (p SchemaNodeProps) Size() (float64, float64) { return p.W, p.H }

// Arrowhead styles.
const (
	ArrowheadNone  = "none"
	ArrowheadArrow = "arrow"
)

// ArrowProps describe a connector. Start and End are relative to the shape's
// position.
type ArrowProps struct {
	Start          Point  `json:"start"`
	End            Point  `json:"end"`
	ArrowheadStart string `json:"arrowheadStart"`
	ArrowheadEnd   string `json:"arrowheadEnd"`
}

func (p ArrowProps) Size() (float64, float64) {
	return max(p.Start.X, p.End.X), max(p.Start.Y, p.End.Y)
}

// Terminal is the end of an arrow a binding attaches.
type Terminal string

const (
	TerminalStart Terminal = "start"
	TerminalEnd   Terminal = "end"
)

// Binding attaches a terminal of arrow FromID to shape ToID. Anchor is
// normalized to the target's box (0..1 on both axes) so the binding stays
// correct when either shape moves or is resized.
type Binding struct {
	FromID    ShapeID  `json:"fromId"`
	ToID      ShapeID  `json:"toId"`
	Type      string   `json:"type"`
	Terminal  Terminal `json:"terminal"`
	Anchor    Point    `json:"normalizedAnchor"`
	IsExact   bool     `json:"isExact"`
	IsPrecise bool     `json:"isPrecise"`
}

// Editor is the scene graph as seen by layout.
type Editor interface {
	// Shape returns the shape with the given id.
	Shape(id ShapeID) (Shape, bool)
	// CreateShapes adds shapes in one batch.
	CreateShapes(shapes []Shape) error
	// CreateBindings adds bindings in one batch. Both ends of every binding
	// must already exist.
	CreateBindings(bindings []Binding) error
	// ZoomToFit moves the camera so all shapes are visible.
	ZoomToFit()
}

var (
	// ErrUnknownShape is returned when a binding refers to a missing shape.
	ErrUnknownShape = errors.New("canvas: unknown shape")
	// ErrDuplicateShape is returned when a created shape's id is taken.
	ErrDuplicateShape = errors.New("canvas: duplicate shape")
)

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Union returns the smallest box containing r and o.
func (r Rect) Union(o Rect) Rect {
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Point returns the page position of a normalized anchor inside r.
func (r Rect) Point(anchor Point) Point {
	return Point{X: r.X + r.W*anchor.X, Y: r.Y + r.H*anchor.Y}
}

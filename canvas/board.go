package canvas

import (
	"fmt"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

// Camera maps page coordinates to the viewport:
// screen = (page + (X, Y)) * Zoom.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"z"`
}

// Board is an in-memory Editor. It is safe for concurrent use.
type Board struct {
	mu       sync.RWMutex
	order    []ShapeID
	shapes   map[ShapeID]Shape
	bindings []Binding
	camera   Camera
	viewW    float64
	viewH    float64
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithViewport sets the viewport size used by ZoomToFit.
func WithViewport(w, h float64) BoardOption {
	return func(b *Board) {
		if w > 0 && h > 0 {
			b.viewW, b.viewH = w, h
		}
	}
}

// NewBoard returns an empty board with a 1600x900 viewport.
func NewBoard(opts ...BoardOption) *Board {
	b := &Board{
		shapes: map[ShapeID]Shape{},
		camera: Camera{Zoom: 1},
		viewW:  1600,
		viewH:  900,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Board) Shape(id ShapeID) (Shape, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.shapes[id]
	return s, ok
}

// CreateShapes adds shapes in order. The batch is rejected as a whole if any
// id is already taken or repeated.
func (b *Board) CreateShapes(shapes []Shape) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[ShapeID]bool, len(shapes))
	for _, s := range shapes {
		if _, taken := b.shapes[s.ID]; taken || seen[s.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateShape, s.ID)
		}
		seen[s.ID] = true
	}
	for _, s := range shapes {
		b.shapes[s.ID] = s
		b.order = append(b.order, s.ID)
	}
	return nil
}

// CreateBindings adds bindings. The batch is rejected as a whole if any end
// is missing.
func (b *Board) CreateBindings(bindings []Binding) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bd := range bindings {
		for _, id := range []ShapeID{bd.FromID, bd.ToID} {
			if _, ok := b.shapes[id]; !ok {
				return fmt.Errorf("%w: %s", ErrUnknownShape, id)
			}
		}
	}
	b.bindings = append(b.bindings, bindings...)
	return nil
}

// Shapes returns all shapes in creation order.
func (b *Board) Shapes() []Shape {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Shape, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.shapes[id])
	}
	return out
}

// Bindings returns all bindings in creation order.
func (b *Board) Bindings() []Binding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Binding(nil), b.bindings...)
}

// BindingsOf returns the bindings attached to shape id.
func (b *Board) BindingsOf(id ShapeID) []Binding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Binding
	for _, bd := range b.bindings {
		if bd.FromID == id || bd.ToID == id {
			out = append(out, bd)
		}
	}
	return out
}

// ShapeAt returns the topmost non-arrow shape containing p.
func (b *Board) ShapeAt(p Point) (Shape, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := len(b.order) - 1; i >= 0; i-- {
		s := b.shapes[b.order[i]]
		if s.Type == TypeArrow {
			continue
		}
		if s.Bounds().Contains(p) {
			return s, true
		}
	}
	return Shape{}, false
}

// Bounds returns the box around every shape. ok is false on an empty board.
func (b *Board) Bounds() (r Rect, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bounds()
}

func (b *Board) bounds() (r Rect, ok bool) {
	for _, id := range b.order {
		sb := b.shapes[id].Bounds()
		if !ok {
			r, ok = sb, true
			continue
		}
		r = r.Union(sb)
	}
	return r, ok
}

const (
	fitPadding = 64
	minZoom    = 0.05
	maxZoom    = 1
)

// ZoomToFit centers the content in the viewport, zooming out as needed but
// never past 100%.
func (b *Board) ZoomToFit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.bounds()
	if !ok {
		b.camera = Camera{Zoom: 1}
		return
	}
	zoom := min(
		b.viewW/(r.W+2*fitPadding),
		b.viewH/(r.H+2*fitPadding),
	)
	zoom = max(minZoom, min(maxZoom, zoom))
	b.camera = Camera{
		X:    (b.viewW/zoom-r.W)/2 - r.X,
		Y:    (b.viewH/zoom-r.H)/2 - r.Y,
		Zoom: zoom,
	}
}

// Camera returns the current camera.
func (b *Board) Camera() Camera {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.camera
}

// PageToScreen converts a page point to viewport coordinates.
func (b *Board) PageToScreen(p Point) Point {
	c := b.Camera()
	return Point{X: (p.X + c.X) * c.Zoom, Y: (p.Y + c.Y) * c.Zoom}
}

// ScreenToPage converts a viewport point to page coordinates.
func (b *Board) ScreenToPage(p Point) Point {
	c := b.Camera()
	return Point{X: p.X/c.Zoom - c.X, Y: p.Y/c.Zoom - c.Y}
}

// Snapshot is the serializable content of a board.
type Snapshot struct {
	Shapes   []Shape   `json:"shapes"`
	Bindings []Binding `json:"bindings"`
	Camera   Camera    `json:"camera"`
}

// Snapshot copies the board's content.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{Shapes: b.Shapes(), Bindings: b.Bindings(), Camera: b.Camera()}
}

// WriteJSON writes the snapshot as indented JSON.
func (b *Board) WriteJSON(w io.Writer) error {
	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b.Snapshot())
}

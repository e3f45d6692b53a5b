// Package session owns the live state of one review: the v3 and v4 specs,
// their pairing and the side panel.
//
// Readers never lock. Each root is published through an atomic pointer and
// is immutable once published, so a reader sees either the old or the new
// tree. Writers (load, edit, panel navigation) are serialized by a mutex.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/canvas"
	"github.com/reoring/apireview/layout"
	"github.com/reoring/apireview/openapi"
	"github.com/reoring/apireview/pairing"
	"github.com/reoring/apireview/panel"
)

var (
	// ErrNotLoaded is returned by operations that need both specs.
	ErrNotLoaded = errors.New("session: specs not loaded")
	// ErrReadOnly is returned when an edit targets the v3 side.
	ErrReadOnly = errors.New("session: side is read-only")
	// ErrFieldNotFound is returned when a field id does not resolve.
	ErrFieldNotFound = errors.New("session: field not found")
)

type state struct {
	v3, v4 *apireview.ReviewSpec
	pairs  []apireview.RouteCardPair
}

// Session is safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	state atomic.Pointer[state]
	panel atomic.Pointer[panel.State]

	load   openapi.Options
	engine *layout.Engine
	log    *slog.Logger
}

// Option configures a Session.
type Option func(*config)

type config struct {
	load     openapi.Options
	geometry layout.Geometry
	log      *slog.Logger
}

// WithLoadOptions sets the options used to load documents.
func WithLoadOptions(o openapi.Options) Option {
	return func(c *config) { c.load = o }
}

// WithGeometry sets the layout geometry.
func WithGeometry(g layout.Geometry) Option {
	return func(c *config) { c.geometry = g }
}

// WithLogger sets the logger for the session and everything it drives.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns an empty session.
func New(opts ...Option) (*Session, error) {
	c := config{geometry: layout.DefaultGeometry(), log: slog.Default()}
	for _, o := range opts {
		o(&c)
	}
	if c.load.Logger == nil {
		c.load.Logger = c.log
	}
	engine, err := layout.New(c.geometry, layout.WithLogger(c.log))
	if err != nil {
		return nil, err
	}
	return &Session{load: c.load, engine: engine, log: c.log}, nil
}

// Load replaces both specs. On failure the session is left not loaded and
// the panel is closed. Loads are serialized with edits, so the last call to
// return is the one published.
func (s *Session) Load(ctx context.Context, v3Text, v4Text []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v3, v4, err := openapi.LoadPair(ctx, v3Text, v4Text, s.load)
	s.panel.Store(nil)
	if err != nil {
		s.state.Store(nil)
		s.log.Warn("session: load failed", slog.Any("error", err))
		return err
	}
	st := &state{v3: v3, v4: v4, pairs: pairing.Build(v3, v4)}
	s.state.Store(st)
	s.log.Info("session: loaded",
		slog.String("v3", v3.Title+" "+v3.Version),
		slog.String("v4", v4.Title+" "+v4.Version),
		slog.Int("pairs", len(st.pairs)))
	return nil
}

// LoadFiles reads both documents from disk and loads them.
func (s *Session) LoadFiles(ctx context.Context, v3Path, v4Path string) error {
	v3, err := os.ReadFile(v3Path)
	if err != nil {
		return &apireview.LoadError{Side: apireview.SideV3, Stage: apireview.StageRead, Err: err}
	}
	v4, err := os.ReadFile(v4Path)
	if err != nil {
		return &apireview.LoadError{Side: apireview.SideV4, Stage: apireview.StageRead, Err: err}
	}
	return s.Load(ctx, v3, v4)
}

// Loaded reports whether both specs are available.
func (s *Session) Loaded() bool { return s.state.Load() != nil }

// Specs returns the current roots. Both are nil before a successful load.
func (s *Session) Specs() (v3, v4 *apireview.ReviewSpec) {
	st := s.state.Load()
	if st == nil {
		return nil, nil
	}
	return st.v3, st.v4
}

// Spec returns the current root for side.
func (s *Session) Spec(side apireview.Side) *apireview.ReviewSpec {
	v3, v4 := s.Specs()
	if side == apireview.SideV4 {
		return v4
	}
	if side == apireview.SideV3 {
		return v3
	}
	return nil
}

// Pairs returns the route pairs of the current roots.
func (s *Session) Pairs() []apireview.RouteCardPair {
	if st := s.state.Load(); st != nil {
		return st.pairs
	}
	return nil
}

// Edit applies fn to the spec of side and publishes the result. changed is
// false when fn returned its input. Only v4 accepts edits. Pairs are rebuilt
// against the new root so layout never sees pre-edit routes.
func (s *Session) Edit(side apireview.Side, fn func(*apireview.ReviewSpec) *apireview.ReviewSpec) (changed bool, err error) {
	if !side.Editable() {
		return false, fmt.Errorf("%w: %s", ErrReadOnly, side)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.Load()
	if st == nil {
		return false, ErrNotLoaded
	}
	next := fn(st.v4)
	if next == st.v4 || next == nil {
		return false, nil
	}
	s.state.Store(&state{v3: st.v3, v4: next, pairs: pairing.Build(st.v3, next)})
	s.rebasePanel(next)
	return true, nil
}

// rebasePanel re-resolves the open panel against the new v4 root. Must be
// called with mu held.
func (s *Session) rebasePanel(v4 *apireview.ReviewSpec) {
	cur := s.panel.Load()
	if cur == nil || cur.Side != apireview.SideV4 {
		return
	}
	next, ok := panel.Rebase(*cur, v4)
	if !ok {
		s.log.Debug("session: panel closed, selected field was removed")
		s.panel.Store(nil)
		return
	}
	s.panel.Store(&next)
}

// Panel returns the side panel state. The zero State means closed.
func (s *Session) Panel() panel.State {
	if p := s.panel.Load(); p != nil {
		return *p
	}
	return panel.State{}
}

// Select opens the panel on a field.
func (s *Session) Select(side apireview.Side, fieldID string) (panel.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.find(side, fieldID)
	if err != nil {
		return panel.State{}, err
	}
	st := panel.Open(f, side)
	s.panel.Store(&st)
	return st, nil
}

// DrillInto pushes a field onto the open panel, following refs to their
// schema.
func (s *Session) DrillInto(fieldID string) (panel.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.panel.Load()
	if cur == nil {
		return panel.State{}, fmt.Errorf("%w: panel is closed", ErrFieldNotFound)
	}
	f, err := s.find(cur.Side, fieldID)
	if err != nil {
		return *cur, err
	}
	next := panel.DrillInto(*cur, s.Spec(cur.Side), f)
	s.panel.Store(&next)
	return next, nil
}

// Back pops one breadcrumb.
func (s *Session) Back() panel.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.panel.Load()
	if cur == nil {
		return panel.State{}
	}
	next := panel.Back(*cur)
	s.panel.Store(&next)
	return next
}

// ClosePanel closes the side panel.
func (s *Session) ClosePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.Store(nil)
}

func (s *Session) find(side apireview.Side, id string) (*apireview.FieldNode, error) {
	if !s.Loaded() {
		return nil, ErrNotLoaded
	}
	f, ok := apireview.FindField(s.Spec(side), id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	return f, nil
}

// Layout lays out the current pairs on ed and fits the camera.
func (s *Session) Layout(ed canvas.Editor) (layout.Result, error) {
	st := s.state.Load()
	if st == nil {
		return layout.Result{}, ErrNotLoaded
	}
	res, err := s.engine.Layout(ed, st.pairs, st.v3, st.v4)
	if err != nil {
		return res, err
	}
	ed.ZoomToFit()
	return res, nil
}

package openapi

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/reoring/apireview"
)

// Load validates, dereferences and normalizes one document into a
// ReviewSpec for the given side. The text is parsed independently by the
// validator, the dereferencer and the raw reader; the raw parse is what tells
// bare $ref pointers apart from inlined schemas.
//
// Any failure aborts the load with a *apireview.LoadError; no partial spec
// is returned.
func Load(ctx context.Context, text []byte, side apireview.Side, opts Options) (*apireview.ReviewSpec, Diag, error) {
	opts = opts.withDefaults()
	d := &simpleDiag{}
	fail := func(stage apireview.LoadStage, err error) (*apireview.ReviewSpec, Diag, error) {
		opts.Logger.Debug("openapi: load failed", slog.String("side", string(side)), slog.String("stage", string(stage)), slog.Any("error", err))
		return nil, d, &apireview.LoadError{Side: side, Stage: stage, Err: err}
	}
	if !side.Valid() {
		return fail(apireview.StageRead, fmt.Errorf("unknown side %q", side))
	}

	if err := opts.Validator.Validate(text); err != nil {
		return fail(apireview.StageValidate, err)
	}
	if err := ctx.Err(); err != nil {
		return fail(apireview.StageValidate, err)
	}

	doc, err := opts.Dereferencer.Dereference(text)
	if err != nil {
		return fail(apireview.StageDereference, err)
	}
	if doc == nil {
		return fail(apireview.StageDereference, ErrEmptyDocument)
	}
	if err := ctx.Err(); err != nil {
		return fail(apireview.StageDereference, err)
	}

	raw, err := ReadDocument(text)
	if err != nil {
		return fail(apireview.StageParse, err)
	}

	spec := Normalize(doc, raw, side, d)
	for _, w := range d.ws {
		opts.Logger.Debug("openapi: warning", slog.String("side", string(side)), slog.String("warning", w))
	}
	opts.Logger.Debug("openapi: loaded",
		slog.String("side", string(side)),
		slog.String("title", spec.Title),
		slog.Int("routes", len(spec.Routes)),
		slog.Int("schemas", spec.Schemas.Len()))
	return spec, d, nil
}

// Normalize builds a ReviewSpec from a dereferenced document and the raw
// parse of the same source. It never fails; unknown shapes become KindAny.
func Normalize(doc, raw *Object, side apireview.Side, diag Diag) *apireview.ReviewSpec {
	d, _ := diag.(*simpleDiag)
	if d == nil {
		d = &simpleDiag{}
	}
	n := &normalizer{
		raw:    raw,
		names:  map[*Object]string{},
		active: map[*Object]bool{},
		diag:   d,
	}
	rawComps := raw.Obj("components").Obj("schemas")
	comps := doc.Obj("components").Obj("schemas")
	for _, name := range comps.Keys() {
		if rc := rawComps.Obj(name); rc.IsBareRef() {
			continue
		}
		if o := comps.Obj(name); o != nil {
			if _, taken := n.names[o]; !taken {
				n.names[o] = name
			}
		}
	}
	info := doc.Obj("info")
	return &apireview.ReviewSpec{
		Title:   scalarString(info, "title"),
		Version: scalarString(info, "version"),
		Side:    side,
		Schemas: n.schemas(doc),
		Routes:  n.routes(doc),
	}
}

// LoadPair loads the v3 and v4 documents concurrently. The two loads share no
// state; the first failure cancels the other and is returned.
func LoadPair(ctx context.Context, v3Text, v4Text []byte, opts Options) (v3, v4 *apireview.ReviewSpec, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, _, err := Load(gctx, v3Text, apireview.SideV3, opts)
		v3 = s
		return err
	})
	g.Go(func() error {
		s, _, err := Load(gctx, v4Text, apireview.SideV4, opts)
		v4 = s
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return v3, v4, nil
}

func scalarString(o *Object, k string) string {
	v, ok := o.Get(k)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

package openapi

import (
	"fmt"
	"log/slog"
)

// Options controls document loading.
type Options struct {
	// Validator checks the source text before normalization. Defaults to
	// StructuralValidator.
	Validator Validator
	// Dereferencer inlines $ref pointers. Defaults to LocalDereferencer.
	Dereferencer Dereferencer
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Validator == nil {
		o.Validator = StructuralValidator{}
	}
	if o.Dereferencer == nil {
		o.Dereferencer = LocalDereferencer{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Diag carries non-fatal warnings produced while loading.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

package layout

import (
	"github.com/go-playground/validator/v10"
)

// Geometry holds the fixed sizes and gaps of the board, in page units.
type Geometry struct {
	CardWidth  float64 `yaml:"cardWidth" json:"cardWidth" validate:"gt=0"`
	CardHeight float64 `yaml:"cardHeight" json:"cardHeight" validate:"gt=0"`
	CardGapX   float64 `yaml:"cardGapX" json:"cardGapX" validate:"gte=0"`
	CardGapY   float64 `yaml:"cardGapY" json:"cardGapY" validate:"gte=0"`
	GroupGapY  float64 `yaml:"groupGapY" json:"groupGapY" validate:"gte=0"`
	StartX     float64 `yaml:"startX" json:"startX"`
	StartY     float64 `yaml:"startY" json:"startY"`

	FieldRowHeight      float64 `yaml:"fieldRowHeight" json:"fieldRowHeight" validate:"gt=0"`
	SectionHeaderHeight float64 `yaml:"sectionHeaderHeight" json:"sectionHeaderHeight" validate:"gte=0"`
	CardHeaderHeight    float64 `yaml:"cardHeaderHeight" json:"cardHeaderHeight" validate:"gte=0"`

	SchemaWidth        float64 `yaml:"schemaWidth" json:"schemaWidth" validate:"gt=0"`
	SchemaMinHeight    float64 `yaml:"schemaMinHeight" json:"schemaMinHeight" validate:"gt=0"`
	SchemaGapX         float64 `yaml:"schemaGapX" json:"schemaGapX" validate:"gte=0"`
	SchemaGapY         float64 `yaml:"schemaGapY" json:"schemaGapY" validate:"gte=0"`
	SchemaHeaderHeight float64 `yaml:"schemaHeaderHeight" json:"schemaHeaderHeight" validate:"gte=0"`
	SchemaBodyPadding  float64 `yaml:"schemaBodyPadding" json:"schemaBodyPadding" validate:"gte=0"`
}

// DefaultGeometry returns the board's standard sizes.
func DefaultGeometry() Geometry {
	return Geometry{
		CardWidth:  380,
		CardHeight: 520,
		CardGapX:   60,
		CardGapY:   40,
		GroupGapY:  80,
		StartX:     100,
		StartY:     100,

		FieldRowHeight:      26,
		SectionHeaderHeight: 20,
		CardHeaderHeight:    68,

		SchemaWidth:        320,
		SchemaMinHeight:    140,
		SchemaGapX:         80,
		SchemaGapY:         32,
		SchemaHeaderHeight: 30,
		SchemaBodyPadding:  8,
	}
}

var geometryValidate = validator.New()

// Validate checks that sizes are positive and gaps are not negative.
func (g Geometry) Validate() error {
	return geometryValidate.Struct(g)
}

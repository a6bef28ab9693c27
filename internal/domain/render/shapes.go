package render

import (
	"fmt"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

// Shape kinds emitted into a chart specification.
const (
	KindCircle       = "circle"
	KindArcSegment   = "arc-segment"
	KindLine         = "line"
	KindText         = "text"
	KindPlanetGlyph  = "planet-glyph"
	KindAspectLine   = "aspect-line"
	KindHouseSegment = "house-segment"
	KindSignSegment  = "sign-segment"
	KindPath         = "path"
)

// Point is a position in canvas coordinates. The y axis grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is an opaque sRGB color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ColorFromHex parses "#rrggbb" or "rrggbb".
func ColorFromHex(hex string) (Color, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return Color{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("color %q is not a 6-digit hex value", hex), nil)
	}
	var c Color
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("color %q is not a 6-digit hex value", hex), err)
	}
	return c, nil
}

// CSSString renders the color in #rrggbb form.
func (c Color) CSSString() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Stroke styles an outline.
type Stroke struct {
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Shape is one drawable element. Fields beyond Kind are populated per kind;
// unused fields stay at their zero values and drop out of the encoding.
type Shape struct {
	Kind       string  `json:"kind"`
	Center     *Point  `json:"center,omitempty"`
	Radius     float64 `json:"radius,omitempty"`
	Start      *Point  `json:"start,omitempty"`
	End        *Point  `json:"end,omitempty"`
	StartAngle float64 `json:"startAngle,omitempty"`
	EndAngle   float64 `json:"endAngle,omitempty"`
	InnerRad   float64 `json:"innerRadius,omitempty"`
	OuterRad   float64 `json:"outerRadius,omitempty"`
	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	Glyph      string  `json:"glyph,omitempty"`
	LayerID    string  `json:"layerId,omitempty"`
	Object     string  `json:"object,omitempty"`
	AspectType string  `json:"aspectType,omitempty"`
	House      int     `json:"house,omitempty"`
	Sign       string  `json:"sign,omitempty"`
	Retrograde bool    `json:"retrograde,omitempty"`
	Fill       *Color  `json:"fill,omitempty"`
	Stroke     *Stroke `json:"stroke,omitempty"`
	PathData   string  `json:"pathData,omitempty"`
}

// ChartSpec is a renderer-agnostic drawing: a canvas plus an ordered shape
// list. Shapes draw in slice order, earlier shapes underneath later ones.
type ChartSpec struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Center          Point   `json:"center"`
	BackgroundColor Color   `json:"backgroundColor"`
	Shapes          []Shape `json:"shapes"`
}

// NewChartSpec builds an empty spec with the canvas center precomputed.
func NewChartSpec(width, height float64) ChartSpec {
	return ChartSpec{
		Width:           width,
		Height:          height,
		Center:          Point{X: width / 2, Y: height / 2},
		BackgroundColor: Color{R: 0xff, G: 0xff, B: 0xff},
	}
}

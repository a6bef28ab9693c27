package render

import (
	"math"
	"sort"

	"github.com/astrachart/astrachart/internal/domain/layout"
)

// AspectLine names one aspect to draw between two placed glyphs.
type AspectLine struct {
	LayerA  string
	ObjectA string
	LayerB  string
	ObjectB string
	Type    string
}

// Generator turns an assembled wheel into a chart specification.
type Generator struct {
	// Margin scales the outer wheel radius relative to the half canvas.
	Margin float64
}

// NewGenerator returns a generator with the standard margin.
func NewGenerator() Generator {
	return Generator{Margin: 0.9}
}

var signGlyphs = map[string]string{
	"aries": "♈", "taurus": "♉", "gemini": "♊", "cancer": "♋",
	"leo": "♌", "virgo": "♍", "libra": "♎", "scorpio": "♏",
	"sagittarius": "♐", "capricorn": "♑", "aquarius": "♒", "pisces": "♓",
}

var planetGlyphs = map[string]string{
	"sun": "☉", "moon": "☽", "mercury": "☿", "venus": "♀", "mars": "♂",
	"jupiter": "♃", "saturn": "♄", "uranus": "♅", "neptune": "♆",
	"pluto": "♇", "north_node": "☊", "south_node": "☋", "chiron": "⚷",
}

var aspectStrokes = map[string]Stroke{
	"conjunction": {Color: Color{R: 0x44, G: 0x44, B: 0x44}, Width: 1.5},
	"opposition":  {Color: Color{R: 0xd0, G: 0x3a, B: 0x3a}, Width: 1.5},
	"trine":       {Color: Color{R: 0x2e, G: 0x7d, B: 0x32}, Width: 1.5},
	"square":      {Color: Color{R: 0xd0, G: 0x3a, B: 0x3a}, Width: 1.5},
	"sextile":     {Color: Color{R: 0x2e, G: 0x7d, B: 0x32}, Width: 1.0},
}

var ringStroke = Stroke{Color: Color{R: 0x33, G: 0x33, B: 0x33}, Width: 1}

// Generate produces the ordered shape list for a wheel. Rings draw in their
// definition order; aspect lines draw last, sorted for a stable encoding.
// Lines whose endpoints were not placed as glyphs are dropped.
func (g Generator) Generate(wheel layout.Wheel, aspects []AspectLine, width, height float64) ChartSpec {
	margin := g.Margin
	if margin <= 0 || margin > 1 {
		margin = 0.9
	}
	spec := NewChartSpec(width, height)
	outer := math.Min(width, height) / 2 * margin

	for _, ring := range wheel.Rings {
		g.emitRing(&spec, ring, outer)
	}
	g.emitAspects(&spec, wheel, aspects, outer)
	return spec
}

func (g Generator) emitRing(spec *ChartSpec, ring layout.AssembledRing, outer float64) {
	inner := outer * ring.Ring.RadiusInner
	outerR := outer * ring.Ring.RadiusOuter

	// Boundary circles anchor the ring visually even when it holds no data.
	spec.Shapes = append(spec.Shapes,
		Shape{Kind: KindCircle, Center: &spec.Center, Radius: outerR, Stroke: strokePtr(ringStroke)},
		Shape{Kind: KindCircle, Center: &spec.Center, Radius: inner, Stroke: strokePtr(ringStroke)},
	)

	for _, seg := range ring.SignSegments {
		spec.Shapes = append(spec.Shapes, Shape{
			Kind:       KindSignSegment,
			Center:     &spec.Center,
			StartAngle: seg.StartAngle,
			EndAngle:   seg.EndAngle,
			InnerRad:   inner,
			OuterRad:   outerR,
			Sign:       seg.Sign,
			Stroke:     strokePtr(ringStroke),
		})
	}
	for _, seg := range ring.HouseSegments {
		spec.Shapes = append(spec.Shapes, Shape{
			Kind:       KindHouseSegment,
			Center:     &spec.Center,
			StartAngle: seg.StartAngle,
			EndAngle:   seg.EndAngle,
			InnerRad:   inner,
			OuterRad:   outerR,
			House:      seg.Number,
			Stroke:     strokePtr(ringStroke),
		})
	}

	// Labels follow their segments so they draw on top.
	mid := (inner + outerR) / 2
	for _, seg := range ring.SignSegments {
		at := g.pointAt(spec.Center, mid, midAngle(seg.StartAngle, seg.EndAngle))
		spec.Shapes = append(spec.Shapes, Shape{
			Kind:     KindText,
			Center:   &at,
			Text:     signGlyphs[seg.Sign],
			Sign:     seg.Sign,
			FontSize: (outerR - inner) * 0.6,
		})
	}
	for _, seg := range ring.HouseSegments {
		at := g.pointAt(spec.Center, mid, midAngle(seg.StartAngle, seg.EndAngle))
		spec.Shapes = append(spec.Shapes, Shape{
			Kind:     KindText,
			Center:   &at,
			Text:     houseNumeral(seg.Number),
			House:    seg.Number,
			FontSize: (outerR - inner) * 0.5,
		})
	}

	for _, glyph := range ring.Glyphs {
		at := g.pointAt(spec.Center, outer*glyph.Radius, glyph.Angle)
		spec.Shapes = append(spec.Shapes, Shape{
			Kind:       KindPlanetGlyph,
			Center:     &at,
			Glyph:      planetGlyphs[glyph.Object],
			LayerID:    glyph.LayerID,
			Object:     glyph.Object,
			Retrograde: glyph.Retrograde,
			FontSize:   (outerR - inner) / 3,
		})
	}
}

func (g Generator) emitAspects(spec *ChartSpec, wheel layout.Wheel, aspects []AspectLine, outer float64) {
	lines := make([]Shape, 0, len(aspects))
	for _, a := range aspects {
		ga, okA := wheel.Glyph(a.LayerA, a.ObjectA)
		gb, okB := wheel.Glyph(a.LayerB, a.ObjectB)
		if !okA || !okB {
			continue
		}
		// Endpoints sit on the inner edge of each glyph's ring band.
		start := g.pointAt(spec.Center, outer*ga.Radius, ga.Angle)
		end := g.pointAt(spec.Center, outer*gb.Radius, gb.Angle)
		stroke := aspectStrokes[a.Type]
		if stroke.Width == 0 {
			stroke = ringStroke
		}
		lines = append(lines, Shape{
			Kind:       KindAspectLine,
			Start:      &start,
			End:        &end,
			AspectType: a.Type,
			LayerID:    a.LayerA,
			Object:     a.ObjectA,
			Stroke:     strokePtr(stroke),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].AspectType != lines[j].AspectType {
			return lines[i].AspectType < lines[j].AspectType
		}
		if lines[i].Object != lines[j].Object {
			return lines[i].Object < lines[j].Object
		}
		return lines[i].Start.X < lines[j].Start.X
	})
	spec.Shapes = append(spec.Shapes, lines...)
}

// pointAt converts a polar position to canvas coordinates. Angles run
// counterclockwise from the positive x axis in screen space.
func (g Generator) pointAt(center Point, radius, angleDeg float64) Point {
	rad := angleDeg * math.Pi / 180
	return Point{
		X: center.X + radius*math.Cos(rad),
		Y: center.Y + radius*math.Sin(rad),
	}
}

func midAngle(start, end float64) float64 {
	diff := math.Mod(start-end+360, 360)
	return math.Mod(end+diff/2, 360)
}

func houseNumeral(n int) string {
	numerals := []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}
	if n < 1 || n > 12 {
		return ""
	}
	return numerals[n-1]
}

func strokePtr(s Stroke) *Stroke {
	return &s
}

package layout

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

// Planet is one plotted point supplied to the assembler.
type Planet struct {
	Object     string
	Longitude  float64
	Retrograde bool
}

// Houses carries a layer's twelve cusps and its ascendant.
type Houses struct {
	Cusps     [12]float64
	Ascendant float64
}

// LayerData is the assembler's view of one computed layer. Houses is nil for
// layers whose house system yields no cusps at that latitude or kind.
type LayerData struct {
	Planets []Planet
	Houses  *Houses
}

// Options tunes glyph placement.
type Options struct {
	// MinGlyphSeparation is the angular distance in degrees below which two
	// glyphs are considered colliding.
	MinGlyphSeparation float64
	// GlyphBands is the number of radial bands colliding glyphs fan out over.
	GlyphBands int
}

// DefaultOptions returns the standard placement tuning.
func DefaultOptions() Options {
	return Options{MinGlyphSeparation: 7, GlyphBands: 3}
}

// SignSegment is one thirty-degree arc of a signs ring.
type SignSegment struct {
	Sign       string
	Index      int
	StartAngle float64
	EndAngle   float64
}

// HouseSegment is one house arc of a houses ring.
type HouseSegment struct {
	Number     int
	StartAngle float64
	EndAngle   float64
}

// GlyphPlacement is one plotted glyph: its true longitude, its screen angle
// and the radius it was banded to.
type GlyphPlacement struct {
	LayerID    string
	Object     string
	Longitude  float64
	Angle      float64
	Radius     float64
	Retrograde bool
}

// AssembledRing is one ring with its drawable contents resolved.
type AssembledRing struct {
	Ring          Ring
	SignSegments  []SignSegment
	HouseSegments []HouseSegment
	Glyphs        []GlyphPlacement
}

// Wheel is the fully assembled layout, ready for shape generation.
type Wheel struct {
	Definition      Definition
	AscendantAnchor float64
	Rings           []AssembledRing
}

// Glyph looks up a placed glyph by layer and object across all rings.
func (w Wheel) Glyph(layerID, object string) (GlyphPlacement, bool) {
	for _, ring := range w.Rings {
		for _, g := range ring.Glyphs {
			if g.LayerID == layerID && g.Object == object {
				return g, true
			}
		}
	}
	return GlyphPlacement{}, false
}

var zodiacSigns = [12]string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

// Assemble resolves a definition against computed layer data. The wheel is
// rotated so the anchor layer's ascendant sits at screen angle 180° (the left
// edge), with the zodiac running counterclockwise.
func Assemble(def Definition, layers map[string]LayerData, opts Options) (Wheel, error) {
	if err := def.Validate(); err != nil {
		return Wheel{}, err
	}
	if opts.MinGlyphSeparation <= 0 {
		opts.MinGlyphSeparation = 7
	}
	if opts.GlyphBands <= 0 {
		opts.GlyphBands = 3
	}

	rings := append([]Ring(nil), def.Rings...)
	sort.SliceStable(rings, func(i, j int) bool { return rings[i].OrderIndex < rings[j].OrderIndex })

	anchor := anchorAscendant(rings, layers)
	wheel := Wheel{Definition: def, AscendantAnchor: anchor}

	for _, ring := range rings {
		assembled := AssembledRing{Ring: ring}
		switch ring.DataSource.Kind {
		case SourceStaticZodiac:
			assembled.SignSegments = buildSignSegments(anchor)
		case SourceLayerHouses:
			layer, ok := layers[ring.DataSource.LayerID]
			if !ok {
				return Wheel{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("ring %q references unknown layer %q", ring.Slug, ring.DataSource.LayerID), nil)
			}
			if layer.Houses == nil {
				// House systems that yield no cusps leave the ring empty.
				break
			}
			assembled.HouseSegments = buildHouseSegments(*layer.Houses, anchor)
		case SourceLayerPlanets:
			layer, ok := layers[ring.DataSource.LayerID]
			if !ok {
				return Wheel{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("ring %q references unknown layer %q", ring.Slug, ring.DataSource.LayerID), nil)
			}
			assembled.Glyphs = placeGlyphs(ring, layer.Planets, anchor, opts)
		}
		wheel.Rings = append(wheel.Rings, assembled)
	}
	return wheel, nil
}

// anchorAscendant picks the rotation anchor: the ascendant of the first
// layer-sourced ring whose layer carries houses.
func anchorAscendant(rings []Ring, layers map[string]LayerData) float64 {
	for _, ring := range rings {
		if ring.DataSource.LayerID == "" {
			continue
		}
		if layer, ok := layers[ring.DataSource.LayerID]; ok && layer.Houses != nil {
			return layer.Houses.Ascendant
		}
	}
	return 0
}

// screenAngle maps an ecliptic longitude to a screen angle in degrees,
// measured counterclockwise from the positive x axis. The anchor ascendant
// lands at 180°.
func screenAngle(lon, anchor float64) float64 {
	return normalizeDegrees(180 - (lon - anchor))
}

func normalizeDegrees(deg float64) float64 {
	norm := math.Mod(deg, 360)
	if norm < 0 {
		norm += 360
	}
	return norm
}

func buildSignSegments(anchor float64) []SignSegment {
	segments := make([]SignSegment, 0, 12)
	for i := 0; i < 12; i++ {
		start := float64(i) * 30
		segments = append(segments, SignSegment{
			Sign:       zodiacSigns[i],
			Index:      i,
			StartAngle: screenAngle(start, anchor),
			EndAngle:   screenAngle(start+30, anchor),
		})
	}
	return segments
}

func buildHouseSegments(houses Houses, anchor float64) []HouseSegment {
	segments := make([]HouseSegment, 0, 12)
	for i := 0; i < 12; i++ {
		start := houses.Cusps[i]
		end := houses.Cusps[(i+1)%12]
		segments = append(segments, HouseSegment{
			Number:     i + 1,
			StartAngle: screenAngle(start, anchor),
			EndAngle:   screenAngle(end, anchor),
		})
	}
	return segments
}

// placeGlyphs assigns each planet a screen angle and a radial band. Planets
// are sorted by longitude; runs whose gaps fall below the minimum separation
// form a cluster, and cluster members cycle outward through the ring's bands
// so overlapping glyphs stay legible. Gaps are measured cyclically, so a
// cluster straddling 0° is detected like any other.
func placeGlyphs(ring Ring, planets []Planet, anchor float64, opts Options) []GlyphPlacement {
	if len(planets) == 0 {
		return nil
	}
	ordered := append([]Planet(nil), planets...)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := normalizeDegrees(ordered[i].Longitude), normalizeDegrees(ordered[j].Longitude)
		if li != lj {
			return li < lj
		}
		return ordered[i].Object < ordered[j].Object
	})

	n := len(ordered)
	// breaks[i] marks a glyph whose cyclic gap to its predecessor opens a new
	// cluster. With no break anywhere, all glyphs form one cluster.
	breaks := make([]bool, n)
	firstBreak := -1
	for i := 0; i < n; i++ {
		prev := (i + n - 1) % n
		gap := normalizeDegrees(ordered[i].Longitude) - normalizeDegrees(ordered[prev].Longitude)
		if gap < 0 {
			gap += 360
		}
		if n == 1 || gap >= opts.MinGlyphSeparation {
			breaks[i] = true
			if firstBreak == -1 {
				firstBreak = i
			}
		}
	}
	start := firstBreak
	if start == -1 {
		start = 0
	}

	bands := make([]int, n)
	clusterPos := 0
	for k := 0; k < n; k++ {
		i := (start + k) % n
		if breaks[i] {
			clusterPos = 0
		} else if k > 0 {
			clusterPos++
		}
		bands[i] = clusterPos % opts.GlyphBands
	}

	bandWidth := (ring.RadiusOuter - ring.RadiusInner) / float64(opts.GlyphBands)
	placements := make([]GlyphPlacement, 0, n)
	for i, p := range ordered {
		radius := ring.RadiusInner + bandWidth*(float64(bands[i])+0.5)
		placements = append(placements, GlyphPlacement{
			LayerID:    ring.DataSource.LayerID,
			Object:     p.Object,
			Longitude:  normalizeDegrees(p.Longitude),
			Angle:      screenAngle(p.Longitude, anchor),
			Radius:     radius,
			Retrograde: p.Retrograde,
		})
	}
	return placements
}

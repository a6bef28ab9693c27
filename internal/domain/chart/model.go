package chart

import (
	"encoding/json"
	"time"

	"github.com/astrachart/astrachart/internal/domain/render"
	"github.com/astrachart/astrachart/internal/domain/vedic"
	"github.com/astrachart/astrachart/internal/domain/western"
	"github.com/astrachart/astrachart/pkg/metrics"
)

// Layer kinds accepted by the pipeline.
const (
	KindNatal      = "natal"
	KindTransit    = "transit"
	KindProgressed = "progressed"
)

// Zodiac types.
const (
	ZodiacTropical = "tropical"
	ZodiacSidereal = "sidereal"
)

// Location is a geographic point used for house calculations.
type Location struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Subject identifies a person or event whose chart is being computed.
type Subject struct {
	ID            string    `json:"id"`
	Label         string    `json:"label,omitempty"`
	BirthDateTime string    `json:"birthDateTime,omitempty"`
	Location      *Location `json:"location,omitempty"`
}

// LayerConfig declares how a single layer should be resolved.
type LayerConfig struct {
	Kind             string    `json:"kind"`
	SubjectID        string    `json:"subjectId,omitempty"`
	ExplicitDateTime string    `json:"explicitDateTime,omitempty"`
	Location         *Location `json:"location,omitempty"`
}

// OrbSettings carries the allowed tolerance per aspect type, in degrees.
type OrbSettings struct {
	Conjunction float64 `json:"conjunction"`
	Opposition  float64 `json:"opposition"`
	Trine       float64 `json:"trine"`
	Square      float64 `json:"square"`
	Sextile     float64 `json:"sextile"`
}

// DefaultOrbSettings returns the orb table used when a request supplies none.
func DefaultOrbSettings() OrbSettings {
	return OrbSettings{
		Conjunction: 8,
		Opposition:  8,
		Trine:       7,
		Square:      6,
		Sextile:     4,
	}
}

// VedicConfig toggles the Vedic annotations and dasha computation.
type VedicConfig struct {
	IncludeNakshatras        bool     `json:"includeNakshatras"`
	IncludeAnglesInNakshatra bool     `json:"includeAnglesInNakshatra"`
	NakshatraObjects         []string `json:"nakshatraObjects,omitempty"`
	Vargas                   []string `json:"vargas,omitempty"`
	IncludeDashas            bool     `json:"includeDashas"`
	DashaSystems             []string `json:"dashaSystems,omitempty"`
	DashasDepth              string   `json:"dashasDepth,omitempty"`
	IncludeYogas             bool     `json:"includeYogas"`
}

// ChartSettings is the effective configuration for one render request.
type ChartSettings struct {
	ZodiacType     string       `json:"zodiacType"`
	Ayanamsa       string       `json:"ayanamsa,omitempty"`
	HouseSystem    string       `json:"houseSystem"`
	OrbSettings    OrbSettings  `json:"orbSettings"`
	IncludeObjects []string     `json:"includeObjects"`
	VedicConfig    *VedicConfig `json:"vedicConfig,omitempty"`
}

// DefaultSettings returns the baseline settings requests are merged onto.
func DefaultSettings() ChartSettings {
	return ChartSettings{
		ZodiacType:     ZodiacTropical,
		HouseSystem:    "whole_sign",
		OrbSettings:    DefaultOrbSettings(),
		IncludeObjects: []string{"sun", "moon", "mercury", "venus", "mars", "jupiter", "saturn"},
	}
}

// RenderRequest is the pipeline input.
type RenderRequest struct {
	Subjects         []Subject                  `json:"subjects"`
	Settings         ChartSettings              `json:"settings"`
	LayerConfig      map[string]LayerConfig     `json:"layerConfig"`
	SettingsOverride map[string]json.RawMessage `json:"settingsOverride,omitempty"`
}

// PlanetPosition is one object's ecliptic position within a layer.
type PlanetPosition struct {
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	SpeedLon   float64 `json:"speedLon"`
	Retrograde bool    `json:"retrograde"`
}

// HousePositions holds the twelve cusps plus the four angles for a layer.
// Cusps are keyed "1".."12"; angles are keyed asc, mc, ic, dc.
type HousePositions struct {
	System string             `json:"system"`
	Cusps  map[string]float64 `json:"cusps"`
	Angles map[string]float64 `json:"angles"`
}

// LayerPositions is everything the gateway produced for one layer.
type LayerPositions struct {
	Planets map[string]PlanetPosition `json:"planets"`
	Houses  *HousePositions           `json:"houses,omitempty"`
}

// EphemerisSettings is the settings subset the gateway needs.
type EphemerisSettings struct {
	ZodiacType     string
	Ayanamsa       string
	HouseSystem    string
	IncludeObjects []string
}

// LayerContext is a fully resolved layer, ready for a gateway call.
type LayerContext struct {
	LayerID  string
	Kind     string
	DateTime time.Time
	Location *Location
	Settings EphemerisSettings
}

// LayerResult is the per-layer slice of a computed dataset.
type LayerResult struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	DateTime  time.Time      `json:"dateTime"`
	Location  *Location      `json:"location,omitempty"`
	Positions LayerPositions `json:"positions"`
}

// Result is the normalized position dataset for a request. It is the unit
// the result cache stores, so it must not carry per-invocation data.
type Result struct {
	Layers   map[string]LayerResult       `json:"layers"`
	Settings ChartSettings                `json:"settings"`
	Vedic    *vedic.Payload               `json:"vedic,omitempty"`
	Western  map[string]western.LayerData `json:"western,omitempty"`
}

// AspectType names one of the major aspects.
type AspectType string

const (
	AspectConjunction AspectType = "conjunction"
	AspectSextile     AspectType = "sextile"
	AspectSquare      AspectType = "square"
	AspectTrine       AspectType = "trine"
	AspectOpposition  AspectType = "opposition"
)

// CanonicalAngle returns the exact angle the aspect type represents.
func (t AspectType) CanonicalAngle() float64 {
	switch t {
	case AspectConjunction:
		return 0
	case AspectSextile:
		return 60
	case AspectSquare:
		return 90
	case AspectTrine:
		return 120
	case AspectOpposition:
		return 180
	}
	return 0
}

// aspectTypes is the closed major set, in canonical-angle order.
var aspectTypes = []AspectType{
	AspectConjunction,
	AspectSextile,
	AspectSquare,
	AspectTrine,
	AspectOpposition,
}

// Aspect records one matched angular relationship between two objects.
// Orb is the signed difference between the separation and the canonical
// angle; its magnitude never exceeds the configured tolerance.
type Aspect struct {
	LayerA     string     `json:"layerA"`
	ObjectA    string     `json:"objectA"`
	LayerB     string     `json:"layerB"`
	ObjectB    string     `json:"objectB"`
	Type       AspectType `json:"type"`
	Separation float64    `json:"separation"`
	Orb        float64    `json:"orb"`
}

// SpecResult bundles everything the chartspec endpoint returns. Timing is
// per-invocation and deliberately lives outside the cached Result.
type SpecResult struct {
	ChartID   string                 `json:"chartId"`
	Spec      render.ChartSpec       `json:"spec"`
	Ephemeris Result                 `json:"ephemeris"`
	Aspects   []Aspect               `json:"aspects"`
	Timing    metrics.PipelineTiming `json:"timing"`
}

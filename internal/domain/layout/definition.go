package layout

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

// Ring type and data-source kind catalogs.
const (
	RingSigns   = "signs"
	RingHouses  = "houses"
	RingPlanets = "planets"

	SourceStaticZodiac = "static_zodiac"
	SourceLayerHouses  = "layer_houses"
	SourceLayerPlanets = "layer_planets"
)

// DataSource binds a ring to its data: the static zodiac or a named layer's
// houses or planets.
type DataSource struct {
	Kind    string `json:"kind"`
	LayerID string `json:"layerId,omitempty"`
}

// Ring is one concentric band of a wheel. Radii are fractions of the outer
// wheel radius; rings draw in ascending OrderIndex.
type Ring struct {
	Slug        string     `json:"slug"`
	Type        string     `json:"type"`
	Label       string     `json:"label,omitempty"`
	OrderIndex  int        `json:"orderIndex"`
	RadiusInner float64    `json:"radiusInner"`
	RadiusOuter float64    `json:"radiusOuter"`
	DataSource  DataSource `json:"dataSource"`
}

// Definition is a named wheel layout.
type Definition struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Rings []Ring `json:"rings"`
}

// ParseDefinition decodes and validates a wheel definition document.
func ParseDefinition(raw []byte) (Definition, error) {
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return Definition{}, apperrors.Wrap(apperrors.CodeInvalidInput, "wheel definition is not valid JSON", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Validate checks the structural rules every wheel must satisfy.
func (d Definition) Validate() error {
	if len(d.Rings) == 0 {
		return invalid("wheel definition must contain at least one ring")
	}
	seen := make(map[string]struct{}, len(d.Rings))
	for i, ring := range d.Rings {
		if ring.Slug == "" {
			return invalid(fmt.Sprintf("ring %d is missing a slug", i))
		}
		if _, dup := seen[ring.Slug]; dup {
			return invalid(fmt.Sprintf("duplicate ring slug %q", ring.Slug))
		}
		seen[ring.Slug] = struct{}{}
		if err := ring.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r Ring) validate() error {
	switch r.Type {
	case RingSigns, RingHouses, RingPlanets:
	default:
		return invalid(fmt.Sprintf("ring %q has unknown type %q", r.Slug, r.Type))
	}
	if r.RadiusInner < 0 || r.RadiusOuter > 1 || r.RadiusInner >= r.RadiusOuter {
		return invalid(fmt.Sprintf("ring %q radii must satisfy 0 <= inner < outer <= 1, got [%g, %g]", r.Slug, r.RadiusInner, r.RadiusOuter))
	}
	switch r.DataSource.Kind {
	case SourceStaticZodiac:
		if r.Type != RingSigns {
			return invalid(fmt.Sprintf("ring %q: static_zodiac source requires a signs ring", r.Slug))
		}
	case SourceLayerHouses:
		if r.Type != RingHouses {
			return invalid(fmt.Sprintf("ring %q: layer_houses source requires a houses ring", r.Slug))
		}
		if r.DataSource.LayerID == "" {
			return invalid(fmt.Sprintf("ring %q: layer_houses source requires a layerId", r.Slug))
		}
	case SourceLayerPlanets:
		if r.Type != RingPlanets {
			return invalid(fmt.Sprintf("ring %q: layer_planets source requires a planets ring", r.Slug))
		}
		if r.DataSource.LayerID == "" {
			return invalid(fmt.Sprintf("ring %q: layer_planets source requires a layerId", r.Slug))
		}
	default:
		return invalid(fmt.Sprintf("ring %q has unknown data source kind %q", r.Slug, r.DataSource.Kind))
	}
	return nil
}

func invalid(msg string) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, msg, nil)
}

// DefaultDefinition is the built-in natal wheel used when no slug is given.
func DefaultDefinition() Definition {
	return Definition{
		Slug: "standard_natal",
		Name: "Standard Natal Wheel",
		Rings: []Ring{
			{
				Slug:        "zodiac",
				Type:        RingSigns,
				Label:       "Zodiac",
				OrderIndex:  0,
				RadiusInner: 0.85,
				RadiusOuter: 1.0,
				DataSource:  DataSource{Kind: SourceStaticZodiac},
			},
			{
				Slug:        "houses",
				Type:        RingHouses,
				Label:       "Houses",
				OrderIndex:  1,
				RadiusInner: 0.75,
				RadiusOuter: 0.85,
				DataSource:  DataSource{Kind: SourceLayerHouses, LayerID: "natal"},
			},
			{
				Slug:        "planets",
				Type:        RingPlanets,
				Label:       "Planets",
				OrderIndex:  2,
				RadiusInner: 0.55,
				RadiusOuter: 0.75,
				DataSource:  DataSource{Kind: SourceLayerPlanets, LayerID: "natal"},
			},
		},
	}
}

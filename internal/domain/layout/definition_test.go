package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

func TestParseDefinitionValid(t *testing.T) {
	raw := []byte(`{
		"slug": "compact",
		"name": "Compact Wheel",
		"rings": [
			{"slug": "zodiac", "type": "signs", "orderIndex": 0, "radiusInner": 0.85, "radiusOuter": 1.0, "dataSource": {"kind": "static_zodiac"}},
			{"slug": "planets", "type": "planets", "orderIndex": 1, "radiusInner": 0.5, "radiusOuter": 0.85, "dataSource": {"kind": "layer_planets", "layerId": "natal"}}
		]
	}`)
	def, err := ParseDefinition(raw)
	require.NoError(t, err)
	require.Equal(t, "compact", def.Slug)
	require.Len(t, def.Rings, 2)
	require.Equal(t, "natal", def.Rings[1].DataSource.LayerID)
}

func TestParseDefinitionMalformedJSON(t *testing.T) {
	_, err := ParseDefinition([]byte(`{"slug": `))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestDefinitionValidateFailures(t *testing.T) {
	base := func() Definition {
		return Definition{
			Slug: "w",
			Name: "W",
			Rings: []Ring{
				{
					Slug:        "zodiac",
					Type:        RingSigns,
					OrderIndex:  0,
					RadiusInner: 0.85,
					RadiusOuter: 1.0,
					DataSource:  DataSource{Kind: SourceStaticZodiac},
				},
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Definition)
	}{
		{name: "no rings", mutate: func(d *Definition) { d.Rings = nil }},
		{name: "missing ring slug", mutate: func(d *Definition) { d.Rings[0].Slug = "" }},
		{name: "duplicate ring slug", mutate: func(d *Definition) {
			d.Rings = append(d.Rings, d.Rings[0])
		}},
		{name: "unknown ring type", mutate: func(d *Definition) { d.Rings[0].Type = "asteroids" }},
		{name: "inverted radii", mutate: func(d *Definition) {
			d.Rings[0].RadiusInner = 1.0
			d.Rings[0].RadiusOuter = 0.85
		}},
		{name: "radius above one", mutate: func(d *Definition) { d.Rings[0].RadiusOuter = 1.2 }},
		{name: "unknown source kind", mutate: func(d *Definition) { d.Rings[0].DataSource.Kind = "random" }},
		{name: "houses source on signs ring", mutate: func(d *Definition) {
			d.Rings[0].DataSource = DataSource{Kind: SourceLayerHouses, LayerID: "natal"}
		}},
		{name: "layer source without layer id", mutate: func(d *Definition) {
			d.Rings[0].Type = RingPlanets
			d.Rings[0].DataSource = DataSource{Kind: SourceLayerPlanets}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := base()
			tc.mutate(&def)
			err := def.Validate()
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		})
	}
}

func TestDefaultDefinitionIsValid(t *testing.T) {
	def := DefaultDefinition()
	require.NoError(t, def.Validate())
	require.Equal(t, "standard_natal", def.Slug)
	require.Len(t, def.Rings, 3)
}

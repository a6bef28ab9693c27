package ephemeris

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astrachart/astrachart/internal/domain/chart"
	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

var (
	testInstant  = time.Date(1990, time.March, 15, 6, 30, 0, 0, time.UTC)
	testLocation = &chart.Location{Lat: 1.3521, Lon: 103.8198}
)

func testGateway() *AnalyticGateway {
	return NewAnalyticGateway(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func tropicalSettings(objects ...string) chart.EphemerisSettings {
	return chart.EphemerisSettings{
		ZodiacType:     chart.ZodiacTropical,
		HouseSystem:    "whole_sign",
		IncludeObjects: objects,
	}
}

func TestPositionsSouthNodeOppositeNorthNode(t *testing.T) {
	got, err := testGateway().Positions(context.Background(), testInstant, nil,
		tropicalSettings("north_node", "south_node"))
	require.NoError(t, err)

	north := got.Planets["north_node"].Lon
	south := got.Planets["south_node"].Lon
	require.InDelta(t, 180, math.Abs(shortestArc(south, north)), 1e-9)
}

func TestPositionsMeanNodeRegresses(t *testing.T) {
	got, err := testGateway().Positions(context.Background(), testInstant, nil,
		tropicalSettings("north_node"))
	require.NoError(t, err)

	node := got.Planets["north_node"]
	require.True(t, node.Retrograde)
	require.Less(t, node.SpeedLon, 0.0)
	require.InDelta(t, -0.0529, node.SpeedLon, 0.001)
}

func TestPositionsSunSpeed(t *testing.T) {
	got, err := testGateway().Positions(context.Background(), testInstant, nil,
		tropicalSettings("sun"))
	require.NoError(t, err)

	sun := got.Planets["sun"]
	require.False(t, sun.Retrograde)
	require.InDelta(t, 0.9856, sun.SpeedLon, 0.001)
}

func TestPositionsMoonSpeed(t *testing.T) {
	got, err := testGateway().Positions(context.Background(), testInstant, nil,
		tropicalSettings("moon"))
	require.NoError(t, err)

	moon := got.Planets["moon"]
	require.False(t, moon.Retrograde)
	// Mean motion plus equation of center stays near 13 degrees per day.
	require.InDelta(t, 13.18, moon.SpeedLon, 1.5)
}

func TestPositionsUnknownObject(t *testing.T) {
	_, err := testGateway().Positions(context.Background(), testInstant, nil,
		tropicalSettings("vulcan"))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeCalculation))
}

func TestPositionsNoLocationNoHouses(t *testing.T) {
	got, err := testGateway().Positions(context.Background(), testInstant, nil,
		tropicalSettings("sun"))
	require.NoError(t, err)
	require.Nil(t, got.Houses)
}

func TestPositionsWholeSignCusps(t *testing.T) {
	got, err := testGateway().Positions(context.Background(), testInstant, testLocation,
		tropicalSettings("sun"))
	require.NoError(t, err)
	require.NotNil(t, got.Houses)
	require.Equal(t, "whole_sign", got.Houses.System)
	require.Len(t, got.Houses.Cusps, 12)

	first := got.Houses.Cusps["1"]
	require.InDelta(t, 0, math.Mod(first, 30), 1e-9)
	require.InDelta(t, normalize(first+30), got.Houses.Cusps["2"], 1e-9)
}

func TestPositionsEqualCuspsFromAscendant(t *testing.T) {
	settings := tropicalSettings("sun")
	settings.HouseSystem = "equal"
	got, err := testGateway().Positions(context.Background(), testInstant, testLocation, settings)
	require.NoError(t, err)
	require.NotNil(t, got.Houses)

	asc := got.Houses.Angles["asc"]
	for i := 0; i < 12; i++ {
		require.InDelta(t, normalize(asc+float64(i)*30), got.Houses.Cusps[cuspKey(i+1)], 1e-9)
	}
}

func TestPositionsPorphyryCuspsAnchorAngles(t *testing.T) {
	settings := tropicalSettings("sun")
	settings.HouseSystem = "porphyry"
	got, err := testGateway().Positions(context.Background(), testInstant, testLocation, settings)
	require.NoError(t, err)
	require.NotNil(t, got.Houses)

	angles := got.Houses.Angles
	require.InDelta(t, angles["asc"], got.Houses.Cusps["1"], 1e-9)
	require.InDelta(t, angles["ic"], got.Houses.Cusps["4"], 1e-9)
	require.InDelta(t, angles["dc"], got.Houses.Cusps["7"], 1e-9)
	require.InDelta(t, angles["mc"], got.Houses.Cusps["10"], 1e-9)
}

func TestPositionsAngles(t *testing.T) {
	got, err := testGateway().Positions(context.Background(), testInstant, testLocation,
		tropicalSettings("sun"))
	require.NoError(t, err)
	require.NotNil(t, got.Houses)

	angles := got.Houses.Angles
	require.Contains(t, angles, "asc")
	require.Contains(t, angles, "mc")
	require.InDelta(t, normalize(angles["mc"]+180), angles["ic"], 1e-9)
	require.InDelta(t, normalize(angles["asc"]+180), angles["dc"], 1e-9)
}

func TestPositionsUnsupportedHouseSystem(t *testing.T) {
	settings := tropicalSettings("sun")
	settings.HouseSystem = "placidus"
	_, err := testGateway().Positions(context.Background(), testInstant, testLocation, settings)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeCalculation))
}

func TestPositionsSiderealShiftsLongitudes(t *testing.T) {
	tropical, err := testGateway().Positions(context.Background(), testInstant, nil,
		tropicalSettings("sun"))
	require.NoError(t, err)

	settings := tropicalSettings("sun")
	settings.ZodiacType = chart.ZodiacSidereal
	settings.Ayanamsa = "lahiri"
	sidereal, err := testGateway().Positions(context.Background(), testInstant, nil, settings)
	require.NoError(t, err)

	shift := shortestArc(tropical.Planets["sun"].Lon, sidereal.Planets["sun"].Lon)
	// Lahiri ayanamsa is a bit under 24 degrees for 1990.
	require.InDelta(t, 23.7, shift, 0.5)
}

func TestPositionsSiderealUnknownAyanamsa(t *testing.T) {
	settings := tropicalSettings("sun")
	settings.ZodiacType = chart.ZodiacSidereal
	settings.Ayanamsa = "atlantean"
	_, err := testGateway().Positions(context.Background(), testInstant, nil, settings)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeCalculation))
}

func TestPositionsDeterministic(t *testing.T) {
	settings := tropicalSettings("sun", "moon", "mercury", "venus", "mars", "jupiter", "saturn")
	first, err := testGateway().Positions(context.Background(), testInstant, testLocation, settings)
	require.NoError(t, err)
	second, err := testGateway().Positions(context.Background(), testInstant, testLocation, settings)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

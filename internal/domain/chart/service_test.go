package chart

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astrachart/astrachart/internal/domain/layout"
	"github.com/astrachart/astrachart/internal/domain/render"
	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

type stubGateway struct {
	calls     atomic.Int64
	positions map[string]float64
	houses    *HousePositions
	err       error
}

func (g *stubGateway) Positions(_ context.Context, _ time.Time, location *Location, _ EphemerisSettings) (LayerPositions, error) {
	g.calls.Add(1)
	if g.err != nil {
		return LayerPositions{}, g.err
	}
	planets := make(map[string]PlanetPosition, len(g.positions))
	for obj, lon := range g.positions {
		planets[obj] = PlanetPosition{Lon: lon, SpeedLon: 1}
	}
	result := LayerPositions{Planets: planets}
	if location != nil && g.houses != nil {
		result.Houses = g.houses
	}
	return result, nil
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]Result
	gets    int
	puts    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]Result)}
}

func (c *mapCache) Get(_ context.Context, key string) (Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *mapCache) Put(_ context.Context, key string, value Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[key] = value
	return nil
}

type mapWheels struct{}

func (mapWheels) Get(_ context.Context, slug string) (layout.Definition, bool, error) {
	if slug == "standard_natal" {
		return layout.DefaultDefinition(), true, nil
	}
	return layout.Definition{}, false, nil
}

func (mapWheels) List(_ context.Context) ([]layout.Definition, error) {
	return []layout.Definition{layout.DefaultDefinition()}, nil
}

type mapSpecs struct {
	mu    sync.Mutex
	specs map[string]render.ChartSpec
}

func newMapSpecs() *mapSpecs {
	return &mapSpecs{specs: make(map[string]render.ChartSpec)}
}

func (s *mapSpecs) Save(_ context.Context, id string, spec render.ChartSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[id] = spec
	return nil
}

func (s *mapSpecs) Get(_ context.Context, id string) (render.ChartSpec, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.specs[id]
	return spec, ok, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultStubGateway() *stubGateway {
	return &stubGateway{
		positions: map[string]float64{
			"sun":     10,
			"moon":    95.5,
			"mercury": 25,
			"venus":   130,
			"mars":    200,
			"jupiter": 310,
			"saturn":  100,
		},
		houses: &HousePositions{
			System: "whole_sign",
			Cusps: map[string]float64{
				"1": 90, "2": 120, "3": 150, "4": 180, "5": 210, "6": 240,
				"7": 270, "8": 300, "9": 330, "10": 0, "11": 30, "12": 60,
			},
			Angles: map[string]float64{"asc": 100, "mc": 10, "ic": 190, "dc": 280},
		},
	}
}

func newTestService(gateway *stubGateway, cache *mapCache, specs *mapSpecs) Service {
	return NewService(gateway, cache, mapWheels{}, specs, DefaultConfig(), testLogger())
}

func TestPositionsComputesAllLayers(t *testing.T) {
	gateway := defaultStubGateway()
	svc := newTestService(gateway, newMapCache(), newMapSpecs())

	result, timing, err := svc.Positions(context.Background(), validRequest())
	require.NoError(t, err)
	require.False(t, timing.CacheHit)
	require.Len(t, result.Layers, 2)
	require.Contains(t, result.Layers, "natal")
	require.Contains(t, result.Layers, "transit")
	require.EqualValues(t, 2, gateway.calls.Load())

	natal := result.Layers["natal"]
	require.NotNil(t, natal.Positions.Houses)
	require.InDelta(t, 10, natal.Positions.Planets["sun"].Lon, 1e-9)
}

func TestPositionsSecondCallHitsCache(t *testing.T) {
	gateway := defaultStubGateway()
	cache := newMapCache()
	svc := newTestService(gateway, cache, newMapSpecs())

	first, _, err := svc.Positions(context.Background(), validRequest())
	require.NoError(t, err)

	second, timing, err := svc.Positions(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, timing.CacheHit)
	require.Equal(t, first, second)
	require.EqualValues(t, 2, gateway.calls.Load())
	require.Equal(t, 1, cache.puts)
}

func TestPositionsValidationFailsBeforeGateway(t *testing.T) {
	gateway := defaultStubGateway()
	svc := newTestService(gateway, newMapCache(), newMapSpecs())

	req := validRequest()
	req.Subjects = nil
	_, _, err := svc.Positions(context.Background(), req)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.EqualValues(t, 0, gateway.calls.Load())
}

func TestPositionsGatewayFailureIsCalculationError(t *testing.T) {
	gateway := defaultStubGateway()
	gateway.err = apperrors.Wrap(apperrors.CodeCalculation, "ephemeris exploded", nil)
	svc := newTestService(gateway, newMapCache(), newMapSpecs())

	_, _, err := svc.Positions(context.Background(), validRequest())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeCalculation))
}

func TestPositionsBuildsVedicPayload(t *testing.T) {
	svc := newTestService(defaultStubGateway(), newMapCache(), newMapSpecs())

	req := validRequest()
	req.Settings = DefaultSettings()
	req.Settings.VedicConfig = &VedicConfig{
		IncludeNakshatras: true,
		IncludeDashas:     true,
		DashaSystems:      []string{"vimshottari"},
		DashasDepth:       "antardasha",
	}

	result, _, err := svc.Positions(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Vedic)
	require.Len(t, result.Vedic.Layers, 2)
	require.Len(t, result.Vedic.Dashas, 1)

	dasha := result.Vedic.Dashas[0]
	require.Equal(t, "vimshottari", dasha.System)
	require.Equal(t, 2, dasha.Depth)
	// Moon at 95.5 puts the first period under saturn.
	require.Equal(t, "saturn", dasha.Periods[0].Lord)
	require.Equal(t, time.Date(1990, time.March, 15, 6, 30, 0, 0, time.UTC), dasha.BirthDateTime)
}

func TestPositionsBuildsVargasAndYogas(t *testing.T) {
	svc := newTestService(defaultStubGateway(), newMapCache(), newMapSpecs())

	req := validRequest()
	req.Settings = DefaultSettings()
	req.Settings.VedicConfig = &VedicConfig{
		Vargas:       []string{"d1", "d9"},
		IncludeYogas: true,
	}

	result, _, err := svc.Positions(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Vedic)

	natal := result.Vedic.Layers["natal"]
	require.Len(t, natal.Vargas, 2)
	require.Len(t, natal.Vargas["d9"], 7)

	var sunD9 string
	for _, p := range natal.Vargas["d9"] {
		if p.Object == "sun" {
			sunD9 = p.Sign
		}
	}
	// Sun at 10 degrees aries falls in the fourth navamsa, cancer.
	require.Equal(t, "cancer", sunD9)

	// Sun in aries with mercury at 25 degrees shares the sign.
	require.Len(t, natal.Yogas, 1)
	require.Equal(t, "budha_aditya", natal.Yogas[0].Name)

	// No nakshatras were requested.
	require.Empty(t, natal.Nakshatras)
}

func TestPositionsRejectsUnknownVarga(t *testing.T) {
	gateway := defaultStubGateway()
	svc := newTestService(gateway, newMapCache(), newMapSpecs())

	req := validRequest()
	req.Settings = DefaultSettings()
	req.Settings.VedicConfig = &VedicConfig{Vargas: []string{"d99"}}

	_, _, err := svc.Positions(context.Background(), req)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.EqualValues(t, 0, gateway.calls.Load())
}

func TestPositionsBuildsWesternAnnotations(t *testing.T) {
	svc := newTestService(defaultStubGateway(), newMapCache(), newMapSpecs())

	result, _, err := svc.Positions(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, result.Western, 2)
	natal := result.Western["natal"]
	require.NotEmpty(t, natal.Dignities)
	require.NotEmpty(t, natal.Decans)
}

func TestChartSpecEndToEnd(t *testing.T) {
	specs := newMapSpecs()
	svc := newTestService(defaultStubGateway(), newMapCache(), specs)

	result, err := svc.ChartSpec(context.Background(), SpecRequest{RenderRequest: validRequest()})
	require.NoError(t, err)
	require.NotEmpty(t, result.ChartID)
	require.NotEmpty(t, result.Spec.Shapes)
	require.InDelta(t, 800, result.Spec.Width, 1e-9)
	require.NotEmpty(t, result.Aspects)

	// The generated spec was archived under the chart id.
	archived, err := svc.ArchivedSpec(context.Background(), result.ChartID)
	require.NoError(t, err)
	require.Equal(t, result.Spec, archived)
}

func TestChartSpecUnknownWheel(t *testing.T) {
	svc := newTestService(defaultStubGateway(), newMapCache(), newMapSpecs())

	_, err := svc.ChartSpec(context.Background(), SpecRequest{
		RenderRequest: validRequest(),
		WheelSlug:     "nonexistent",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestChartSpecInlineWheel(t *testing.T) {
	svc := newTestService(defaultStubGateway(), newMapCache(), newMapSpecs())

	inline := layout.Definition{
		Slug: "minimal",
		Name: "Minimal",
		Rings: []layout.Ring{
			{
				Slug:        "zodiac",
				Type:        layout.RingSigns,
				OrderIndex:  0,
				RadiusInner: 0.8,
				RadiusOuter: 1.0,
				DataSource:  layout.DataSource{Kind: layout.SourceStaticZodiac},
			},
		},
	}
	result, err := svc.ChartSpec(context.Background(), SpecRequest{
		RenderRequest: validRequest(),
		Wheel:         &inline,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Spec.Shapes)
}

func TestChartSpecBadWheelFailsBeforeGateway(t *testing.T) {
	gateway := defaultStubGateway()
	svc := newTestService(gateway, newMapCache(), newMapSpecs())

	empty := layout.Definition{Slug: "empty", Name: "Empty"}
	_, err := svc.ChartSpec(context.Background(), SpecRequest{
		RenderRequest: validRequest(),
		Wheel:         &empty,
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.EqualValues(t, 0, gateway.calls.Load())
}

func TestArchivedSpecNotFound(t *testing.T) {
	svc := newTestService(defaultStubGateway(), newMapCache(), newMapSpecs())

	_, err := svc.ArchivedSpec(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestWheelsListing(t *testing.T) {
	svc := newTestService(defaultStubGateway(), newMapCache(), newMapSpecs())

	wheels, err := svc.Wheels(context.Background())
	require.NoError(t, err)
	require.Len(t, wheels, 1)
	require.Equal(t, "standard_natal", wheels[0].Slug)

	wheel, err := svc.Wheel(context.Background(), "standard_natal")
	require.NoError(t, err)
	require.Len(t, wheel.Rings, 3)
}

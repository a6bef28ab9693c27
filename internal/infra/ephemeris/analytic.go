package ephemeris

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/astrachart/astrachart/internal/domain/chart"
	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

// AnalyticGateway computes positions from closed-form mean orbits. It needs no
// external data files and is deterministic, at the cost of arcminute-to-degree
// level accuracy. It implements chart.EphemerisGateway.
type AnalyticGateway struct {
	log *slog.Logger
}

// NewAnalyticGateway builds the gateway.
func NewAnalyticGateway(log *slog.Logger) *AnalyticGateway {
	return &AnalyticGateway{log: log}
}

const speedStep = time.Hour

// Positions computes ecliptic longitudes, speeds and houses for one instant.
// The zodiac frame and house system come from the per-layer settings; house
// systems outside the analytic set fail loudly rather than silently falling
// back.
func (g *AnalyticGateway) Positions(ctx context.Context, at time.Time, location *chart.Location, settings chart.EphemerisSettings) (chart.LayerPositions, error) {
	if err := ctx.Err(); err != nil {
		return chart.LayerPositions{}, err
	}

	ayanamsa := 0.0
	if settings.ZodiacType == chart.ZodiacSidereal {
		value, err := ayanamsaAt(settings.Ayanamsa, at)
		if err != nil {
			return chart.LayerPositions{}, err
		}
		ayanamsa = value
	}

	planets := make(map[string]chart.PlanetPosition, len(settings.IncludeObjects))
	for _, object := range settings.IncludeObjects {
		pos, err := g.position(object, at)
		if err != nil {
			return chart.LayerPositions{}, err
		}
		pos.Lon = normalize(pos.Lon - ayanamsa)
		planets[object] = pos
	}

	result := chart.LayerPositions{Planets: planets}
	if location != nil {
		houses, err := g.houses(at, *location, settings.HouseSystem, ayanamsa)
		if err != nil {
			return chart.LayerPositions{}, err
		}
		result.Houses = houses
	}
	return result, nil
}

// position returns the tropical position of one object, with the speed taken
// as a symmetric numeric derivative so retrograde motion emerges naturally.
func (g *AnalyticGateway) position(object string, at time.Time) (chart.PlanetPosition, error) {
	lon, err := tropicalLongitude(object, at)
	if err != nil {
		return chart.PlanetPosition{}, err
	}
	before, err := tropicalLongitude(object, at.Add(-speedStep))
	if err != nil {
		return chart.PlanetPosition{}, err
	}
	after, err := tropicalLongitude(object, at.Add(speedStep))
	if err != nil {
		return chart.PlanetPosition{}, err
	}
	days := 2 * speedStep.Hours() / 24
	speed := shortestArc(after, before) / days
	return chart.PlanetPosition{
		Lon:        normalize(lon),
		SpeedLon:   speed,
		Retrograde: speed < 0,
	}, nil
}

// tropicalLongitude dispatches per object class.
func tropicalLongitude(object string, at time.Time) (float64, error) {
	d := daysSinceJ2000(at)
	switch object {
	case "sun":
		earth := heliocentric["earth"]
		return normalize(earth.lonJ2000 + earth.ratePerDay*d + 180), nil
	case "moon":
		anomaly := radians(moonAnomJ2000 + moonAnomRate*d)
		return normalize(moonLonJ2000 + moonLonRate*d + moonEqCenterAmp*math.Sin(anomaly)), nil
	case "north_node":
		return normalize(nodeLonJ2000 + nodeLonRate*d), nil
	case "south_node":
		// Derived: always opposite the north node.
		return normalize(nodeLonJ2000 + nodeLonRate*d + 180), nil
	}
	orb, ok := heliocentric[object]
	if !ok {
		return 0, apperrors.Wrap(apperrors.CodeCalculation, fmt.Sprintf("no orbital model for object %q", object), nil)
	}
	earth := heliocentric["earth"]
	pl := radians(orb.lonJ2000 + orb.ratePerDay*d)
	el := radians(earth.lonJ2000 + earth.ratePerDay*d)
	x := orb.radiusAU*math.Cos(pl) - earth.radiusAU*math.Cos(el)
	y := orb.radiusAU*math.Sin(pl) - earth.radiusAU*math.Sin(el)
	return normalize(degrees(math.Atan2(y, x))), nil
}

// houses computes cusps and angles. Supported systems: equal, whole_sign,
// porphyry.
func (g *AnalyticGateway) houses(at time.Time, location chart.Location, system string, ayanamsa float64) (*chart.HousePositions, error) {
	asc, mc := anglesAt(at, location)
	asc = normalize(asc - ayanamsa)
	mc = normalize(mc - ayanamsa)

	cusps := make(map[string]float64, 12)
	switch system {
	case "equal":
		for i := 0; i < 12; i++ {
			cusps[cuspKey(i+1)] = normalize(asc + float64(i)*30)
		}
	case "whole_sign":
		start := math.Floor(asc/30) * 30
		for i := 0; i < 12; i++ {
			cusps[cuspKey(i+1)] = normalize(start + float64(i)*30)
		}
	case "porphyry":
		porphyryCusps(cusps, asc, mc)
	default:
		return nil, apperrors.Wrap(apperrors.CodeCalculation,
			fmt.Sprintf("house system %q is not supported by the analytic ephemeris", system), nil)
	}

	return &chart.HousePositions{
		System: system,
		Cusps:  cusps,
		Angles: map[string]float64{
			"asc": asc,
			"mc":  mc,
			"ic":  normalize(mc + 180),
			"dc":  normalize(asc + 180),
		},
	}, nil
}

// porphyryCusps trisects each quadrant between the angles.
func porphyryCusps(cusps map[string]float64, asc, mc float64) {
	ic := normalize(mc + 180)
	dc := normalize(asc + 180)
	quadrant := func(from, to float64, first int) {
		span := normalize(to - from)
		for k := 0; k < 3; k++ {
			house := (first+k-1)%12 + 1
			cusps[cuspKey(house)] = normalize(from + span*float64(k)/3)
		}
	}
	quadrant(asc, ic, 1)
	quadrant(ic, dc, 4)
	quadrant(dc, mc, 7)
	quadrant(mc, asc, 10)
}

// anglesAt derives the tropical ascendant and midheaven from local sidereal
// time, the obliquity of the ecliptic and the geographic latitude.
func anglesAt(at time.Time, location chart.Location) (asc, mc float64) {
	const obliquity = 23.4392911
	eps := radians(obliquity)
	ramc := radians(localSiderealDegrees(at, location.Lon))
	phi := radians(location.Lat)

	mc = degrees(math.Atan2(math.Sin(ramc), math.Cos(ramc)*math.Cos(eps)))
	asc = degrees(math.Atan2(
		math.Cos(ramc),
		-(math.Sin(ramc)*math.Cos(eps) + math.Tan(phi)*math.Sin(eps)),
	))
	return normalize(asc), normalize(mc)
}

// localSiderealDegrees returns the local sidereal time as an angle.
func localSiderealDegrees(at time.Time, eastLon float64) float64 {
	d := daysSinceJ2000(at)
	gmst := 280.46061837 + 360.98564736629*d
	return normalize(gmst + eastLon)
}

func ayanamsaAt(name string, at time.Time) (float64, error) {
	base, ok := ayanamsaJ2000[name]
	if !ok {
		return 0, apperrors.Wrap(apperrors.CodeCalculation, fmt.Sprintf("unknown ayanamsa %q", name), nil)
	}
	years := daysSinceJ2000(at) / 365.25
	return base + precessionPerYear*years, nil
}

func daysSinceJ2000(at time.Time) float64 {
	j2000 := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	return at.Sub(j2000).Hours() / 24
}

func cuspKey(n int) string {
	return fmt.Sprintf("%d", n)
}

func normalize(deg float64) float64 {
	norm := math.Mod(deg, 360)
	if norm < 0 {
		norm += 360
	}
	return norm
}

// shortestArc returns the signed angular difference a-b folded into
// (-180, 180].
func shortestArc(a, b float64) float64 {
	diff := math.Mod(a-b, 360)
	if diff > 180 {
		diff -= 360
	}
	if diff <= -180 {
		diff += 360
	}
	return diff
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

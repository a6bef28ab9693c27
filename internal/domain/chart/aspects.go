package chart

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

type aspectEntry struct {
	layerID string
	object  string
	lon     float64
}

// ComputeAspects matches every unordered pair of included objects, within and
// across layers, against the major aspect set. Canonical angles sit at least
// 60 degrees apart and orbs are capped at 30, so a pair can match at most one
// type; that exclusivity is still asserted.
func ComputeAspects(positionsByLayer map[string]LayerPositions, settings ChartSettings) ([]Aspect, error) {
	included := make(map[string]struct{}, len(settings.IncludeObjects))
	for _, obj := range settings.IncludeObjects {
		included[obj] = struct{}{}
	}

	entries := make([]aspectEntry, 0)
	layerIDs := make([]string, 0, len(positionsByLayer))
	for id := range positionsByLayer {
		layerIDs = append(layerIDs, id)
	}
	sort.Strings(layerIDs)
	for _, layerID := range layerIDs {
		positions := positionsByLayer[layerID]
		objects := make([]string, 0, len(positions.Planets))
		for obj := range positions.Planets {
			if len(included) > 0 {
				if _, ok := included[obj]; !ok {
					continue
				}
			}
			objects = append(objects, obj)
		}
		sort.Strings(objects)
		for _, obj := range objects {
			entries = append(entries, aspectEntry{layerID: layerID, object: obj, lon: positions.Planets[obj].Lon})
		}
	}

	orbFor := map[AspectType]float64{
		AspectConjunction: settings.OrbSettings.Conjunction,
		AspectSextile:     settings.OrbSettings.Sextile,
		AspectSquare:      settings.OrbSettings.Square,
		AspectTrine:       settings.OrbSettings.Trine,
		AspectOpposition:  settings.OrbSettings.Opposition,
	}

	var aspects []Aspect
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			separation := AngularSeparation(a.lon, b.lon)
			matched := false
			for _, aspectType := range aspectTypes {
				orb := separation - aspectType.CanonicalAngle()
				if math.Abs(orb) > orbFor[aspectType] {
					continue
				}
				if matched {
					return nil, apperrors.Wrap(apperrors.CodeInternal,
						fmt.Sprintf("pair %s/%s and %s/%s matched more than one aspect type", a.layerID, a.object, b.layerID, b.object), nil)
				}
				matched = true
				aspects = append(aspects, Aspect{
					LayerA:     a.layerID,
					ObjectA:    a.object,
					LayerB:     b.layerID,
					ObjectB:    b.object,
					Type:       aspectType,
					Separation: separation,
					Orb:        orb,
				})
			}
		}
	}
	return aspects, nil
}

// AngularSeparation returns the shorter arc between two longitudes, in [0, 180].
func AngularSeparation(a, b float64) float64 {
	diff := math.Abs(math.Mod(a, 360) - math.Mod(b, 360))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

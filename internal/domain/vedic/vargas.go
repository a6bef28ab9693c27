package vedic

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

var signNames = [12]string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

// VargaPlacement is one object's sign in a divisional chart.
type VargaPlacement struct {
	Object    string  `json:"object"`
	Longitude float64 `json:"longitude"`
	Sign      string  `json:"sign"`
	SignNum   int     `json:"signNum"`
}

// vargaSign maps a longitude into the divisional sign for one varga scheme.
type vargaSign func(sign int, within float64) int

// vargaSchemes holds the supported divisional charts. Each scheme follows the
// classical Parashari assignment for its division.
var vargaSchemes = map[string]vargaSign{
	// Rasi: the sign itself.
	"d1": func(sign int, _ float64) int { return sign },
	// Hora: odd signs put the first half under leo, the second under cancer;
	// even signs the reverse.
	"d2": func(sign int, within float64) int {
		first := within < 15
		if sign%2 == 0 { // odd sign (aries = 1st)
			if first {
				return 4
			}
			return 3
		}
		if first {
			return 3
		}
		return 4
	},
	// Drekkana: the three decans fall on the sign and its trines.
	"d3": func(sign int, within float64) int {
		part := int(within / 10)
		return (sign + 4*part) % 12
	},
	// Navamsa: ninths counted from the cardinal sign of the element.
	"d9": func(sign int, within float64) int {
		part := int(within / (30.0 / 9))
		return (sign*9 + part) % 12
	},
	// Dasamsa: tenths counted from the sign itself for odd signs, from the
	// ninth sign onward for even signs.
	"d10": func(sign int, within float64) int {
		part := int(within / 3)
		if sign%2 == 0 {
			return (sign + part) % 12
		}
		return (sign + 8 + part) % 12
	},
	// Dvadasamsa: twelfths counted from the sign itself.
	"d12": func(sign int, within float64) int {
		part := int(within / 2.5)
		return (sign + part) % 12
	},
}

// ValidVargas returns the supported divisional chart names, sorted.
func ValidVargas() []string {
	names := make([]string, 0, len(vargaSchemes))
	for name := range vargaSchemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsValidVarga reports whether a divisional chart name is supported.
func IsValidVarga(name string) bool {
	_, ok := vargaSchemes[name]
	return ok
}

// ComputeVargas places every point into each requested divisional chart. The
// result maps varga name to placements sorted by object.
func ComputeVargas(points map[string]float64, vargas []string) (map[string][]VargaPlacement, error) {
	if len(vargas) == 0 {
		return nil, nil
	}
	objects := make([]string, 0, len(points))
	for obj := range points {
		objects = append(objects, obj)
	}
	sort.Strings(objects)

	out := make(map[string][]VargaPlacement, len(vargas))
	for _, name := range vargas {
		scheme, ok := vargaSchemes[name]
		if !ok {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("unknown varga %q, valid: %v", name, ValidVargas()), nil)
		}
		placements := make([]VargaPlacement, 0, len(objects))
		for _, obj := range objects {
			lon := normalizeLon(points[obj])
			sign := int(lon / 30)
			within := lon - float64(sign)*30
			vs := scheme(sign, within)
			placements = append(placements, VargaPlacement{
				Object:    obj,
				Longitude: lon,
				Sign:      signNames[vs],
				SignNum:   vs + 1,
			})
		}
		out[name] = placements
	}
	return out, nil
}

func normalizeLon(lon float64) float64 {
	norm := math.Mod(lon, 360)
	if norm < 0 {
		norm += 360
	}
	return norm
}

package vedic

import (
	"math"
	"sort"
)

// The 27 equal ecliptic spans, each 13°20' wide, starting at Ashwini (0°).
var nakshatraNames = [27]string{
	"ashwini", "bharani", "krittika", "rohini", "mrigashira", "ardra",
	"punarvasu", "pushya", "ashlesha", "magha", "purva_phalguni",
	"uttara_phalguni", "hasta", "chitra", "swati", "vishakha", "anuradha",
	"jyeshtha", "mula", "purva_ashadha", "uttara_ashadha", "shravana",
	"dhanishta", "shatabhisha", "purva_bhadrapada", "uttara_bhadrapada",
	"revati",
}

// NakshatraSpan is the width of one nakshatra in degrees.
const NakshatraSpan = 360.0 / 27.0

// NakshatraIndex returns the zero-based nakshatra holding a longitude.
func NakshatraIndex(lon float64) int {
	norm := math.Mod(lon, 360)
	if norm < 0 {
		norm += 360
	}
	return int(norm/NakshatraSpan) % 27
}

// NakshatraName returns the name of the nakshatra at the given index.
func NakshatraName(index int) string {
	return nakshatraNames[((index%27)+27)%27]
}

// PlacementFor annotates a single point with nakshatra index, pada and the
// vimshottari lord of that span.
func PlacementFor(object string, lon float64) Placement {
	norm := math.Mod(lon, 360)
	if norm < 0 {
		norm += 360
	}
	idx := NakshatraIndex(norm)
	within := math.Mod(norm, NakshatraSpan)
	pada := int(within/(NakshatraSpan/4)) + 1
	if pada > 4 {
		pada = 4
	}
	return Placement{
		Object:    object,
		Longitude: lon,
		Index:     idx,
		Name:      NakshatraName(idx),
		Pada:      pada,
		Lord:      vimshottariLords[idx%len(vimshottariLords)],
	}
}

// AnnotatePoints computes placements for a set of chart points. When filter is
// non-empty only the named objects are annotated. Output is ordered by object
// id so identical inputs yield identical payloads.
func AnnotatePoints(lons map[string]float64, filter []string) []Placement {
	allowed := make(map[string]struct{}, len(filter))
	for _, obj := range filter {
		allowed[obj] = struct{}{}
	}
	objects := make([]string, 0, len(lons))
	for obj := range lons {
		if len(allowed) > 0 {
			if _, ok := allowed[obj]; !ok {
				continue
			}
		}
		objects = append(objects, obj)
	}
	sort.Strings(objects)
	placements := make([]Placement, 0, len(objects))
	for _, obj := range objects {
		placements = append(placements, PlacementFor(obj, lons[obj]))
	}
	return placements
}

package western

import (
	"math"
	"sort"
)

// Sign names in zodiacal order starting at Aries.
var signNames = [12]string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

// Traditional rulership table. A planet in its own sign is in domicile, in the
// opposite sign in detriment.
var domiciles = map[string][]int{
	"sun":     {4},
	"moon":    {3},
	"mercury": {2, 5},
	"venus":   {1, 6},
	"mars":    {0, 7},
	"jupiter": {8, 11},
	"saturn":  {9, 10},
}

// Exaltation signs per classical doctrine; fall is the opposite sign.
var exaltations = map[string]int{
	"sun":     0,
	"moon":    1,
	"mercury": 5,
	"venus":   11,
	"mars":    9,
	"jupiter": 3,
	"saturn":  6,
}

// Dignity classifies a planet's essential strength in its sign.
type Dignity struct {
	Object  string  `json:"object"`
	Sign    string  `json:"sign"`
	SignNum int     `json:"signNum"`
	Degree  float64 `json:"degree"`
	Status  string  `json:"status,omitempty"`
}

// LayerData groups the Western annotations for one layer.
type LayerData struct {
	LayerID   string    `json:"layerId"`
	Dignities []Dignity `json:"dignities,omitempty"`
	Decans    []Decan   `json:"decans,omitempty"`
}

// SignIndex returns the zero-based zodiac sign holding a longitude.
func SignIndex(lon float64) int {
	norm := math.Mod(lon, 360)
	if norm < 0 {
		norm += 360
	}
	return int(norm/30) % 12
}

// SignName returns the name of the sign at the given index.
func SignName(index int) string {
	return signNames[((index%12)+12)%12]
}

// DignityFor classifies one placement. Points without an entry in the
// traditional tables (nodes, outer planets used as chart points) report no
// status.
func DignityFor(object string, lon float64) Dignity {
	sign := SignIndex(lon)
	norm := math.Mod(lon, 360)
	if norm < 0 {
		norm += 360
	}
	d := Dignity{
		Object:  object,
		Sign:    SignName(sign),
		SignNum: sign,
		Degree:  norm - float64(sign)*30,
	}
	if homes, ok := domiciles[object]; ok {
		for _, home := range homes {
			if sign == home {
				d.Status = "domicile"
				return d
			}
			if sign == (home+6)%12 {
				d.Status = "detriment"
			}
		}
	}
	if d.Status == "detriment" {
		return d
	}
	if exalt, ok := exaltations[object]; ok {
		switch sign {
		case exalt:
			d.Status = "exaltation"
		case (exalt + 6) % 12:
			d.Status = "fall"
		}
	}
	return d
}

// AnnotateLayer computes dignities and decans for a layer's points, ordered by
// object id so identical inputs yield identical payloads.
func AnnotateLayer(layerID string, lons map[string]float64) LayerData {
	objects := make([]string, 0, len(lons))
	for obj := range lons {
		objects = append(objects, obj)
	}
	sort.Strings(objects)
	data := LayerData{LayerID: layerID}
	for _, obj := range objects {
		data.Dignities = append(data.Dignities, DignityFor(obj, lons[obj]))
		data.Decans = append(data.Decans, DecanOf(obj, lons[obj]))
	}
	return data
}

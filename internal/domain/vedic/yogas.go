package vedic

// Yoga records one planetary combination found in a layer.
type Yoga struct {
	Name    string   `json:"name"`
	Objects []string `json:"objects"`
}

type yogaRule struct {
	name    string
	objects []string
	matches func(signs map[string]int) bool
}

func sameSign(signs map[string]int, a, b string) (bool, bool) {
	sa, okA := signs[a]
	sb, okB := signs[b]
	if !okA || !okB {
		return false, false
	}
	return sa == sb, true
}

// yogaRules is the closed set of combinations the engine detects. All of them
// depend only on sign placements, so they work for any layer kind.
var yogaRules = []yogaRule{
	{
		// Sun and mercury conjoined by sign.
		name:    "budha_aditya",
		objects: []string{"sun", "mercury"},
		matches: func(signs map[string]int) bool {
			same, ok := sameSign(signs, "sun", "mercury")
			return ok && same
		},
	},
	{
		// Moon and mars conjoined by sign.
		name:    "chandra_mangala",
		objects: []string{"moon", "mars"},
		matches: func(signs map[string]int) bool {
			same, ok := sameSign(signs, "moon", "mars")
			return ok && same
		},
	},
	{
		// Jupiter in a kendra (1st, 4th, 7th or 10th sign) from the moon.
		name:    "gajakesari",
		objects: []string{"moon", "jupiter"},
		matches: func(signs map[string]int) bool {
			moon, okMoon := signs["moon"]
			jupiter, okJupiter := signs["jupiter"]
			if !okMoon || !okJupiter {
				return false
			}
			return ((jupiter-moon)%12+12)%12%3 == 0
		},
	},
	{
		// Jupiter conjoined with the north node by sign.
		name:    "guru_chandala",
		objects: []string{"jupiter", "north_node"},
		matches: func(signs map[string]int) bool {
			same, ok := sameSign(signs, "jupiter", "north_node")
			return ok && same
		},
	},
}

// IdentifyYogas scans a layer's longitudes for the known combinations. The
// result preserves the fixed rule order, so it is deterministic.
func IdentifyYogas(points map[string]float64) []Yoga {
	signs := make(map[string]int, len(points))
	for obj, lon := range points {
		signs[obj] = int(normalizeLon(lon) / 30)
	}
	var found []Yoga
	for _, rule := range yogaRules {
		if rule.matches(signs) {
			found = append(found, Yoga{Name: rule.name, Objects: rule.objects})
		}
	}
	return found
}

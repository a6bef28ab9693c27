package vedic

import "time"

// Placement annotates one chart point with its nakshatra.
type Placement struct {
	Object    string  `json:"object"`
	Longitude float64 `json:"longitude"`
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Pada      int     `json:"pada"`
	Lord      string  `json:"lord"`
}

// Period is one node of a dasha tree. Children subdivide the parent span
// exactly: their durations sum to the parent's and each child starts where
// its predecessor ends.
type Period struct {
	Lord     string        `json:"lord"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
	Depth    int           `json:"depth"`
	Children []Period      `json:"children,omitempty"`
}

// End returns the instant the period closes.
func (p Period) End() time.Time {
	return p.Start.Add(p.Duration)
}

// DashaResult is the computed tree for one period system.
type DashaResult struct {
	System        string    `json:"system"`
	Depth         int       `json:"depth"`
	BirthDateTime time.Time `json:"birthDateTime"`
	Periods       []Period  `json:"periods"`
}

// LayerData groups the Vedic annotations for one layer.
type LayerData struct {
	LayerID    string                      `json:"layerId"`
	Nakshatras []Placement                 `json:"nakshatras,omitempty"`
	Vargas     map[string][]VargaPlacement `json:"vargas,omitempty"`
	Yogas      []Yoga                      `json:"yogas,omitempty"`
}

// Payload is the Vedic slice of a computed dataset.
type Payload struct {
	Layers map[string]LayerData `json:"layers,omitempty"`
	Dashas []DashaResult        `json:"dashas,omitempty"`
}

package metrics

// PipelineTiming captures per-stage wall time spent building a response.
type PipelineTiming struct {
	ResolveMillis   int64 `json:"resolveMillis"`
	EphemerisMillis int64 `json:"ephemerisMillis"`
	AspectsMillis   int64 `json:"aspectsMillis"`
	LayoutMillis    int64 `json:"layoutMillis"`
	TotalMillis     int64 `json:"totalMillis"`
	CacheHit        bool  `json:"cacheHit"`
}

// IsZero reports whether timing data is absent.
func (t PipelineTiming) IsZero() bool {
	return t.TotalMillis == 0 && t.ResolveMillis == 0 && t.EphemerisMillis == 0
}

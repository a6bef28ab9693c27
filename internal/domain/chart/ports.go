package chart

import (
	"context"
	"time"

	"github.com/astrachart/astrachart/internal/domain/layout"
	"github.com/astrachart/astrachart/internal/domain/render"
)

// EphemerisGateway supplies raw positions for an instant and location. It is
// an external collaborator; the pipeline treats it as a black box.
type EphemerisGateway interface {
	Positions(ctx context.Context, at time.Time, location *Location, settings EphemerisSettings) (LayerPositions, error)
}

// ResultCache memoizes computed position datasets by fingerprint. Capacity is
// fixed at construction; eviction is least-recently-used, never time based.
type ResultCache interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Put(ctx context.Context, key string, value Result) error
}

// WheelRepository stores named wheel definitions.
type WheelRepository interface {
	Get(ctx context.Context, slug string) (layout.Definition, bool, error)
	List(ctx context.Context) ([]layout.Definition, error)
}

// SpecStore archives generated chart specifications by chart id.
type SpecStore interface {
	Save(ctx context.Context, id string, spec render.ChartSpec) error
	Get(ctx context.Context, id string) (render.ChartSpec, bool, error)
}

package chart

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/astrachart/astrachart/internal/domain/layout"
	"github.com/astrachart/astrachart/internal/domain/render"
	"github.com/astrachart/astrachart/internal/domain/vedic"
	"github.com/astrachart/astrachart/internal/domain/western"
	apperrors "github.com/astrachart/astrachart/pkg/errors"
	"github.com/astrachart/astrachart/pkg/metrics"
)

// SpecRequest asks for a rendered chart specification. Wheel selection is
// either inline or by repository slug; when both are empty the configured
// default wheel is used.
type SpecRequest struct {
	RenderRequest
	WheelSlug string             `json:"wheelSlug,omitempty"`
	Wheel     *layout.Definition `json:"wheel,omitempty"`
	Width     float64            `json:"width,omitempty"`
	Height    float64            `json:"height,omitempty"`
}

// Service is the chart computation pipeline.
type Service interface {
	Positions(ctx context.Context, req RenderRequest) (Result, metrics.PipelineTiming, error)
	ChartSpec(ctx context.Context, req SpecRequest) (SpecResult, error)
	ArchivedSpec(ctx context.Context, id string) (render.ChartSpec, error)
	Wheels(ctx context.Context) ([]layout.Definition, error)
	Wheel(ctx context.Context, slug string) (layout.Definition, error)
}

// Config tunes the pipeline.
type Config struct {
	DefaultWheel       string
	CanvasWidth        float64
	CanvasHeight       float64
	MarginFactor       float64
	MinGlyphSeparation float64
	GlyphBands         int
}

// DefaultConfig returns the standard pipeline tuning.
func DefaultConfig() Config {
	return Config{
		DefaultWheel:       "standard_natal",
		CanvasWidth:        800,
		CanvasHeight:       800,
		MarginFactor:       0.9,
		MinGlyphSeparation: 7,
		GlyphBands:         3,
	}
}

type service struct {
	gateway EphemerisGateway
	cache   ResultCache
	wheels  WheelRepository
	specs   SpecStore
	cfg     Config
	log     *slog.Logger
}

// NewService wires the pipeline against its collaborators.
func NewService(gateway EphemerisGateway, cache ResultCache, wheels WheelRepository, specs SpecStore, cfg Config, log *slog.Logger) Service {
	if cfg.DefaultWheel == "" {
		cfg.DefaultWheel = "standard_natal"
	}
	if cfg.CanvasWidth <= 0 {
		cfg.CanvasWidth = 800
	}
	if cfg.CanvasHeight <= 0 {
		cfg.CanvasHeight = 800
	}
	if cfg.MarginFactor <= 0 || cfg.MarginFactor > 1 {
		cfg.MarginFactor = 0.9
	}
	return &service{
		gateway: gateway,
		cache:   cache,
		wheels:  wheels,
		specs:   specs,
		cfg:     cfg,
		log:     log,
	}
}

// Positions runs validate, merge, cache lookup and the per-layer gateway
// fan-out. The returned timing is per-invocation and never enters the cache.
func (s *service) Positions(ctx context.Context, req RenderRequest) (Result, metrics.PipelineTiming, error) {
	started := time.Now()
	var timing metrics.PipelineTiming

	settings := mergeDefaults(req.Settings)
	settings, err := ApplyOverrides(settings, req.SettingsOverride)
	if err != nil {
		return Result{}, timing, err
	}
	if err := ValidateRequest(req, settings); err != nil {
		return Result{}, timing, err
	}

	key := Fingerprint(req, settings)
	if cached, hit, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("result cache lookup failed", "key", key, "error", err)
	} else if hit {
		timing.CacheHit = true
		timing.TotalMillis = time.Since(started).Milliseconds()
		s.log.Info("positions served from cache", "key", key)
		return cached, timing, nil
	}

	resolveStart := time.Now()
	contexts, err := ResolveLayers(req.Subjects, req.LayerConfig, settings)
	if err != nil {
		return Result{}, timing, err
	}
	timing.ResolveMillis = time.Since(resolveStart).Milliseconds()

	ephemerisStart := time.Now()
	layerResults := make([]LayerResult, len(contexts))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, layerCtx := range contexts {
		i, layerCtx := i, layerCtx
		group.Go(func() error {
			positions, err := s.gateway.Positions(groupCtx, layerCtx.DateTime, layerCtx.Location, layerCtx.Settings)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeCalculation, fmt.Sprintf("layer %q position calculation failed", layerCtx.LayerID), err)
			}
			layerResults[i] = LayerResult{
				ID:        layerCtx.LayerID,
				Kind:      layerCtx.Kind,
				DateTime:  layerCtx.DateTime,
				Location:  layerCtx.Location,
				Positions: positions,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, timing, err
	}
	timing.EphemerisMillis = time.Since(ephemerisStart).Milliseconds()

	result := Result{
		Layers:   make(map[string]LayerResult, len(layerResults)),
		Settings: settings,
	}
	for _, lr := range layerResults {
		result.Layers[lr.ID] = lr
	}

	if settings.VedicConfig != nil {
		payload, err := s.buildVedic(result, contexts, *settings.VedicConfig)
		if err != nil {
			return Result{}, timing, err
		}
		result.Vedic = payload
	}
	result.Western = buildWestern(result, settings)

	if err := s.cache.Put(ctx, key, result); err != nil {
		s.log.Warn("result cache store failed", "key", key, "error", err)
	}

	timing.TotalMillis = time.Since(started).Milliseconds()
	s.log.Info("positions computed",
		"key", key,
		"layers", len(result.Layers),
		"totalMillis", timing.TotalMillis)
	return result, timing, nil
}

// ChartSpec extends Positions with aspects, wheel assembly and shape
// generation, then archives the produced specification.
func (s *service) ChartSpec(ctx context.Context, req SpecRequest) (SpecResult, error) {
	// Resolve the wheel first so a bad definition fails before any
	// ephemeris work happens.
	def, err := s.resolveWheel(ctx, req)
	if err != nil {
		return SpecResult{}, err
	}

	result, timing, err := s.Positions(ctx, req.RenderRequest)
	if err != nil {
		return SpecResult{}, err
	}

	aspectsStart := time.Now()
	positionsByLayer := make(map[string]LayerPositions, len(result.Layers))
	for id, lr := range result.Layers {
		positionsByLayer[id] = lr.Positions
	}
	aspects, err := ComputeAspects(positionsByLayer, result.Settings)
	if err != nil {
		return SpecResult{}, err
	}
	timing.AspectsMillis = time.Since(aspectsStart).Milliseconds()

	layoutStart := time.Now()
	wheel, err := layout.Assemble(def, s.layoutLayers(result), layout.Options{
		MinGlyphSeparation: s.cfg.MinGlyphSeparation,
		GlyphBands:         s.cfg.GlyphBands,
	})
	if err != nil {
		return SpecResult{}, err
	}

	width, height := req.Width, req.Height
	if width <= 0 {
		width = s.cfg.CanvasWidth
	}
	if height <= 0 {
		height = s.cfg.CanvasHeight
	}
	generator := render.Generator{Margin: s.cfg.MarginFactor}
	spec := generator.Generate(wheel, aspectLines(aspects), width, height)
	timing.LayoutMillis = time.Since(layoutStart).Milliseconds()
	timing.TotalMillis += timing.AspectsMillis + timing.LayoutMillis

	chartID := uuid.NewString()
	if err := s.specs.Save(ctx, chartID, spec); err != nil {
		s.log.Warn("chart spec archive failed", "chartId", chartID, "error", err)
	}

	s.log.Info("chart spec generated",
		"chartId", chartID,
		"wheel", def.Slug,
		"shapes", len(spec.Shapes),
		"aspects", len(aspects))
	return SpecResult{
		ChartID:   chartID,
		Spec:      spec,
		Ephemeris: result,
		Aspects:   aspects,
		Timing:    timing,
	}, nil
}

// ArchivedSpec retrieves a previously generated specification.
func (s *service) ArchivedSpec(ctx context.Context, id string) (render.ChartSpec, error) {
	spec, ok, err := s.specs.Get(ctx, id)
	if err != nil {
		return render.ChartSpec{}, apperrors.Wrap(apperrors.CodeInternal, "chart spec lookup failed", err)
	}
	if !ok {
		return render.ChartSpec{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("chart %q not found", id), nil)
	}
	return spec, nil
}

// Wheels lists the stored wheel definitions.
func (s *service) Wheels(ctx context.Context) ([]layout.Definition, error) {
	defs, err := s.wheels.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "wheel listing failed", err)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Slug < defs[j].Slug })
	return defs, nil
}

// Wheel fetches one wheel definition by slug.
func (s *service) Wheel(ctx context.Context, slug string) (layout.Definition, error) {
	def, ok, err := s.wheels.Get(ctx, slug)
	if err != nil {
		return layout.Definition{}, apperrors.Wrap(apperrors.CodeInternal, "wheel lookup failed", err)
	}
	if !ok {
		return layout.Definition{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("wheel %q not found", slug), nil)
	}
	return def, nil
}

func (s *service) resolveWheel(ctx context.Context, req SpecRequest) (layout.Definition, error) {
	if req.Wheel != nil {
		if err := req.Wheel.Validate(); err != nil {
			return layout.Definition{}, err
		}
		return *req.Wheel, nil
	}
	slug := req.WheelSlug
	if slug == "" {
		slug = s.cfg.DefaultWheel
	}
	return s.Wheel(ctx, slug)
}

// layoutLayers converts computed positions into the assembler's input shape.
func (s *service) layoutLayers(result Result) map[string]layout.LayerData {
	layers := make(map[string]layout.LayerData, len(result.Layers))
	included := make(map[string]struct{}, len(result.Settings.IncludeObjects))
	for _, obj := range result.Settings.IncludeObjects {
		included[obj] = struct{}{}
	}
	for id, lr := range result.Layers {
		data := layout.LayerData{}
		for obj, pos := range lr.Positions.Planets {
			if len(included) > 0 {
				if _, ok := included[obj]; !ok {
					continue
				}
			}
			data.Planets = append(data.Planets, layout.Planet{
				Object:     obj,
				Longitude:  pos.Lon,
				Retrograde: pos.Retrograde,
			})
		}
		if hp := lr.Positions.Houses; hp != nil {
			houses := layout.Houses{Ascendant: hp.Angles["asc"]}
			for i := 0; i < 12; i++ {
				houses.Cusps[i] = hp.Cusps[fmt.Sprintf("%d", i+1)]
			}
			data.Houses = &houses
		}
		layers[id] = data
	}
	return layers
}

// buildVedic computes the requested nakshatra, varga and yoga annotations
// plus the dasha trees. Dashas anchor on the first natal layer's moon.
func (s *service) buildVedic(result Result, contexts []LayerContext, cfg VedicConfig) (*vedic.Payload, error) {
	payload := &vedic.Payload{}

	if cfg.IncludeNakshatras || len(cfg.Vargas) > 0 || cfg.IncludeYogas {
		payload.Layers = make(map[string]vedic.LayerData, len(result.Layers))
		for id, lr := range result.Layers {
			lons := make(map[string]float64, len(lr.Positions.Planets))
			for obj, pos := range lr.Positions.Planets {
				lons[obj] = pos.Lon
			}
			data := vedic.LayerData{LayerID: id}
			if cfg.IncludeNakshatras {
				points := lons
				if cfg.IncludeAnglesInNakshatra && lr.Positions.Houses != nil {
					points = make(map[string]float64, len(lons)+4)
					for obj, lon := range lons {
						points[obj] = lon
					}
					for angle, lon := range lr.Positions.Houses.Angles {
						points[angle] = lon
					}
				}
				data.Nakshatras = vedic.AnnotatePoints(points, cfg.NakshatraObjects)
			}
			if len(cfg.Vargas) > 0 {
				vargas, err := vedic.ComputeVargas(lons, cfg.Vargas)
				if err != nil {
					return nil, err
				}
				data.Vargas = vargas
			}
			if cfg.IncludeYogas {
				data.Yogas = vedic.IdentifyYogas(lons)
			}
			payload.Layers[id] = data
		}
	}

	if cfg.IncludeDashas {
		anchor, ok := natalAnchor(result, contexts)
		if !ok {
			return nil, apperrors.Wrap(apperrors.CodeCalculation, "dasha computation requires a natal layer with a moon position", nil)
		}
		systems := cfg.DashaSystems
		if len(systems) == 0 {
			systems = []string{"vimshottari"}
		}
		for _, name := range systems {
			dasha, err := vedic.ComputeDashaByName(anchor.at, anchor.moonLon, name, cfg.DashasDepth)
			if err != nil {
				return nil, err
			}
			payload.Dashas = append(payload.Dashas, dasha)
		}
	}

	if payload.Layers == nil && payload.Dashas == nil {
		return nil, nil
	}
	return payload, nil
}

type dashaAnchor struct {
	at      time.Time
	moonLon float64
}

func natalAnchor(result Result, contexts []LayerContext) (dashaAnchor, bool) {
	for _, layerCtx := range contexts {
		if layerCtx.Kind != KindNatal {
			continue
		}
		lr, ok := result.Layers[layerCtx.LayerID]
		if !ok {
			continue
		}
		moon, ok := lr.Positions.Planets["moon"]
		if !ok {
			continue
		}
		return dashaAnchor{at: lr.DateTime, moonLon: moon.Lon}, true
	}
	return dashaAnchor{}, false
}

// buildWestern annotates every layer's included planets with dignities and
// decans.
func buildWestern(result Result, settings ChartSettings) map[string]western.LayerData {
	included := make(map[string]struct{}, len(settings.IncludeObjects))
	for _, obj := range settings.IncludeObjects {
		included[obj] = struct{}{}
	}
	annotated := make(map[string]western.LayerData, len(result.Layers))
	for id, lr := range result.Layers {
		lons := make(map[string]float64, len(lr.Positions.Planets))
		for obj, pos := range lr.Positions.Planets {
			if len(included) > 0 {
				if _, ok := included[obj]; !ok {
					continue
				}
			}
			lons[obj] = pos.Lon
		}
		annotated[id] = western.AnnotateLayer(id, lons)
	}
	return annotated
}

func aspectLines(aspects []Aspect) []render.AspectLine {
	lines := make([]render.AspectLine, 0, len(aspects))
	for _, a := range aspects {
		if a.Type == AspectConjunction {
			// Conjunction endpoints coincide visually; no line is drawn.
			continue
		}
		lines = append(lines, render.AspectLine{
			LayerA:  a.LayerA,
			ObjectA: a.ObjectA,
			LayerB:  a.LayerB,
			ObjectB: a.ObjectB,
			Type:    string(a.Type),
		})
	}
	return lines
}

// mergeDefaults fills unset request settings from the baseline.
func mergeDefaults(settings ChartSettings) ChartSettings {
	defaults := DefaultSettings()
	if settings.ZodiacType == "" {
		settings.ZodiacType = defaults.ZodiacType
	}
	if settings.HouseSystem == "" {
		settings.HouseSystem = defaults.HouseSystem
	}
	if settings.OrbSettings == (OrbSettings{}) {
		settings.OrbSettings = defaults.OrbSettings
	}
	if len(settings.IncludeObjects) == 0 {
		settings.IncludeObjects = defaults.IncludeObjects
	}
	return settings
}

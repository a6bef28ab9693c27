package chart

import (
	"fmt"
)

// ResolveLayers turns layer configs into concrete layer contexts, ordered by
// layer id. Each layer resolves independently; nothing is shared or memoized
// across layers at this stage.
func ResolveLayers(subjects []Subject, layers map[string]LayerConfig, settings ChartSettings) ([]LayerContext, error) {
	byID := make(map[string]Subject, len(subjects))
	for _, s := range subjects {
		byID[s.ID] = s
	}

	contexts := make([]LayerContext, 0, len(layers))
	for _, layerID := range sortedLayerIDs(layers) {
		cfg := layers[layerID]
		ctx, err := resolveLayer(layerID, cfg, byID, settings)
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, ctx)
	}
	return contexts, nil
}

func resolveLayer(layerID string, cfg LayerConfig, subjects map[string]Subject, settings ChartSettings) (LayerContext, error) {
	var instantField, instantValue string
	switch cfg.Kind {
	case KindNatal:
		subject, ok := subjects[cfg.SubjectID]
		if !ok {
			return LayerContext{}, invalid(fmt.Sprintf("layer %q: subjectId %q not found", layerID, cfg.SubjectID))
		}
		if subject.BirthDateTime == "" {
			return LayerContext{}, invalid(fmt.Sprintf("layer %q: subject %q is missing birthDateTime", layerID, cfg.SubjectID))
		}
		instantField = fmt.Sprintf("subjects[%s].birthDateTime", cfg.SubjectID)
		instantValue = subject.BirthDateTime
	case KindTransit, KindProgressed:
		if cfg.ExplicitDateTime == "" {
			return LayerContext{}, invalid(fmt.Sprintf("layer %q: %s layer requires explicitDateTime", layerID, cfg.Kind))
		}
		instantField = fmt.Sprintf("layers[%s].explicitDateTime", layerID)
		instantValue = cfg.ExplicitDateTime
	default:
		return LayerContext{}, invalid(fmt.Sprintf("layer %q: unknown kind %q", layerID, cfg.Kind))
	}

	instant, err := ParseInstant(instantValue)
	if err != nil {
		return LayerContext{}, invalidWrap(fmt.Sprintf("%s is not a valid timestamp", instantField), err)
	}

	location := cfg.Location
	if location == nil && cfg.SubjectID != "" {
		if subject, ok := subjects[cfg.SubjectID]; ok {
			location = subject.Location
		}
	}

	return LayerContext{
		LayerID:  layerID,
		Kind:     cfg.Kind,
		DateTime: instant,
		Location: location,
		Settings: EphemerisSettings{
			ZodiacType:     settings.ZodiacType,
			Ayanamsa:       settings.Ayanamsa,
			HouseSystem:    settings.HouseSystem,
			IncludeObjects: settings.IncludeObjects,
		},
	}, nil
}

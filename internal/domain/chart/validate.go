package chart

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/astrachart/astrachart/internal/domain/vedic"
	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

// Catalogs of accepted identifiers. Names outside these sets are rejected up
// front, before any gateway call.
var (
	validHouseSystems = map[string]struct{}{
		"placidus": {}, "whole_sign": {}, "koch": {}, "equal": {},
		"regiomontanus": {}, "campanus": {}, "alcabitius": {}, "morinus": {},
	}
	validAyanamsas = map[string]struct{}{
		"lahiri": {}, "chitrapaksha": {}, "fagan_bradley": {}, "de_luce": {},
		"raman": {}, "krishnamurti": {}, "yukteshwar": {}, "djwhal_khul": {},
		"true_citra": {}, "true_revati": {}, "aryabhata": {}, "aryabhata_mean_sun": {},
	}
	validObjects = map[string]struct{}{
		"sun": {}, "moon": {}, "mercury": {}, "venus": {}, "mars": {},
		"jupiter": {}, "saturn": {}, "uranus": {}, "neptune": {}, "pluto": {},
		"chiron": {}, "north_node": {}, "south_node": {},
	}
	validLayerKinds = map[string]struct{}{
		KindNatal: {}, KindTransit: {}, KindProgressed: {},
	}
)

const (
	minYear = -1000
	maxYear = 3000
	minOrb  = 0.0
	maxOrb  = 30.0
)

// ValidHouseSystems returns the accepted house system names, sorted.
func ValidHouseSystems() []string { return sortedKeys(validHouseSystems) }

// ValidAyanamsas returns the accepted ayanamsa names, sorted.
func ValidAyanamsas() []string { return sortedKeys(validAyanamsas) }

// ValidObjects returns the accepted object ids, sorted.
func ValidObjects() []string { return sortedKeys(validObjects) }

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidateRequest checks a render request against the merged settings. Any
// failure aborts the pipeline before positions are computed.
func ValidateRequest(req RenderRequest, settings ChartSettings) error {
	if err := validateSubjects(req.Subjects); err != nil {
		return err
	}
	if err := ValidateSettings(settings); err != nil {
		return err
	}
	return validateLayerConfig(req.LayerConfig, req.Subjects)
}

func validateSubjects(subjects []Subject) error {
	if len(subjects) == 0 {
		return invalid("at least one subject is required")
	}
	seen := make(map[string]struct{}, len(subjects))
	for idx, subject := range subjects {
		if subject.ID == "" {
			return invalid(fmt.Sprintf("subjects[%d].id cannot be empty", idx))
		}
		if _, dup := seen[subject.ID]; dup {
			return invalid(fmt.Sprintf("duplicate subject id %q", subject.ID))
		}
		seen[subject.ID] = struct{}{}
		if subject.BirthDateTime != "" {
			ts, err := ParseInstant(subject.BirthDateTime)
			if err != nil {
				return invalidWrap(fmt.Sprintf("subjects[%d].birthDateTime is not a valid timestamp", idx), err)
			}
			if err := validateDateRange(ts); err != nil {
				return err
			}
		}
		if subject.Location != nil {
			if err := validateLocation(*subject.Location); err != nil {
				return invalid(fmt.Sprintf("subjects[%d].location: %v", idx, err))
			}
		}
	}
	return nil
}

// ValidateSettings checks settings on their own; used both for request
// validation and after override merging.
func ValidateSettings(settings ChartSettings) error {
	if settings.ZodiacType != ZodiacTropical && settings.ZodiacType != ZodiacSidereal {
		return invalid(fmt.Sprintf("zodiacType %q must be %q or %q", settings.ZodiacType, ZodiacTropical, ZodiacSidereal))
	}
	if _, ok := validHouseSystems[settings.HouseSystem]; !ok {
		return invalid(fmt.Sprintf("unknown houseSystem %q, valid: %v", settings.HouseSystem, ValidHouseSystems()))
	}
	if settings.ZodiacType == ZodiacSidereal && settings.Ayanamsa == "" {
		return invalid("ayanamsa is required for the sidereal zodiac")
	}
	if settings.Ayanamsa != "" {
		if _, ok := validAyanamsas[settings.Ayanamsa]; !ok {
			return invalid(fmt.Sprintf("unknown ayanamsa %q, valid: %v", settings.Ayanamsa, ValidAyanamsas()))
		}
	}
	orbs := map[string]float64{
		"conjunction": settings.OrbSettings.Conjunction,
		"opposition":  settings.OrbSettings.Opposition,
		"trine":       settings.OrbSettings.Trine,
		"square":      settings.OrbSettings.Square,
		"sextile":     settings.OrbSettings.Sextile,
	}
	for _, name := range []string{"conjunction", "opposition", "trine", "square", "sextile"} {
		if err := validateOrb(name, orbs[name]); err != nil {
			return err
		}
	}
	for idx, obj := range settings.IncludeObjects {
		if _, ok := validObjects[obj]; !ok {
			return invalid(fmt.Sprintf("includeObjects[%d] %q is not a known object", idx, obj))
		}
	}
	if vc := settings.VedicConfig; vc != nil {
		for idx, varga := range vc.Vargas {
			if !vedic.IsValidVarga(varga) {
				return invalid(fmt.Sprintf("vedicConfig.vargas[%d] %q is not a known varga, valid: %v", idx, varga, vedic.ValidVargas()))
			}
		}
	}
	return nil
}

func validateLayerConfig(layers map[string]LayerConfig, subjects []Subject) error {
	if len(layers) == 0 {
		return invalid("at least one layer must be configured")
	}
	subjectIDs := make(map[string]Subject, len(subjects))
	for _, s := range subjects {
		subjectIDs[s.ID] = s
	}
	for _, layerID := range sortedLayerIDs(layers) {
		cfg := layers[layerID]
		if _, ok := validLayerKinds[cfg.Kind]; !ok {
			return invalid(fmt.Sprintf("layer %q: unknown kind %q", layerID, cfg.Kind))
		}
		switch cfg.Kind {
		case KindNatal:
			if cfg.SubjectID == "" {
				return invalid(fmt.Sprintf("layer %q: natal layer must reference a subjectId", layerID))
			}
			subject, ok := subjectIDs[cfg.SubjectID]
			if !ok {
				return invalid(fmt.Sprintf("layer %q: subjectId %q not found", layerID, cfg.SubjectID))
			}
			if subject.BirthDateTime == "" {
				return invalid(fmt.Sprintf("layer %q: subject %q has no birthDateTime", layerID, cfg.SubjectID))
			}
		case KindTransit, KindProgressed:
			if cfg.ExplicitDateTime == "" {
				return invalid(fmt.Sprintf("layer %q: %s layer must specify explicitDateTime", layerID, cfg.Kind))
			}
			ts, err := ParseInstant(cfg.ExplicitDateTime)
			if err != nil {
				return invalidWrap(fmt.Sprintf("layer %q: explicitDateTime is not a valid timestamp", layerID), err)
			}
			if err := validateDateRange(ts); err != nil {
				return err
			}
		}
		if cfg.Location != nil {
			if err := validateLocation(*cfg.Location); err != nil {
				return invalid(fmt.Sprintf("layer %q: location: %v", layerID, err))
			}
		}
	}
	return nil
}

func validateOrb(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalid(fmt.Sprintf("orbSettings.%s must be finite", name))
	}
	if value < minOrb || value > maxOrb {
		return invalid(fmt.Sprintf("orbSettings.%s must be within [%g, %g] degrees, got %g", name, minOrb, maxOrb, value))
	}
	return nil
}

func validateLocation(loc Location) error {
	if math.IsNaN(loc.Lat) || math.IsInf(loc.Lat, 0) || loc.Lat < -90 || loc.Lat > 90 {
		return fmt.Errorf("latitude must be within [-90, 90], got %g", loc.Lat)
	}
	if math.IsNaN(loc.Lon) || math.IsInf(loc.Lon, 0) || loc.Lon < -180 || loc.Lon > 180 {
		return fmt.Errorf("longitude must be within [-180, 180], got %g", loc.Lon)
	}
	return nil
}

func validateDateRange(ts time.Time) error {
	year := ts.Year()
	if year < minYear || year > maxYear {
		return invalid(fmt.Sprintf("year %d is outside the supported range [%d, %d]", year, minYear, maxYear))
	}
	return nil
}

// ParseInstant parses the canonical timestamp format (RFC 3339) into UTC.
func ParseInstant(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

func sortedLayerIDs(layers map[string]LayerConfig) []string {
	ids := make([]string, 0, len(layers))
	for id := range layers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func invalid(msg string) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, msg, nil)
}

func invalidWrap(msg string, err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, msg, err)
}

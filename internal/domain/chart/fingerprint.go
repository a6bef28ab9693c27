package chart

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint derives the content-addressed cache key for a request under its
// merged settings. Map-like inputs are folded in sorted order so two requests
// that differ only in field ordering hash identically.
func Fingerprint(req RenderRequest, settings ChartSettings) string {
	h := xxhash.New()

	subjects := make([]Subject, len(req.Subjects))
	copy(subjects, req.Subjects)
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	for _, s := range subjects {
		writeField(h, "subject.id", s.ID)
		writeField(h, "subject.birth", s.BirthDateTime)
		writeLocation(h, s.Location)
	}

	for _, layerID := range sortedLayerIDs(req.LayerConfig) {
		cfg := req.LayerConfig[layerID]
		writeField(h, "layer.id", layerID)
		writeField(h, "layer.kind", cfg.Kind)
		writeField(h, "layer.subject", cfg.SubjectID)
		writeField(h, "layer.instant", cfg.ExplicitDateTime)
		writeLocation(h, cfg.Location)
	}

	writeField(h, "settings.zodiac", settings.ZodiacType)
	writeField(h, "settings.houses", settings.HouseSystem)
	writeField(h, "settings.ayanamsa", settings.Ayanamsa)
	writeFloat(h, "orb.conjunction", settings.OrbSettings.Conjunction)
	writeFloat(h, "orb.opposition", settings.OrbSettings.Opposition)
	writeFloat(h, "orb.trine", settings.OrbSettings.Trine)
	writeFloat(h, "orb.square", settings.OrbSettings.Square)
	writeFloat(h, "orb.sextile", settings.OrbSettings.Sextile)

	objects := make([]string, len(settings.IncludeObjects))
	copy(objects, settings.IncludeObjects)
	sort.Strings(objects)
	for _, obj := range objects {
		writeField(h, "settings.object", obj)
	}

	if vc := settings.VedicConfig; vc != nil {
		writeField(h, "vedic.nakshatras", strconv.FormatBool(vc.IncludeNakshatras))
		writeField(h, "vedic.angles", strconv.FormatBool(vc.IncludeAnglesInNakshatra))
		writeField(h, "vedic.dashas", strconv.FormatBool(vc.IncludeDashas))
		writeField(h, "vedic.depth", vc.DashasDepth)
		writeField(h, "vedic.yogas", strconv.FormatBool(vc.IncludeYogas))
		vargas := make([]string, len(vc.Vargas))
		copy(vargas, vc.Vargas)
		sort.Strings(vargas)
		for _, varga := range vargas {
			writeField(h, "vedic.varga", varga)
		}
		for _, system := range vc.DashaSystems {
			writeField(h, "vedic.system", system)
		}
		nakObjects := make([]string, len(vc.NakshatraObjects))
		copy(nakObjects, vc.NakshatraObjects)
		sort.Strings(nakObjects)
		for _, obj := range nakObjects {
			writeField(h, "vedic.object", obj)
		}
	}

	return fmt.Sprintf("ephemeris:%016x", h.Sum64())
}

func writeField(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s=%s\n", key, value)
}

func writeFloat(w io.Writer, key string, value float64) {
	fmt.Fprintf(w, "%s=%s\n", key, strconv.FormatFloat(value, 'g', -1, 64))
}

func writeLocation(w io.Writer, loc *Location) {
	if loc == nil {
		return
	}
	writeFloat(w, "loc.lat", loc.Lat)
	writeFloat(w, "loc.lon", loc.Lon)
}

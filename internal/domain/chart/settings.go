package chart

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

// orbPatch mirrors OrbSettings with every field optional.
type orbPatch struct {
	Conjunction *float64 `json:"conjunction"`
	Opposition  *float64 `json:"opposition"`
	Trine       *float64 `json:"trine"`
	Square      *float64 `json:"square"`
	Sextile     *float64 `json:"sextile"`
}

// ApplyOverrides layers a sparse override map onto base settings. Recognized
// keys with mismatched value shapes are rejected; unrecognized keys are
// ignored so older clients keep working against newer servers.
func ApplyOverrides(base ChartSettings, overrides map[string]json.RawMessage) (ChartSettings, error) {
	merged := base
	for key, raw := range overrides {
		switch key {
		case "zodiacType":
			value, err := decodeString(key, raw)
			if err != nil {
				return ChartSettings{}, err
			}
			merged.ZodiacType = value
		case "houseSystem":
			value, err := decodeString(key, raw)
			if err != nil {
				return ChartSettings{}, err
			}
			merged.HouseSystem = value
		case "ayanamsa":
			if isJSONNull(raw) {
				merged.Ayanamsa = ""
				continue
			}
			value, err := decodeString(key, raw)
			if err != nil {
				return ChartSettings{}, err
			}
			merged.Ayanamsa = value
		case "orbSettings":
			var patch orbPatch
			if err := json.Unmarshal(raw, &patch); err != nil {
				return ChartSettings{}, overrideErr(key, "an object of per-aspect orbs", err)
			}
			if patch.Conjunction != nil {
				merged.OrbSettings.Conjunction = *patch.Conjunction
			}
			if patch.Opposition != nil {
				merged.OrbSettings.Opposition = *patch.Opposition
			}
			if patch.Trine != nil {
				merged.OrbSettings.Trine = *patch.Trine
			}
			if patch.Square != nil {
				merged.OrbSettings.Square = *patch.Square
			}
			if patch.Sextile != nil {
				merged.OrbSettings.Sextile = *patch.Sextile
			}
		case "includeObjects":
			var objects []string
			if err := json.Unmarshal(raw, &objects); err != nil {
				return ChartSettings{}, overrideErr(key, "an array of object ids", err)
			}
			merged.IncludeObjects = objects
		case "vedicConfig":
			if isJSONNull(raw) {
				merged.VedicConfig = nil
				continue
			}
			var cfg VedicConfig
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return ChartSettings{}, overrideErr(key, "a vedic config object", err)
			}
			merged.VedicConfig = &cfg
		default:
			// Unknown keys are intentionally ignored.
		}
	}
	return merged, nil
}

func decodeString(key string, raw json.RawMessage) (string, error) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", overrideErr(key, "a string", err)
	}
	return value, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

func overrideErr(key, want string, err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("settingsOverride.%s must be %s", key, want), err)
}

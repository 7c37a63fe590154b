package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	yaml "go.yaml.in/yaml/v3"
)

// coerceToJSONBytes converts config bytes to plain JSON so we can re-use the
// strict JSON decoder (DisallowUnknownFields) for every format.
//
// Returns (jsonBytes, format, err) where format is "json" or "yaml".
// JSON files may carry // and /* */ comments and trailing commas.
func coerceToJSONBytes(path string, data []byte) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return jsonc.ToJSON(data), "json", nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, "yaml", fmt.Errorf("yaml unmarshal: %w", err)
	}
	if v == nil {
		// Empty YAML document.
		return []byte("{}"), "yaml", nil
	}

	v = NormalizeYAML(v)

	j, err := json.Marshal(v)
	if err != nil {
		return nil, "yaml", fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, "yaml", nil
}

// NormalizeYAML ensures all map keys are strings so the result can be JSON-marshaled.
func NormalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = NormalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = NormalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = NormalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}

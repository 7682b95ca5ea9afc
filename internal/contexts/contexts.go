// Package contexts loads template context patches from YAML files.
//
// Context files supply parameter values only; functions for dynamic
// expressions are registered by the embedding program.
package contexts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/isidrok/templao"
)

// Load reads a YAML file into a context patch.
func Load(path string) (templao.Context, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file %s: %w", path, err)
	}
	return Parse(content)
}

// Parse decodes YAML content into a context patch. The top level must be
// a mapping; scalar values normalize to Go types the engine compares by
// value (bool, int, float64, string).
func Parse(content []byte) (templao.Context, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing context: %w", err)
	}

	ctx := make(templao.Context, len(raw))
	for key, value := range raw {
		ctx[key] = normalize(value)
	}
	return ctx, nil
}

// normalize converts yaml.v3's decoded shapes into plain Go values:
// map[string]any mappings and []any sequences, recursively.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = normalize(val)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, val := range x {
			s[i] = normalize(val)
		}
		return s
	default:
		return x
	}
}

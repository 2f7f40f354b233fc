package plugin

import (
	"fmt"
	"slices"
)

// Category classifies what a plugin does.
type Category string

// The closed set of plugin categories.
const (
	CategoryVisualEffects Category = "visual-effects"
	CategoryDecoration    Category = "decoration"
	CategoryInteraction   Category = "interaction"
	CategoryUtility       Category = "utility"
	CategoryAudio         Category = "audio"
)

// validCategories are the allowed category values.
var validCategories = map[Category]bool{
	CategoryVisualEffects: true,
	CategoryDecoration:    true,
	CategoryInteraction:   true,
	CategoryUtility:       true,
	CategoryAudio:         true,
}

// ParameterSpec describes one parameter a plugin accepts.
type ParameterSpec struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // string, number, boolean, array, object
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Options     []string `json:"options,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
}

// Descriptor is a plugin's manifest metadata, immutable once loaded.
type Descriptor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Version     string          `json:"version"` // MAJOR.MINOR.PATCH
	Author      string          `json:"author,omitempty"`
	Category    Category        `json:"category"`
	Tags        []string        `json:"tags,omitempty"`
	Permissions []string        `json:"permissions,omitempty"`
	Parameters  []ParameterSpec `json:"parameters,omitempty"`
	Enabled     bool            `json:"enabled"`
	AutoLoad    bool            `json:"autoLoad,omitempty"`
	Priority    int             `json:"priority,omitempty"`
}

// HasTag reports whether the descriptor carries the tag.
func (d *Descriptor) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// ParameterDefaults returns the declared default value for every
// parameter that has one.
func (d *Descriptor) ParameterDefaults() map[string]any {
	defaults := make(map[string]any)
	for _, p := range d.Parameters {
		if p.Default != nil {
			defaults[p.Name] = p.Default
		}
	}
	return defaults
}

// ValidateParameters checks supplied values against the descriptor's
// parameter specs: required presence, declared type, enumerated options
// and numeric bounds.
//
// The sandbox does not call this; parameter enforcement is advisory and
// callers opt in (the CLI does).
func (d *Descriptor) ValidateParameters(values map[string]any) error {
	for _, spec := range d.Parameters {
		v, ok := values[spec.Name]
		if !ok {
			if spec.Required && spec.Default == nil {
				return fmt.Errorf("parameter %q is required", spec.Name)
			}
			continue
		}
		if err := checkParameterValue(spec, v); err != nil {
			return err
		}
	}
	return nil
}

func checkParameterValue(spec ParameterSpec, v any) error {
	switch spec.Type {
	case "string":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("parameter %q: expected string, got %T", spec.Name, v)
		}
		if len(spec.Options) > 0 && !slices.Contains(spec.Options, s) {
			return fmt.Errorf("parameter %q: %q is not one of %v", spec.Name, s, spec.Options)
		}
	case "number":
		n, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("parameter %q: expected number, got %T", spec.Name, v)
		}
		if spec.Min != nil && n < *spec.Min {
			return fmt.Errorf("parameter %q: %v is below minimum %v", spec.Name, n, *spec.Min)
		}
		if spec.Max != nil && n > *spec.Max {
			return fmt.Errorf("parameter %q: %v is above maximum %v", spec.Name, n, *spec.Max)
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("parameter %q: expected boolean, got %T", spec.Name, v)
		}
	case "array":
		if _, ok := v.([]any); !ok {
			return fmt.Errorf("parameter %q: expected array, got %T", spec.Name, v)
		}
	case "object":
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("parameter %q: expected object, got %T", spec.Name, v)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// String returns a short display form of the descriptor.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s v%s", d.Name, d.Version)
}

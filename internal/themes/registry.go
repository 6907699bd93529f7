package themes

import (
	"errors"
	"fmt"

	"boltdesk/internal/models"
)

var ErrUnknownPreset = errors.New("unknown theme preset")

// Registry is the read-only catalog of theme presets.
type Registry struct {
	presets []models.ThemePreset
	byID    map[string]int
}

// NewRegistry builds the registry over the built-in presets.
func NewRegistry() *Registry {
	r, err := NewRegistryFrom(builtinPresets)
	if err != nil {
		panic(fmt.Sprintf("themes: builtin catalog is invalid: %v", err))
	}
	return r
}

// NewRegistryFrom validates presets and builds a registry over copies of them.
func NewRegistryFrom(presets []models.ThemePreset) (*Registry, error) {
	r := &Registry{
		presets: make([]models.ThemePreset, 0, len(presets)),
		byID:    make(map[string]int, len(presets)),
	}
	for _, p := range presets {
		if p.ID == "" {
			return nil, errors.New("preset id is required")
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate preset id %q", p.ID)
		}
		if err := models.ValidatePalette(p.Palette); err != nil {
			return nil, fmt.Errorf("preset %s: %w", p.ID, err)
		}
		r.byID[p.ID] = len(r.presets)
		r.presets = append(r.presets, clonePreset(p))
	}
	return r, nil
}

// List returns the presets in catalog order. The slice is a copy.
func (r *Registry) List() []models.ThemePreset {
	out := make([]models.ThemePreset, len(r.presets))
	for i, p := range r.presets {
		out[i] = clonePreset(p)
	}
	return out
}

// Lookup finds a preset by id.
func (r *Registry) Lookup(id string) (models.ThemePreset, bool) {
	i, ok := r.byID[id]
	if !ok {
		return models.ThemePreset{}, false
	}
	return clonePreset(r.presets[i]), true
}

// Scheme returns the design scheme a preset maps onto.
func (r *Registry) Scheme(id string) (models.DesignScheme, error) {
	p, ok := r.Lookup(id)
	if !ok {
		return models.DesignScheme{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	return p.Scheme(), nil
}

func clonePreset(p models.ThemePreset) models.ThemePreset {
	palette := make(map[string]string, len(p.Palette))
	for k, v := range p.Palette {
		palette[k] = v
	}
	p.Palette = palette
	return p
}

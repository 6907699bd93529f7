package models

// ThemePreset is an immutable catalog entry that maps onto a DesignScheme.
type ThemePreset struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Subtitle    string            `json:"subtitle"`
	Description string            `json:"description"`
	Dark        bool              `json:"dark"`
	Palette     map[string]string `json:"palette"`
}

// Scheme builds the design scheme written when the preset is applied.
func (p ThemePreset) Scheme() DesignScheme {
	palette := make(map[string]string, len(p.Palette))
	for k, v := range p.Palette {
		palette[k] = v
	}
	return DesignScheme{
		Palette:  palette,
		Features: append([]string(nil), PresetFeatures...),
		Font:     append([]string(nil), PresetFont...),
	}
}

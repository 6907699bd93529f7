package models

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrInvalidPalette      = errors.New("invalid palette")
	ErrInvalidDesignScheme = errors.New("invalid design scheme")
)

// DesignScheme is the persisted "design-scheme" document. The generation
// pipeline reads it verbatim, so the palette must always hold every role.
type DesignScheme struct {
	Palette  map[string]string `json:"palette"`
	Features []string          `json:"features"`
	Font     []string          `json:"font"`
}

// PaletteRole describes one semantic colour slot of a palette.
type PaletteRole struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// PaletteRoles lists the eleven roles every palette must define.
var PaletteRoles = []PaletteRole{
	{Key: "primary", Label: "Primary", Description: "Main brand color - use for primary buttons, active links, and key interactive elements"},
	{Key: "secondary", Label: "Secondary", Description: "Supporting brand color - use for secondary buttons, inactive states, and complementary elements"},
	{Key: "accent", Label: "Accent", Description: "Highlight color - use for badges, notifications, focus states, and call-to-action elements"},
	{Key: "background", Label: "Background", Description: "Page backdrop - use for the main application/website background behind all content"},
	{Key: "surface", Label: "Surface", Description: "Elevated content areas - use for cards, modals, dropdowns, and panels that sit above the background"},
	{Key: "text", Label: "Text", Description: "Primary text - use for headings, body text, and main readable content"},
	{Key: "textSecondary", Label: "Text Secondary", Description: "Muted text - use for captions, placeholders, timestamps, and less important information"},
	{Key: "border", Label: "Border", Description: "Separators - use for input borders, dividers, table lines, and element outlines"},
	{Key: "success", Label: "Success", Description: "Positive feedback - use for success messages, completed states, and positive indicators"},
	{Key: "warning", Label: "Warning", Description: "Caution alerts - use for warning messages, pending states, and attention-needed indicators"},
	{Key: "error", Label: "Error", Description: "Error states - use for error messages, failed states, and destructive action indicators"},
}

// DesignOption is an entry of a closed design vocabulary.
type DesignOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var DesignFeatures = []DesignOption{
	{Key: "rounded", Label: "Rounded Corners"},
	{Key: "border", Label: "Subtle Border"},
	{Key: "gradient", Label: "Gradient Accent"},
	{Key: "shadow", Label: "Soft Shadow"},
	{Key: "frosted-glass", Label: "Frosted Glass"},
}

var DesignFonts = []DesignOption{
	{Key: "sans-serif", Label: "Sans Serif"},
	{Key: "serif", Label: "Serif"},
	{Key: "monospace", Label: "Monospace"},
	{Key: "cursive", Label: "Cursive"},
	{Key: "fantasy", Label: "Fantasy"},
}

// Features and font written whenever a preset is applied.
var (
	PresetFeatures = []string{"rounded", "gradient", "shadow"}
	PresetFont     = []string{"sans-serif"}
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// DefaultDesignScheme is used until the user picks a preset or edits colours.
func DefaultDesignScheme() DesignScheme {
	return DesignScheme{
		Palette: map[string]string{
			"primary":       "#6366F1",
			"secondary":     "#06B6D4",
			"accent":        "#A855F7",
			"background":    "#0A0E27",
			"surface":       "#1A1F3A",
			"text":          "#FFFFFF",
			"textSecondary": "#94A3B8",
			"border":        "#2D3250",
			"success":       "#10B981",
			"warning":       "#F59E0B",
			"error":         "#EF4444",
		},
		Features: append([]string(nil), PresetFeatures...),
		Font:     append([]string(nil), PresetFont...),
	}
}

// ValidatePalette checks that palette holds exactly the eleven roles, each a hex colour.
func ValidatePalette(palette map[string]string) error {
	var missing []string
	for _, role := range PaletteRoles {
		color, ok := palette[role.Key]
		if !ok {
			missing = append(missing, role.Key)
			continue
		}
		if !colorPattern.MatchString(strings.TrimSpace(color)) {
			return fmt.Errorf("%w: role %s has invalid color %q", ErrInvalidPalette, role.Key, color)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing roles %s", ErrInvalidPalette, strings.Join(missing, ", "))
	}
	if len(palette) != len(PaletteRoles) {
		var extra []string
		for key := range palette {
			if !isPaletteRole(key) {
				extra = append(extra, key)
			}
		}
		sort.Strings(extra)
		return fmt.Errorf("%w: unknown roles %s", ErrInvalidPalette, strings.Join(extra, ", "))
	}
	return nil
}

// Validate checks the whole scheme before it is persisted.
func (d DesignScheme) Validate() error {
	if err := ValidatePalette(d.Palette); err != nil {
		return err
	}
	for _, f := range d.Features {
		if !hasOption(DesignFeatures, f) {
			return fmt.Errorf("%w: unknown feature %q", ErrInvalidDesignScheme, f)
		}
	}
	if len(d.Font) == 0 {
		return fmt.Errorf("%w: font list is empty", ErrInvalidDesignScheme)
	}
	for _, f := range d.Font {
		if !hasOption(DesignFonts, f) {
			return fmt.Errorf("%w: unknown font %q", ErrInvalidDesignScheme, f)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can edit without touching shared state.
func (d DesignScheme) Clone() DesignScheme {
	out := DesignScheme{
		Palette:  make(map[string]string, len(d.Palette)),
		Features: append([]string{}, d.Features...),
		Font:     append([]string{}, d.Font...),
	}
	for k, v := range d.Palette {
		out.Palette[k] = v
	}
	return out
}

func isPaletteRole(key string) bool {
	for _, role := range PaletteRoles {
		if role.Key == key {
			return true
		}
	}
	return false
}

func hasOption(options []DesignOption, key string) bool {
	for _, o := range options {
		if o.Key == key {
			return true
		}
	}
	return false
}

// DesignSchemePatch carries the members a design edit changes. Nil members
// are left as stored.
type DesignSchemePatch struct {
	Palette  map[string]string
	Features []string
	Font     []string
}

// Fields returns the patch as top-level document members.
func (p DesignSchemePatch) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if p.Palette != nil {
		fields["palette"] = p.Palette
	}
	if p.Features != nil {
		fields["features"] = p.Features
	}
	if p.Font != nil {
		fields["font"] = p.Font
	}
	return fields
}

// Apply returns a copy of scheme with the patch laid over it.
func (p DesignSchemePatch) Apply(scheme DesignScheme) DesignScheme {
	out := scheme.Clone()
	if p.Palette != nil {
		out.Palette = make(map[string]string, len(p.Palette))
		for k, v := range p.Palette {
			out.Palette[k] = v
		}
	}
	if p.Features != nil {
		out.Features = append([]string{}, p.Features...)
	}
	if p.Font != nil {
		out.Font = append([]string{}, p.Font...)
	}
	return out
}

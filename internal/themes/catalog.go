package themes

import "boltdesk/internal/models"

// DefaultPresetID is the theme shown before the user picks one.
const DefaultPresetID = "minimal"

var builtinPresets = []models.ThemePreset{
	{
		ID:          "minimal",
		Name:        "Minimal",
		Subtitle:    "Timeless black and white",
		Description: "Apple/Notion style, best for content-dense applications",
		Palette: map[string]string{
			"primary":       "#000000",
			"secondary":     "#6B7280",
			"accent":        "#3B82F6",
			"background":    "#FFFFFF",
			"surface":       "#F9FAFB",
			"text":          "#111827",
			"textSecondary": "#6B7280",
			"border":        "#E5E7EB",
			"success":       "#10B981",
			"warning":       "#F59E0B",
			"error":         "#DC2626",
		},
	},
	{
		ID:          "midnight",
		Name:        "Midnight",
		Subtitle:    "Deep sea at night",
		Description: "Linear/Raycast style, the pick for premium SaaS",
		Dark:        true,
		Palette: map[string]string{
			"primary":       "#818CF8",
			"secondary":     "#38BDF8",
			"accent":        "#F472B6",
			"background":    "#0F172A",
			"surface":       "#1E293B",
			"text":          "#F8FAFC",
			"textSecondary": "#94A3B8",
			"border":        "#334155",
			"success":       "#34D399",
			"warning":       "#FBBF24",
			"error":         "#F87171",
		},
	},
	{
		ID:          "earth",
		Name:        "Earth",
		Subtitle:    "Warm terracotta",
		Description: "Notion/Dropbox style, organic and warm, suits creative work",
		Palette: map[string]string{
			"primary":       "#92400E",
			"secondary":     "#B45309",
			"accent":        "#E11D48",
			"background":    "#FFFBF7",
			"surface":       "#FEF3C7",
			"text":          "#292524",
			"textSecondary": "#78716C",
			"border":        "#E7E5E4",
			"success":       "#059669",
			"warning":       "#D97706",
			"error":         "#DC2626",
		},
	},
	{
		ID:          "cyber",
		Name:        "Cyber",
		Subtitle:    "Graphite neon",
		Description: "Vercel/GitHub Dark style, the pick for developer tools",
		Dark:        true,
		Palette: map[string]string{
			"primary":       "#E2E8F0",
			"secondary":     "#64748B",
			"accent":        "#22D3EE",
			"background":    "#0A0A0A",
			"surface":       "#171717",
			"text":          "#FAFAFA",
			"textSecondary": "#525252",
			"border":        "#262626",
			"success":       "#4ADE80",
			"warning":       "#FACC15",
			"error":         "#FB7185",
		},
	},
	{
		ID:          "glacier",
		Name:        "Glacier",
		Subtitle:    "Cool blue-grey",
		Description: "Figma/Stripe style, calm and professional, suits B2B",
		Palette: map[string]string{
			"primary":       "#0EA5E9",
			"secondary":     "#6366F1",
			"accent":        "#F43F5E",
			"background":    "#F0F9FF",
			"surface":       "#FFFFFF",
			"text":          "#0F172A",
			"textSecondary": "#64748B",
			"border":        "#CBD5E1",
			"success":       "#10B981",
			"warning":       "#F59E0B",
			"error":         "#EF4444",
		},
	},
}

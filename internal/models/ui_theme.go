package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidUITheme = errors.New("invalid appearance")

// UITheme is the persisted "ui-theme" document: the light or dark chrome of
// the shell itself, independent of the generated site's design scheme.
type UITheme string

const (
	UIThemeLight  UITheme = "light"
	UIThemeDark   UITheme = "dark"
	UIThemeSystem UITheme = "system"
)

const DefaultUITheme = UIThemeSystem

// ParseUITheme accepts "light", "dark" or "system", ignoring case and
// surrounding space.
func ParseUITheme(value string) (UITheme, error) {
	switch t := UITheme(strings.ToLower(strings.TrimSpace(value))); t {
	case UIThemeLight, UIThemeDark, UIThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("%w: must be %q, %q or %q, got %q", ErrInvalidUITheme, UIThemeLight, UIThemeDark, UIThemeSystem, value)
	}
}

// Toggled flips dark to light. Light and system both go to dark.
func (t UITheme) Toggled() UITheme {
	if t == UIThemeDark {
		return UIThemeLight
	}
	return UIThemeDark
}

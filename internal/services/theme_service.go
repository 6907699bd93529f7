package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"boltdesk/internal/events"
	"boltdesk/internal/models"
	"boltdesk/internal/preferences"
	"boltdesk/internal/themes"
)

// ThemeView is the selected preset id, the design scheme in effect and the
// shell's own appearance.
type ThemeView struct {
	ThemeID string              `json:"themeId"`
	Scheme  models.DesignScheme `json:"scheme"`
	UITheme models.UITheme      `json:"uiTheme"`
}

// ThemeResult carries the view after a change. Notice is nil when nothing
// happened, for example when an unknown preset was requested.
type ThemeResult struct {
	ThemeID string              `json:"themeId"`
	Scheme  models.DesignScheme `json:"scheme"`
	UITheme models.UITheme      `json:"uiTheme"`
	Notice  *events.Notice      `json:"notice,omitempty"`
}

type ThemeService interface {
	Startup(ctx context.Context)
	Shutdown()
	ListPresets() []models.ThemePreset
	SelectedTheme() string
	CurrentScheme() models.DesignScheme
	ApplyPreset(id string) ThemeResult
	UpdatePalette(palette map[string]string) (ThemeResult, error)
	SetFeatures(features []string) (ThemeResult, error)
	SetFonts(fonts []string) (ThemeResult, error)
	ResetScheme() ThemeResult
	UITheme() models.UITheme
	SetUITheme(theme string) (ThemeResult, error)
	ToggleUITheme() ThemeResult
}

type themeService struct {
	store    *preferences.Store
	registry *themes.Registry
	emitter  *events.Emitter
	log      logrus.FieldLogger

	mu            sync.RWMutex
	ctx           context.Context
	view          ThemeView
	loaded        bool
	unsubscribers []func()
}

func NewThemeService(store *preferences.Store, registry *themes.Registry, emitter *events.Emitter, log logrus.FieldLogger) ThemeService {
	return &themeService{
		store:    store,
		registry: registry,
		emitter:  emitter,
		log:      log,
		ctx:      context.Background(),
	}
}

func (s *themeService) Startup(ctx context.Context) {
	s.Shutdown()
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.refresh()
	bus := s.store.Bus()
	onChange := func(events.StorageEvent) { s.refresh() }
	unsubscribers := []func(){
		bus.SubscribeKey(preferences.KeyDesignScheme, onChange),
		bus.SubscribeKey(preferences.KeyWebsiteTheme, onChange),
		bus.SubscribeKey(preferences.KeyUITheme, onChange),
	}

	s.mu.Lock()
	s.unsubscribers = unsubscribers
	s.mu.Unlock()
}

func (s *themeService) Shutdown() {
	s.mu.Lock()
	unsubscribers := s.unsubscribers
	s.unsubscribers = nil
	s.mu.Unlock()
	for _, unsubscribe := range unsubscribers {
		unsubscribe()
	}
}

func (s *themeService) ListPresets() []models.ThemePreset {
	return s.registry.List()
}

func (s *themeService) SelectedTheme() string {
	return s.current().ThemeID
}

func (s *themeService) CurrentScheme() models.DesignScheme {
	return s.current().Scheme.Clone()
}

// ApplyPreset writes the preset's scheme and then selects it. An unknown id
// leaves everything untouched and produces no notice. The selection is only
// persisted once the scheme has landed, so a stored theme id never points at
// a scheme that was not saved.
func (s *themeService) ApplyPreset(id string) ThemeResult {
	id = strings.TrimSpace(id)
	preset, ok := s.registry.Lookup(id)
	if !ok {
		s.log.WithField("preset", id).Debug("ignoring unknown theme preset")
		return s.result(s.current(), nil)
	}

	scheme := preset.Scheme()
	ctx := s.context()
	err := s.store.SaveDesignScheme(ctx, scheme)
	if err == nil {
		err = s.store.SaveWebsiteTheme(ctx, preset.ID)
	}

	view := s.setView(func(v *ThemeView) {
		v.ThemeID = preset.ID
		v.Scheme = scheme
	})
	notice := events.NewSuccess(fmt.Sprintf("Theme switched to %s", preset.Name)).With("preset", preset.ID)
	if err != nil {
		s.log.WithError(err).WithField("preset", preset.ID).Warn("theme change kept in memory only")
		notice = events.NewError("Failed to save theme").With("preset", preset.ID)
	}
	s.emitter.EmitNotice(notice)
	return s.result(view, &notice)
}

// UpdatePalette replaces the palette and keeps the stored features and font.
func (s *themeService) UpdatePalette(palette map[string]string) (ThemeResult, error) {
	if err := models.ValidatePalette(palette); err != nil {
		return s.rejectEdit(err)
	}
	trimmed := make(map[string]string, len(palette))
	for role, color := range palette {
		trimmed[role] = strings.TrimSpace(color)
	}
	return s.saveEdit(models.DesignSchemePatch{Palette: trimmed}, "Colors updated")
}

// SetFeatures replaces the feature set and keeps the stored palette and font.
func (s *themeService) SetFeatures(features []string) (ThemeResult, error) {
	return s.saveEdit(models.DesignSchemePatch{Features: dedupe(features)}, "Design features updated")
}

// SetFonts replaces the font list and keeps the stored palette and features.
func (s *themeService) SetFonts(fonts []string) (ThemeResult, error) {
	return s.saveEdit(models.DesignSchemePatch{Font: dedupe(fonts)}, "Font updated")
}

// ResetScheme restores the default design scheme.
func (s *themeService) ResetScheme() ThemeResult {
	def := models.DefaultDesignScheme()
	res, _ := s.saveEdit(models.DesignSchemePatch{
		Palette:  def.Palette,
		Features: def.Features,
		Font:     def.Font,
	}, "Design reset to default")
	return res
}

func (s *themeService) saveEdit(patch models.DesignSchemePatch, success string) (ThemeResult, error) {
	next, err := s.store.PatchDesignScheme(s.context(), patch)
	if err != nil && !errors.Is(err, preferences.ErrStorageUnavailable) {
		return s.rejectEdit(err)
	}

	view := s.setView(func(v *ThemeView) { v.Scheme = next })
	notice := events.NewSuccess(success)
	if err != nil {
		s.log.WithError(err).Warn("design change kept in memory only")
		notice = events.NewError("Failed to save design")
	}
	s.emitter.EmitNotice(notice)
	return s.result(view, &notice), nil
}

func (s *themeService) UITheme() models.UITheme {
	return s.current().UITheme
}

// SetUITheme sets the shell's appearance to light, dark or system.
func (s *themeService) SetUITheme(theme string) (ThemeResult, error) {
	parsed, err := models.ParseUITheme(theme)
	if err != nil {
		return s.rejectEdit(err)
	}
	return s.saveUITheme(parsed), nil
}

// ToggleUITheme switches between light and dark, starting from the stored
// appearance.
func (s *themeService) ToggleUITheme() ThemeResult {
	return s.saveUITheme(s.store.UITheme(s.context()).Toggled())
}

func (s *themeService) saveUITheme(theme models.UITheme) ThemeResult {
	err := s.store.SaveUITheme(s.context(), theme)

	view := s.setView(func(v *ThemeView) { v.UITheme = theme })
	notice := events.NewSuccess(fmt.Sprintf("Appearance set to %s", theme)).With("uiTheme", string(theme))
	if err != nil {
		s.log.WithError(err).WithField("uiTheme", theme).Warn("appearance change kept in memory only")
		notice = events.NewError("Failed to save appearance")
	}
	s.emitter.EmitNotice(notice)
	return s.result(view, &notice)
}

func (s *themeService) rejectEdit(err error) (ThemeResult, error) {
	notice := events.NewWarn(err.Error())
	s.emitter.EmitNotice(notice)
	return s.result(s.current(), &notice), err
}

func (s *themeService) current() ThemeView {
	s.mu.RLock()
	view, loaded := s.view, s.loaded
	s.mu.RUnlock()
	if !loaded {
		return s.refresh()
	}
	return view
}

func (s *themeService) refresh() ThemeView {
	ctx := s.context()
	fresh := ThemeView{
		ThemeID: s.store.WebsiteTheme(ctx),
		Scheme:  s.store.DesignScheme(ctx),
		UITheme: s.store.UITheme(ctx),
	}
	s.mu.Lock()
	s.view = fresh
	s.loaded = true
	s.mu.Unlock()
	return fresh
}

// setView applies change to the loaded view and returns the result.
func (s *themeService) setView(change func(*ThemeView)) ThemeView {
	s.current()
	s.mu.Lock()
	defer s.mu.Unlock()
	change(&s.view)
	return s.view
}

func (s *themeService) result(view ThemeView, notice *events.Notice) ThemeResult {
	return ThemeResult{ThemeID: view.ThemeID, Scheme: view.Scheme.Clone(), UITheme: view.UITheme, Notice: notice}
}

func (s *themeService) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"boltdesk/internal/events"
	"boltdesk/internal/models"
	"boltdesk/internal/preferences"
)

var (
	ErrInvalidLanguage = errors.New("unsupported language")
	ErrInvalidTimezone = errors.New("unknown timezone")
)

// ProfileResult is what the settings surface shows after a profile change.
// Profile reflects the attempted change even when it could not be saved.
type ProfileResult struct {
	Profile models.UserProfile `json:"profile"`
	Notice  events.Notice      `json:"notice"`
}

type ProfileService interface {
	Startup(ctx context.Context)
	Shutdown()
	GetProfile() models.UserProfile
	SetNotifications(enabled bool) ProfileResult
	SetLanguage(code string) (ProfileResult, error)
	SetTimezone(zone string) (ProfileResult, error)
	Languages() []models.Language
}

type profileService struct {
	store   *preferences.Store
	emitter *events.Emitter
	log     logrus.FieldLogger

	mu          sync.RWMutex
	ctx         context.Context
	view        models.UserProfile
	loaded      bool
	unsubscribe func()
}

func NewProfileService(store *preferences.Store, emitter *events.Emitter, log logrus.FieldLogger) ProfileService {
	return &profileService{
		store:   store,
		emitter: emitter,
		log:     log,
		ctx:     context.Background(),
	}
}

func (s *profileService) Startup(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Unlock()

	s.refresh()
	unsubscribe := s.store.Bus().SubscribeKey(preferences.KeyUserProfile, func(events.StorageEvent) {
		s.refresh()
	})

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

func (s *profileService) Shutdown() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *profileService) GetProfile() models.UserProfile {
	s.mu.RLock()
	view, loaded := s.view, s.loaded
	s.mu.RUnlock()
	if !loaded {
		return s.refresh()
	}
	return view
}

func (s *profileService) SetNotifications(enabled bool) ProfileResult {
	msg := "Notifications disabled"
	if enabled {
		msg = "Notifications enabled"
	}
	return s.update(models.UserProfilePatch{Notifications: &enabled}, msg)
}

func (s *profileService) SetLanguage(code string) (ProfileResult, error) {
	code = strings.TrimSpace(code)
	if !models.IsSupportedLanguage(code) {
		return ProfileResult{Profile: s.GetProfile()}, fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
	}
	return s.update(models.UserProfilePatch{Language: &code}, "Settings updated"), nil
}

func (s *profileService) SetTimezone(zone string) (ProfileResult, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return ProfileResult{Profile: s.GetProfile()}, fmt.Errorf("%w: empty", ErrInvalidTimezone)
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return ProfileResult{Profile: s.GetProfile()}, fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}
	return s.update(models.UserProfilePatch{Timezone: &zone}, "Settings updated"), nil
}

func (s *profileService) Languages() []models.Language {
	return append([]models.Language(nil), models.Languages...)
}

func (s *profileService) update(patch models.UserProfilePatch, success string) ProfileResult {
	profile, err := s.store.UpdateProfile(s.context(), patch)

	s.mu.Lock()
	s.view = profile
	s.loaded = true
	s.mu.Unlock()

	notice := events.NewSuccess(success)
	if err != nil {
		s.log.WithError(err).Warn("profile change kept in memory only")
		notice = events.NewError("Failed to update settings")
	}
	s.emitter.EmitNotice(notice)
	return ProfileResult{Profile: profile, Notice: notice}
}

func (s *profileService) refresh() models.UserProfile {
	profile := s.store.Profile(s.context())
	s.mu.Lock()
	s.view = profile
	s.loaded = true
	s.mu.Unlock()
	return profile
}

func (s *profileService) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

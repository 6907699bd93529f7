package preferences

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"boltdesk/internal/events"
	"boltdesk/internal/models"
	"boltdesk/internal/repositories"
)

// ErrStorageUnavailable wraps every failure of the underlying storage. It is
// never fatal: callers keep their optimistic state and tell the user.
var ErrStorageUnavailable = errors.New("preference storage unavailable")

// Options wires a Store. Documents and Secrets are required.
type Options struct {
	// Documents holds every document except api-keys.
	Documents repositories.DocumentRepository
	// Secrets holds the api-keys document.
	Secrets repositories.DocumentRepository
	Bus     *events.Bus
	Memo    *APIKeyMemo
	Log     logrus.FieldLogger
	// Timezone reports the zone used for a fresh profile. Defaults to SystemTimezone.
	Timezone func() string
}

// Store reads and writes named preference documents. Writes are
// read-merge-write and announce themselves on the bus once they have landed.
type Store struct {
	docs     repositories.DocumentRepository
	secrets  repositories.DocumentRepository
	bus      *events.Bus
	memo     *APIKeyMemo
	log      logrus.FieldLogger
	timezone func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(opts Options) (*Store, error) {
	if opts.Documents == nil {
		return nil, errors.New("documents repository is required")
	}
	if opts.Secrets == nil {
		return nil, errors.New("secrets repository is required")
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Log)
	}
	if opts.Memo == nil {
		opts.Memo = NewAPIKeyMemo()
	}
	if opts.Timezone == nil {
		opts.Timezone = SystemTimezone
	}
	return &Store{
		docs:     opts.Documents,
		secrets:  opts.Secrets,
		bus:      opts.Bus,
		memo:     opts.Memo,
		log:      opts.Log,
		timezone: opts.Timezone,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// Bus returns the channel on which writes are announced.
func (s *Store) Bus() *events.Bus {
	return s.bus
}

// ReadDocument returns the stored document for key, or the key's default when
// nothing is stored, the stored value is not valid JSON, or storage fails.
func (s *Store) ReadDocument(ctx context.Context, key string) json.RawMessage {
	raw, ok := s.readStored(ctx, key)
	if !ok {
		return s.defaultDocument(key)
	}
	return raw
}

// WriteDocument shallow-merges fields over the stored object for key and
// writes the result back. Members not named in fields are preserved. The
// merged document is returned even when the write fails, so callers can show
// it optimistically; the error then wraps ErrStorageUnavailable.
func (s *Store) WriteDocument(ctx context.Context, key string, fields map[string]any) (json.RawMessage, error) {
	patch, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, key, func(obj map[string]json.RawMessage) {
		for k, v := range patch {
			obj[k] = v
		}
	})
}

// DeleteMembers removes the named top-level members from the stored object
// for key and keeps the rest. It follows the same locking and publication
// rules as WriteDocument.
func (s *Store) DeleteMembers(ctx context.Context, key string, names ...string) (json.RawMessage, error) {
	return s.modify(ctx, key, func(obj map[string]json.RawMessage) {
		for _, name := range names {
			delete(obj, name)
		}
	})
}

// modify runs one read-change-write cycle on key while holding the key's lock.
func (s *Store) modify(ctx context.Context, key string, change func(map[string]json.RawMessage)) (json.RawMessage, error) {
	unlock := s.lockKey(key)
	current, readErr := s.readObject(ctx, key)
	change(current)
	merged, err := json.Marshal(current)
	if err != nil {
		unlock()
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	if readErr != nil {
		unlock()
		return merged, readErr
	}
	err = s.put(ctx, key, merged)
	unlock()
	if err != nil {
		return merged, err
	}

	s.bus.Publish(events.NewStorageEvent(key, string(merged)))
	return merged, nil
}

// PutDocument replaces the document for key with value.
func (s *Store) PutDocument(ctx context.Context, key string, value any) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}

	unlock := s.lockKey(key)
	err = s.put(ctx, key, raw)
	unlock()
	if err != nil {
		return raw, err
	}

	s.bus.Publish(events.NewStorageEvent(key, string(raw)))
	return raw, nil
}

func (s *Store) repoFor(key string) repositories.DocumentRepository {
	if key == KeyAPIKeys {
		return s.secrets
	}
	return s.docs
}

// readStored returns the stored document if it exists and is valid JSON.
func (s *Store) readStored(ctx context.Context, key string) (json.RawMessage, bool) {
	value, found, err := s.repoFor(key).Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("preference read failed, using default")
		return nil, false
	}
	if !found {
		return nil, false
	}
	if !json.Valid([]byte(value)) {
		s.log.WithField("key", key).Warn("stored preference is not valid JSON, using default")
		return nil, false
	}
	return json.RawMessage(value), true
}

// readObject returns the stored document as a member map, or an empty map
// when nothing usable is stored.
func (s *Store) readObject(ctx context.Context, key string) (map[string]json.RawMessage, error) {
	obj := make(map[string]json.RawMessage)
	value, found, err := s.repoFor(key).Get(ctx, key)
	if err != nil {
		return obj, fmt.Errorf("read %s: %w: %w", key, ErrStorageUnavailable, err)
	}
	if !found {
		return obj, nil
	}
	trimmed := bytes.TrimSpace([]byte(value))
	if err := json.Unmarshal(trimmed, &obj); err != nil || obj == nil {
		s.log.WithField("key", key).Warn("stored preference is not an object, merging over an empty document")
		return make(map[string]json.RawMessage), nil
	}
	return obj, nil
}

func (s *Store) put(ctx context.Context, key string, raw []byte) error {
	if err := s.repoFor(key).Put(ctx, key, string(raw)); err != nil {
		s.log.WithError(err).WithField("key", key).Error("preference write failed")
		return fmt.Errorf("write %s: %w: %w", key, ErrStorageUnavailable, err)
	}
	return nil
}

// lockKey serialises read-merge-write cycles on one key within this process.
func (s *Store) lockKey(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func encodeFields(fields map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}

// Typed accessors.

// Profile returns the user profile, with missing fields taken from the default.
func (s *Store) Profile(ctx context.Context) models.UserProfile {
	return s.decodeProfile(s.ReadDocument(ctx, KeyUserProfile))
}

// UpdateProfile merges patch into the stored profile. The returned profile is
// what the user should see, whether or not the write succeeded.
func (s *Store) UpdateProfile(ctx context.Context, patch models.UserProfilePatch) (models.UserProfile, error) {
	merged, err := s.WriteDocument(ctx, KeyUserProfile, patch.Fields())
	if merged == nil {
		return patch.Apply(s.Profile(ctx)), err
	}
	return patch.Apply(s.decodeProfile(merged)), err
}

// decodeProfile reads each member on its own, so one malformed member only
// costs that member its stored value.
func (s *Store) decodeProfile(raw json.RawMessage) models.UserProfile {
	profile := DefaultProfile(s.timezone())
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		s.log.WithError(err).Warn("user profile has unexpected shape, using default")
		return profile
	}
	decodeMember(s.log, members, "notifications", &profile.Notifications)
	decodeMember(s.log, members, "language", &profile.Language)
	decodeMember(s.log, members, "timezone", &profile.Timezone)
	return profile
}

func decodeMember[T any](log logrus.FieldLogger, members map[string]json.RawMessage, name string, dst *T) {
	raw, ok := members[name]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.WithError(err).WithField("member", name).Warn("ignoring malformed profile member")
		return
	}
	*dst = v
}

// DesignScheme returns the stored scheme, or the default when the stored one
// is missing or incomplete.
func (s *Store) DesignScheme(ctx context.Context) models.DesignScheme {
	scheme, ok := s.storedDesignScheme(ctx)
	if !ok {
		return models.DefaultDesignScheme()
	}
	return scheme
}

func (s *Store) storedDesignScheme(ctx context.Context) (models.DesignScheme, bool) {
	raw, ok := s.readStored(ctx, KeyDesignScheme)
	if !ok {
		return models.DesignScheme{}, false
	}
	return s.decodeDesignScheme(raw)
}

func (s *Store) decodeDesignScheme(raw json.RawMessage) (models.DesignScheme, bool) {
	var scheme models.DesignScheme
	if err := json.Unmarshal(raw, &scheme); err != nil {
		s.log.WithError(err).Warn("design scheme has unexpected shape, using default")
		return models.DesignScheme{}, false
	}
	if err := scheme.Validate(); err != nil {
		s.log.WithError(err).Warn("stored design scheme is incomplete, using default")
		return models.DesignScheme{}, false
	}
	return scheme, true
}

// SaveDesignScheme validates and writes scheme. An invalid scheme is never
// written.
func (s *Store) SaveDesignScheme(ctx context.Context, scheme models.DesignScheme) error {
	if err := scheme.Validate(); err != nil {
		return err
	}
	_, err := s.WriteDocument(ctx, KeyDesignScheme, schemeFields(scheme))
	return err
}

// PatchDesignScheme writes only the members named in patch, so members
// changed by another writer since the caller last looked are kept. The
// patched scheme is validated against the current stored one before anything
// is written. When the stored scheme is unusable the whole patched scheme is
// written instead. The returned scheme is what the user should see.
func (s *Store) PatchDesignScheme(ctx context.Context, patch models.DesignSchemePatch) (models.DesignScheme, error) {
	base, stored := s.storedDesignScheme(ctx)
	if !stored {
		base = models.DefaultDesignScheme()
	}
	next := patch.Apply(base)
	if err := next.Validate(); err != nil {
		return base, err
	}

	fields := patch.Fields()
	if !stored {
		fields = schemeFields(next)
	}
	merged, err := s.WriteDocument(ctx, KeyDesignScheme, fields)
	if merged == nil {
		return next, err
	}
	if scheme, ok := s.decodeDesignScheme(merged); ok {
		return scheme, err
	}
	return next, err
}

func schemeFields(scheme models.DesignScheme) map[string]any {
	return map[string]any{
		"palette":  scheme.Palette,
		"features": nonNil(scheme.Features),
		"font":     scheme.Font,
	}
}

// WebsiteTheme returns the selected preset id.
func (s *Store) WebsiteTheme(ctx context.Context) string {
	raw := s.ReadDocument(ctx, KeyWebsiteTheme)
	var id string
	if err := json.Unmarshal(raw, &id); err != nil || id == "" {
		var fallback string
		_ = json.Unmarshal(s.defaultDocument(KeyWebsiteTheme), &fallback)
		return fallback
	}
	return id
}

func (s *Store) SaveWebsiteTheme(ctx context.Context, id string) error {
	_, err := s.PutDocument(ctx, KeyWebsiteTheme, id)
	return err
}

// UITheme returns the shell's appearance, or the default when nothing valid
// is stored.
func (s *Store) UITheme(ctx context.Context) models.UITheme {
	var value string
	if err := json.Unmarshal(s.ReadDocument(ctx, KeyUITheme), &value); err != nil {
		return models.DefaultUITheme
	}
	theme, err := models.ParseUITheme(value)
	if err != nil {
		s.log.WithError(err).Warn("stored appearance is not recognised, using default")
		return models.DefaultUITheme
	}
	return theme
}

func (s *Store) SaveUITheme(ctx context.Context, theme models.UITheme) error {
	if _, err := models.ParseUITheme(string(theme)); err != nil {
		return err
	}
	_, err := s.PutDocument(ctx, KeyUITheme, theme)
	return err
}

// APIKeys returns the stored provider keys. The map is shared with other
// readers of the same stored document and must not be modified.
func (s *Store) APIKeys(ctx context.Context) models.APIKeys {
	raw, ok := s.readStored(ctx, KeyAPIKeys)
	if !ok {
		return models.APIKeys{}
	}
	keys, err := s.memo.Parse(string(raw))
	if err != nil {
		s.log.WithError(err).Warn("api keys document has unexpected shape, treating as empty")
		return models.APIKeys{}
	}
	return keys
}

// MergeAPIKeys sets the given providers' keys, keeping every other provider.
func (s *Store) MergeAPIKeys(ctx context.Context, keys models.APIKeys) (models.APIKeys, error) {
	fields := make(map[string]any, len(keys))
	for p, v := range keys {
		fields[p] = v
	}
	merged, err := s.WriteDocument(ctx, KeyAPIKeys, fields)
	return s.parseKeys(merged, keys), err
}

// ReplaceAPIKeys overwrites the whole api-keys document. Use DeleteAPIKeys to
// drop single providers without racing concurrent merges.
func (s *Store) ReplaceAPIKeys(ctx context.Context, keys models.APIKeys) (models.APIKeys, error) {
	if keys == nil {
		keys = models.APIKeys{}
	}
	raw, err := s.PutDocument(ctx, KeyAPIKeys, keys)
	return s.parseKeys(raw, keys), err
}

// DeleteAPIKeys drops the given providers' entries and keeps every other
// provider, in one locked cycle.
func (s *Store) DeleteAPIKeys(ctx context.Context, providers ...string) (models.APIKeys, error) {
	raw, err := s.DeleteMembers(ctx, KeyAPIKeys, providers...)
	return s.parseKeys(raw, models.APIKeys{}), err
}

func (s *Store) parseKeys(raw json.RawMessage, fallback models.APIKeys) models.APIKeys {
	if raw == nil {
		return fallback.Clone()
	}
	keys, err := s.memo.Parse(string(raw))
	if err != nil {
		return fallback.Clone()
	}
	return keys
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

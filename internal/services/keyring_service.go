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
)

var (
	ErrProviderRequired = errors.New("provider is required")
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrEmptyAPIKey      = errors.New("API key is empty")
)

// EnvKeyStatus answers whether a provider's key comes from the environment.
type EnvKeyStatus interface {
	IsEnvProvided(ctx context.Context, provider string) bool
}

// APIKeyResult is what the key manager shows after a change.
type APIKeyResult struct {
	Status models.APIKeyStatus `json:"status"`
	Notice events.Notice       `json:"notice"`
}

// APIKeyService manages provider keys held in the OS keyring.
type APIKeyService struct {
	store   *preferences.Store
	catalog ModelCatalogService
	env     EnvKeyStatus
	emitter *events.Emitter
	log     logrus.FieldLogger

	mu  sync.RWMutex
	ctx context.Context
}

func NewAPIKeyService(store *preferences.Store, catalog ModelCatalogService, env EnvKeyStatus, emitter *events.Emitter, log logrus.FieldLogger) *APIKeyService {
	return &APIKeyService{
		store:   store,
		catalog: catalog,
		env:     env,
		emitter: emitter,
		log:     log,
		ctx:     context.Background(),
	}
}

func (s *APIKeyService) Startup(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
}

// GetApiKey returns the stored key. A provider without an entry and one whose
// key was cleared both yield "".
func (s *APIKeyService) GetApiKey(provider string) (string, error) {
	provider, err := s.provider(provider)
	if err != nil {
		return "", err
	}
	key, _ := s.store.APIKeys(s.context()).Lookup(provider)
	return key, nil
}

func (s *APIKeyService) StoreApiKey(provider string, apiKey string) (APIKeyResult, error) {
	provider, err := s.provider(provider)
	if err != nil {
		return APIKeyResult{}, err
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return APIKeyResult{}, ErrEmptyAPIKey
	}

	keys, err := s.store.MergeAPIKeys(s.context(), models.APIKeys{provider: apiKey})
	return s.finish(provider, keys, err, "API key saved for %s"), nil
}

// ClearApiKey keeps the provider's entry but empties it, which reads as
// "explicitly cleared" rather than "never configured".
func (s *APIKeyService) ClearApiKey(provider string) (APIKeyResult, error) {
	provider, err := s.provider(provider)
	if err != nil {
		return APIKeyResult{}, err
	}
	keys, err := s.store.MergeAPIKeys(s.context(), models.APIKeys{provider: ""})
	return s.finish(provider, keys, err, "API key cleared for %s"), nil
}

// DeleteApiKey drops the provider's entry entirely.
func (s *APIKeyService) DeleteApiKey(provider string) (APIKeyResult, error) {
	provider, err := s.provider(provider)
	if err != nil {
		return APIKeyResult{}, err
	}
	keys, err := s.store.DeleteAPIKeys(s.context(), provider)
	return s.finish(provider, keys, err, "API key removed for %s"), nil
}

func (s *APIKeyService) KeyStatus(provider string) (models.APIKeyStatus, error) {
	provider, err := s.provider(provider)
	if err != nil {
		return models.APIKeyStatus{}, err
	}
	ctx := s.context()
	return s.status(ctx, provider, s.store.APIKeys(ctx)), nil
}

// ListKeyStatuses reports every catalog provider in catalog order.
func (s *APIKeyService) ListKeyStatuses() []models.APIKeyStatus {
	ctx := s.context()
	keys := s.store.APIKeys(ctx)
	names := s.catalog.ProviderNames()
	out := make([]models.APIKeyStatus, 0, len(names))
	for _, name := range names {
		out = append(out, s.status(ctx, name, keys))
	}
	return out
}

// status resolves where a provider's key comes from: a stored non-empty key
// wins over the environment.
func (s *APIKeyService) status(ctx context.Context, provider string, keys models.APIKeys) models.APIKeyStatus {
	info, _ := s.catalog.Provider(provider)
	st := models.APIKeyStatus{
		Provider:     provider,
		Label:        info.DisplayName,
		Source:       models.KeySourceNone,
		GetAPIKeyURL: info.GetAPIKeyURL,
	}
	if st.Label == "" {
		st.Label = provider
	}

	key, present := keys.Lookup(provider)
	st.Cleared = present && key == ""
	switch {
	case key != "":
		st.Source = models.KeySourceStored
	case s.env != nil && s.env.IsEnvProvided(ctx, provider):
		st.Source = models.KeySourceEnvironment
	}
	st.Configured = st.Source != models.KeySourceNone
	return st
}

func (s *APIKeyService) finish(provider string, keys models.APIKeys, err error, success string) APIKeyResult {
	st := s.status(s.context(), provider, keys)
	notice := events.NewSuccess(fmt.Sprintf(success, st.Label)).With("provider", provider)
	if err != nil {
		s.log.WithError(err).WithField("provider", provider).Warn("api key change kept in memory only")
		notice = events.NewError("Failed to save API key").With("provider", provider)
	}
	s.emitter.EmitNotice(notice)
	return APIKeyResult{Status: st, Notice: notice}
}

func (s *APIKeyService) provider(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrProviderRequired
	}
	if _, ok := s.catalog.Provider(name); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return name, nil
}

func (s *APIKeyService) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

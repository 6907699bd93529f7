package unit_tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boltdesk/internal/events"
	"boltdesk/internal/models"
	"boltdesk/internal/preferences"
	"boltdesk/internal/services"
)

func TestAPIKeyService_StoreAndGet(t *testing.T) {
	h := newHarness(t, nil)
	svc := h.services.APIKeys

	res, err := svc.StoreApiKey("anthropic", "  sk-ant-123  ")
	require.NoError(t, err)
	assert.Equal(t, events.NoticeSuccess, res.Notice.Type)
	assert.Equal(t, models.KeySourceStored, res.Status.Source)
	assert.True(t, res.Status.Configured)
	assert.Equal(t, "Anthropic", res.Status.Label)

	key, err := svc.GetApiKey("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-123", key)

	raw, ok := h.secrets.Raw(preferences.KeyAPIKeys)
	require.True(t, ok)
	assert.JSONEq(t, `{"anthropic":"sk-ant-123"}`, raw)
	_, inDocs := h.docs.Raw(preferences.KeyAPIKeys)
	assert.False(t, inDocs)
}

func TestAPIKeyService_StoreKeepsOtherProviders(t *testing.T) {
	h := newHarness(t, nil)
	svc := h.services.APIKeys
	_, err := svc.StoreApiKey("openai", "sk-1")
	require.NoError(t, err)
	_, err = svc.StoreApiKey("google", "g-2")
	require.NoError(t, err)

	raw, _ := h.secrets.Raw(preferences.KeyAPIKeys)
	assert.JSONEq(t, `{"openai":"sk-1","google":"g-2"}`, raw)
}

func TestAPIKeyService_ClearVersusDelete(t *testing.T) {
	h := newHarness(t, nil)
	svc := h.services.APIKeys
	_, err := svc.StoreApiKey("openai", "sk-1")
	require.NoError(t, err)

	res, err := svc.ClearApiKey("openai")
	require.NoError(t, err)
	assert.True(t, res.Status.Cleared)
	assert.False(t, res.Status.Configured)
	raw, _ := h.secrets.Raw(preferences.KeyAPIKeys)
	assert.JSONEq(t, `{"openai":""}`, raw)

	res, err = svc.DeleteApiKey("openai")
	require.NoError(t, err)
	assert.False(t, res.Status.Cleared)
	assert.Equal(t, models.KeySourceNone, res.Status.Source)
	raw, _ = h.secrets.Raw(preferences.KeyAPIKeys)
	assert.JSONEq(t, `{}`, raw)
}

func TestAPIKeyService_StatusPrefersStoredOverEnvironment(t *testing.T) {
	h := newHarness(t, envStub{"openai": true, "deepseek": true})
	svc := h.services.APIKeys
	_, err := svc.StoreApiKey("openai", "sk-1")
	require.NoError(t, err)

	st, err := svc.KeyStatus("openai")
	require.NoError(t, err)
	assert.Equal(t, models.KeySourceStored, st.Source)

	st, err = svc.KeyStatus("deepseek")
	require.NoError(t, err)
	assert.Equal(t, models.KeySourceEnvironment, st.Source)
	assert.True(t, st.Configured)

	st, err = svc.KeyStatus("mistral")
	require.NoError(t, err)
	assert.Equal(t, models.KeySourceNone, st.Source)
	assert.NotEmpty(t, st.GetAPIKeyURL)
}

func TestAPIKeyService_ListKeyStatusesFollowsCatalog(t *testing.T) {
	h := newHarness(t, envStub{"google": true})
	statuses := h.services.APIKeys.ListKeyStatuses()

	var names []string
	for _, st := range statuses {
		names = append(names, st.Provider)
	}
	assert.Equal(t, h.services.Catalog.ProviderNames(), names)
	for _, st := range statuses {
		if st.Provider == "google" {
			assert.Equal(t, models.KeySourceEnvironment, st.Source)
		}
	}
}

func TestAPIKeyService_RejectsBadInput(t *testing.T) {
	h := newHarness(t, nil)
	svc := h.services.APIKeys

	_, err := svc.StoreApiKey("", "sk")
	assert.ErrorIs(t, err, services.ErrProviderRequired)
	_, err = svc.StoreApiKey("acme", "sk")
	assert.ErrorIs(t, err, services.ErrUnknownProvider)
	_, err = svc.StoreApiKey("openai", "   ")
	assert.ErrorIs(t, err, services.ErrEmptyAPIKey)
	_, err = svc.GetApiKey(" ")
	assert.ErrorIs(t, err, services.ErrProviderRequired)
	assert.Zero(t, h.secrets.Puts())
}

func TestAPIKeyService_KeyringFailureReportsError(t *testing.T) {
	h := newHarness(t, nil)
	h.secrets.PutFunc = func(context.Context, string, string) error {
		return errors.New("keyring locked")
	}

	res, err := h.services.APIKeys.StoreApiKey("openai", "sk-1")
	require.NoError(t, err)
	assert.Equal(t, events.NoticeError, res.Notice.Type)
	assert.Equal(t, models.KeySourceStored, res.Status.Source)
}

func TestAPIKeyService_DeleteRacingStoresLosesNothing(t *testing.T) {
	h := newHarness(t, nil)
	svc := h.services.APIKeys
	h.secrets.Seed(preferences.KeyAPIKeys, `{"anthropic":"sk-ant"}`)
	providers := []string{"openai", "google", "deepseek", "mistral", "openrouter"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.DeleteApiKey("anthropic")
		assert.NoError(t, err)
	}()
	for _, p := range providers {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, err := svc.StoreApiKey(p, "key-"+p)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	for _, p := range providers {
		key, err := svc.GetApiKey(p)
		require.NoError(t, err)
		assert.Equal(t, "key-"+p, key, p)
	}
	st, err := svc.KeyStatus("anthropic")
	require.NoError(t, err)
	assert.Equal(t, models.KeySourceNone, st.Source)
	assert.False(t, st.Cleared)
}

package unit_tests

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boltdesk/internal/assets"
	"boltdesk/internal/services"
)

func TestModelCatalogService_EmbeddedCatalog(t *testing.T) {
	catalog, err := services.NewModelCatalogService(assets.ModelsData)
	require.NoError(t, err)

	names := catalog.ProviderNames()
	assert.Equal(t, []string{"openai", "anthropic", "google", "deepseek", "openrouter", "mistral"}, names)

	for _, p := range catalog.ListProviders() {
		assert.NotEmpty(t, p.DisplayName, p.Name)
		assert.NotEmpty(t, p.EnvKeys, p.Name)
	}

	groups := catalog.ListModelGroups()
	require.Len(t, groups, len(names))
	for _, g := range groups {
		assert.NotEmpty(t, g.Models, g.ProviderID)
		for _, m := range g.Models {
			assert.Equal(t, g.ProviderID, m.ProviderID)
			got, err := catalog.GetModel(m.Key)
			require.NoError(t, err)
			assert.Equal(t, m, *got)
		}
	}

	assert.Equal(t, []string{"GOOGLE_GENERATIVE_AI_API_KEY", "GEMINI_API_KEY"}, catalog.EnvKeys("google"))
	assert.Nil(t, catalog.EnvKeys("acme"))
	_, ok := catalog.Provider("acme")
	assert.False(t, ok)
}

func TestModelCatalogService_ProviderIsCopied(t *testing.T) {
	catalog, err := services.NewModelCatalogService(assets.ModelsData)
	require.NoError(t, err)

	p, ok := catalog.Provider("openai")
	require.True(t, ok)
	p.EnvKeys[0] = "CHANGED"
	assert.Equal(t, "OPENAI_API_KEY", catalog.EnvKeys("openai")[0])
}

func TestModelCatalogService_RejectsBadAsset(t *testing.T) {
	_, err := services.NewModelCatalogService([]byte(`{"providers":`))
	assert.Error(t, err)

	_, err = services.NewModelCatalogService([]byte(`{"providers":[{"id":"a"},{"id":"a"}]}`))
	assert.Error(t, err)

	catalog, err := services.NewModelCatalogService([]byte(`{"providers":[{"id":" x ","models":[{"apiName":"m"}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, catalog.ProviderNames())
	_, err = catalog.GetModel("")
	assert.Error(t, err)
	_, err = catalog.GetModel("x|missing")
	assert.Error(t, err)
	m, err := catalog.GetModel("x|m")
	require.NoError(t, err)
	assert.Equal(t, "x", m.ProviderName)
}

func TestDesignContextService_UsesStoredScheme(t *testing.T) {
	h := newHarness(t, nil)
	h.services.Themes.ApplyPreset("midnight")

	msgs, err := h.services.DesignContext.SystemMessages(context.Background(), schema.UserMessage("make a dashboard"))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "- background: #0F172A")
	assert.Equal(t, schema.User, msgs[1].Role)
}

func TestDesignContextService_SystemPromptFollowsEdits(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.services.Themes.SetFonts([]string{"monospace"})
	require.NoError(t, err)

	text, err := h.services.DesignContext.SystemPrompt(context.Background())

	require.NoError(t, err)
	assert.Contains(t, text, "- primary: #6366F1")
	assert.Contains(t, text, "monospace")
}

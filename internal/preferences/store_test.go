package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	_ "time/tzdata"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boltdesk/internal/events"
	"boltdesk/internal/models"
	"boltdesk/internal/tests/mocks"
)

type fixture struct {
	store   *Store
	docs    *mocks.DocumentRepositoryMock
	secrets *mocks.DocumentRepositoryMock
	bus     *events.Bus
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	docs := mocks.NewDocumentRepositoryMock(nil)
	secrets := mocks.NewDocumentRepositoryMock(nil)
	bus := events.NewBus(logger)
	store, err := NewStore(Options{
		Documents: docs,
		Secrets:   secrets,
		Bus:       bus,
		Log:       logger,
		Timezone:  func() string { return "Europe/Paris" },
	})
	require.NoError(t, err)
	return fixture{store: store, docs: docs, secrets: secrets, bus: bus}
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestNewStore_RequiresRepositories(t *testing.T) {
	_, err := NewStore(Options{Secrets: mocks.NewDocumentRepositoryMock(nil)})
	assert.Error(t, err)
	_, err = NewStore(Options{Documents: mocks.NewDocumentRepositoryMock(nil)})
	assert.Error(t, err)
}

func TestReadDocument_DefaultOnAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, models.UserProfile{Notifications: true, Language: "en", Timezone: "Europe/Paris"}, f.store.Profile(ctx))
	assert.Equal(t, "minimal", f.store.WebsiteTheme(ctx))
	assert.Equal(t, models.DefaultDesignScheme(), f.store.DesignScheme(ctx))
	assert.Empty(t, f.store.APIKeys(ctx))
	assert.JSONEq(t, `{}`, string(f.store.ReadDocument(ctx, "unknown-key")))
}

func TestReadDocument_UnparseableTreatedAsAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.docs.Seed(KeyUserProfile, "{not json")
	f.docs.Seed(KeyDesignScheme, `{"palette":{"primary":"#fff"}}`)
	f.secrets.Seed(KeyAPIKeys, `["openai"]`)

	assert.Equal(t, DefaultProfile("Europe/Paris"), f.store.Profile(ctx))
	assert.Equal(t, models.DefaultDesignScheme(), f.store.DesignScheme(ctx))
	assert.Empty(t, f.store.APIKeys(ctx))
}

func TestReadDocument_StorageFailureFallsBackToDefault(t *testing.T) {
	f := newFixture(t)
	f.docs.GetFunc = func(context.Context, string) (string, bool, error) {
		return "", false, errors.New("disk unavailable")
	}

	assert.Equal(t, "minimal", f.store.WebsiteTheme(context.Background()))
}

func TestWriteDocument_MergePreservesSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.docs.Seed(KeyUserProfile, `{"language":"fr","timezone":"UTC"}`)

	merged, err := f.store.WriteDocument(ctx, KeyUserProfile, map[string]any{"notifications": false})
	require.NoError(t, err)

	assert.JSONEq(t, `{"notifications":false,"language":"fr","timezone":"UTC"}`, string(merged))
	stored, _ := f.docs.Raw(KeyUserProfile)
	assert.JSONEq(t, `{"notifications":false,"language":"fr","timezone":"UTC"}`, stored)
}

func TestWriteDocument_KeepsUnknownMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.docs.Seed(KeyUserProfile, `{"avatar":"cat.png","language":"de"}`)

	_, err := f.store.UpdateProfile(ctx, models.UserProfilePatch{Language: ptr("ja")})
	require.NoError(t, err)

	stored, _ := f.docs.Raw(KeyUserProfile)
	assert.JSONEq(t, `{"avatar":"cat.png","language":"ja"}`, stored)
}

func TestWriteDocument_DisjointWritesAccumulate(t *testing.T) {
	properties := gopter.NewProperties(nil)
	keyGen := gen.Identifier()

	properties.Property("write(A); write(B) keeps A, B and prior fields", prop.ForAll(
		func(prior, a, b map[string]string) bool {
			f := newFixture(t)
			ctx := context.Background()

			// Make the three field sets disjoint.
			for k := range a {
				delete(prior, k)
			}
			for k := range b {
				delete(prior, k)
				delete(a, k)
			}
			seed, _ := json.Marshal(prior)
			f.docs.Seed("doc", string(seed))

			if _, err := f.store.WriteDocument(ctx, "doc", toFields(a)); err != nil {
				return false
			}
			if _, err := f.store.WriteDocument(ctx, "doc", toFields(b)); err != nil {
				return false
			}

			var got map[string]string
			if err := json.Unmarshal(f.store.ReadDocument(ctx, "doc"), &got); err != nil {
				return false
			}
			for _, set := range []map[string]string{prior, a, b} {
				for k, v := range set {
					if got[k] != v {
						return false
					}
				}
			}
			return len(got) == len(prior)+len(a)+len(b)
		},
		gen.MapOf(keyGen, gen.AlphaString()),
		gen.MapOf(keyGen, gen.AlphaString()),
		gen.MapOf(keyGen, gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestWriteDocument_PublishesAfterWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var got []events.StorageEvent
	f.bus.Subscribe(func(evt events.StorageEvent) {
		// The document is already stored when listeners run.
		stored, ok := f.docs.Raw(evt.Key)
		assert.True(t, ok)
		assert.Equal(t, evt.NewValue, stored)
		got = append(got, evt)
	})

	_, err := f.store.WriteDocument(ctx, KeyUserProfile, map[string]any{"language": "ko"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, KeyUserProfile, got[0].Key)
	assert.JSONEq(t, `{"language":"ko"}`, got[0].NewValue)
	assert.NotEmpty(t, got[0].ID)
}

func TestWriteDocument_StorageFailureIsReportedNotThrown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.docs.Seed(KeyUserProfile, `{"language":"fr"}`)
	f.docs.PutFunc = func(context.Context, string, string) error {
		return errors.New("quota exceeded")
	}
	published := 0
	f.bus.Subscribe(func(events.StorageEvent) { published++ })

	profile, err := f.store.UpdateProfile(ctx, models.UserProfilePatch{Notifications: ptr(false)})

	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.False(t, profile.Notifications, "optimistic value reflects the attempted change")
	assert.Equal(t, "fr", profile.Language)
	assert.Zero(t, published, "failed writes are not broadcast")
}

func TestWriteDocument_ReadFailureDoesNotOverwrite(t *testing.T) {
	f := newFixture(t)
	f.docs.GetFunc = func(context.Context, string) (string, bool, error) {
		return "", false, errors.New("locked")
	}

	_, err := f.store.WriteDocument(context.Background(), KeyUserProfile, map[string]any{"language": "it"})

	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Zero(t, f.docs.Puts())
}

func TestWriteDocument_ConcurrentSameKeyWritesAllLand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, field := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(1)
		go func(field string) {
			defer wg.Done()
			_, err := f.store.WriteDocument(ctx, "doc", map[string]any{field: true})
			assert.NoError(t, err)
		}(field)
	}
	wg.Wait()

	assert.Len(t, decode(t, f.store.ReadDocument(ctx, "doc")), 8)
}

func TestAPIKeys_AbsentVersusEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.MergeAPIKeys(ctx, models.APIKeys{})
	require.NoError(t, err)
	_, ok := f.store.APIKeys(ctx).Lookup("providerX")
	assert.False(t, ok)

	_, err = f.store.MergeAPIKeys(ctx, models.APIKeys{"providerX": ""})
	require.NoError(t, err)
	v, ok := f.store.APIKeys(ctx).Lookup("providerX")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestAPIKeys_StoredInSecretsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.MergeAPIKeys(ctx, models.APIKeys{"openai": "sk-test"})
	require.NoError(t, err)

	_, inDocs := f.docs.Raw(KeyAPIKeys)
	assert.False(t, inDocs)
	stored, ok := f.secrets.Raw(KeyAPIKeys)
	require.True(t, ok)
	assert.JSONEq(t, `{"openai":"sk-test"}`, stored)
}

func TestAPIKeys_MergeKeepsOtherProviders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.secrets.Seed(KeyAPIKeys, `{"anthropic":"sk-ant"}`)

	keys, err := f.store.MergeAPIKeys(ctx, models.APIKeys{"openai": "sk-oai"})
	require.NoError(t, err)

	assert.Equal(t, models.APIKeys{"anthropic": "sk-ant", "openai": "sk-oai"}, keys)
}

func TestAPIKeys_ReplaceDropsProviders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.secrets.Seed(KeyAPIKeys, `{"anthropic":"sk-ant","openai":"sk-oai"}`)

	_, err := f.store.ReplaceAPIKeys(ctx, models.APIKeys{"openai": "sk-oai"})
	require.NoError(t, err)

	_, ok := f.store.APIKeys(ctx).Lookup("anthropic")
	assert.False(t, ok)
}

func TestAPIKeys_IdentityStableForUnchangedDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.secrets.Seed(KeyAPIKeys, `{"openai":"sk-1"}`)

	first := f.store.APIKeys(ctx)
	second := f.store.APIKeys(ctx)
	first["marker"] = "marker"
	assert.Equal(t, "marker", second["marker"], "same serialized document yields the same map")
	delete(first, "marker")

	f.secrets.Seed(KeyAPIKeys, `{"openai":"sk-2"}`)
	third := f.store.APIKeys(ctx)
	assert.Equal(t, "sk-2", third["openai"])
	_, shared := third["marker"]
	assert.False(t, shared)
}

func TestDesignScheme_SaveValidatesBeforeWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scheme := models.DefaultDesignScheme()
	delete(scheme.Palette, "warning")

	err := f.store.SaveDesignScheme(ctx, scheme)

	require.ErrorIs(t, err, models.ErrInvalidPalette)
	assert.Zero(t, f.docs.Puts())
}

func TestDesignScheme_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scheme := models.DefaultDesignScheme()
	scheme.Palette["accent"] = "#123456"
	scheme.Features = []string{"frosted-glass"}
	scheme.Font = []string{"monospace", "sans-serif"}

	require.NoError(t, f.store.SaveDesignScheme(ctx, scheme))

	assert.Equal(t, scheme, f.store.DesignScheme(ctx))
}

func TestWebsiteTheme_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SaveWebsiteTheme(ctx, "glacier"))

	assert.Equal(t, "glacier", f.store.WebsiteTheme(ctx))
	stored, _ := f.docs.Raw(KeyWebsiteTheme)
	assert.Equal(t, `"glacier"`, stored)
}

func TestProfile_FillsMissingFieldsFromDefault(t *testing.T) {
	f := newFixture(t)
	f.docs.Seed(KeyUserProfile, `{"notifications":false}`)

	assert.Equal(t, models.UserProfile{Notifications: false, Language: "en", Timezone: "Europe/Paris"},
		f.store.Profile(context.Background()))
}

func TestAPIKeyMemo_DoesNotCacheMalformedInput(t *testing.T) {
	memo := NewAPIKeyMemo()

	_, err := memo.Parse("{")
	assert.Error(t, err)
	assert.Zero(t, memo.Len())

	keys, err := memo.Parse("null")
	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Equal(t, 1, memo.Len())
}

func TestSystemTimezone_UsesTZ(t *testing.T) {
	t.Setenv("TZ", "Asia/Tokyo")
	assert.Equal(t, "Asia/Tokyo", SystemTimezone())
}

func TestDeleteMembers_KeepsOtherMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.docs.Seed("doc", `{"a":1,"b":2,"c":3}`)
	var published []events.StorageEvent
	f.bus.Subscribe(func(e events.StorageEvent) { published = append(published, e) })

	merged, err := f.store.DeleteMembers(ctx, "doc", "b", "missing")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "c": float64(3)}, decode(t, merged))
	require.Len(t, published, 1)
	assert.Equal(t, "doc", published[0].Key)
}

func TestDeleteAPIKeys_ConcurrentWithMergesLosesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.secrets.Seed(KeyAPIKeys, `{"anthropic":"sk-ant"}`)
	providers := []string{"openai", "google", "deepseek", "mistral", "openrouter", "groq", "xai", "cohere"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.store.DeleteAPIKeys(ctx, "anthropic")
		assert.NoError(t, err)
	}()
	for _, p := range providers {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, err := f.store.MergeAPIKeys(ctx, models.APIKeys{p: "key-" + p})
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	keys := f.store.APIKeys(ctx)
	assert.Len(t, keys, len(providers))
	_, ok := keys.Lookup("anthropic")
	assert.False(t, ok)
	for _, p := range providers {
		assert.Equal(t, "key-"+p, keys[p], p)
	}
}

func TestPatchDesignScheme_KeepsMembersWrittenElsewhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stored := models.DefaultDesignScheme()
	stored.Features = []string{"frosted-glass"}
	stored.Font = []string{"monospace"}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	f.docs.Seed(KeyDesignScheme, string(raw))

	palette := models.DefaultDesignScheme().Palette
	palette["primary"] = "#123456"
	got, err := f.store.PatchDesignScheme(ctx, models.DesignSchemePatch{Palette: palette})

	require.NoError(t, err)
	assert.Equal(t, []string{"frosted-glass"}, got.Features)
	assert.Equal(t, []string{"monospace"}, got.Font)
	assert.Equal(t, got, f.store.DesignScheme(ctx))
	assert.Equal(t, "#123456", got.Palette["primary"])
}

func TestPatchDesignScheme_RejectsInvalidResultWithoutWriting(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.PatchDesignScheme(context.Background(), models.DesignSchemePatch{Features: []string{"sparkles"}})

	require.ErrorIs(t, err, models.ErrInvalidDesignScheme)
	assert.Zero(t, f.docs.Puts())
}

func TestPatchDesignScheme_RewritesUnusableStoredScheme(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.docs.Seed(KeyDesignScheme, `{"palette":{"primary":"#fff"},"features":["sparkles"]}`)

	got, err := f.store.PatchDesignScheme(ctx, models.DesignSchemePatch{Font: []string{"serif"}})

	require.NoError(t, err)
	want := models.DefaultDesignScheme()
	want.Font = []string{"serif"}
	assert.Equal(t, want, got)
	assert.Equal(t, want, f.store.DesignScheme(ctx))
}

func TestUpdateProfile_MalformedSiblingDoesNotHideChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.docs.Seed(KeyUserProfile, `{"notifications":"yes","language":"fr","timezone":"UTC"}`)

	profile, err := f.store.UpdateProfile(ctx, models.UserProfilePatch{Timezone: ptr("Asia/Tokyo")})

	require.NoError(t, err)
	assert.Equal(t, models.UserProfile{Notifications: true, Language: "fr", Timezone: "Asia/Tokyo"}, profile)
	assert.Equal(t, profile, f.store.Profile(ctx))
}

func TestUITheme_DefaultAndRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.Equal(t, models.UIThemeSystem, f.store.UITheme(ctx))

	require.NoError(t, f.store.SaveUITheme(ctx, models.UIThemeDark))
	assert.Equal(t, models.UIThemeDark, f.store.UITheme(ctx))
	stored, _ := f.docs.Raw(KeyUITheme)
	assert.Equal(t, `"dark"`, stored)

	assert.ErrorIs(t, f.store.SaveUITheme(ctx, "sepia"), models.ErrInvalidUITheme)
	assert.Equal(t, 1, f.docs.Puts())

	f.docs.Seed(KeyUITheme, `"sepia"`)
	assert.Equal(t, models.UIThemeSystem, f.store.UITheme(ctx))
}

func TestAPIKeyMemo_KeepsOnlyLatestDocument(t *testing.T) {
	memo := NewAPIKeyMemo()

	first, err := memo.Parse(`{"openai":"sk-old"}`)
	require.NoError(t, err)
	_, err = memo.Parse(`{"openai":"sk-new"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, memo.Len())

	again, err := memo.Parse(`{"openai":"sk-old"}`)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	again["marker"] = "x"
	_, shared := first["marker"]
	assert.False(t, shared, "a superseded document is parsed afresh")
}

func toFields(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

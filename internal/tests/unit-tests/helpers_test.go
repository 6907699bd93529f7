package unit_tests

import (
	"context"
	"sync"
	"testing"
	_ "time/tzdata"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"boltdesk/internal/events"
	"boltdesk/internal/preferences"
	"boltdesk/internal/services"
	"boltdesk/internal/tests/mocks"
	"boltdesk/internal/themes"
)

type recordedEvent struct {
	Name    string
	Payload any
}

// recorder captures what would be sent to the webview.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) emit(_ context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Name: name, Payload: payload})
}

func (r *recorder) notices() []events.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Notice
	for _, e := range r.events {
		if n, ok := e.Payload.(events.Notice); ok && e.Name == events.NoticeEventName {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) storageKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if evt, ok := e.Payload.(events.StorageEvent); ok && e.Name == events.StorageEventName {
			out = append(out, evt.Key)
		}
	}
	return out
}

type envStub map[string]bool

func (e envStub) IsEnvProvided(_ context.Context, provider string) bool {
	return e[provider]
}

type harness struct {
	store    *preferences.Store
	docs     *mocks.DocumentRepositoryMock
	secrets  *mocks.DocumentRepositoryMock
	emitter  *events.Emitter
	recorder *recorder
	services *services.Services
}

func newHarness(t *testing.T, env envStub) harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	docs := mocks.NewDocumentRepositoryMock(nil)
	secrets := mocks.NewDocumentRepositoryMock(nil)

	store, err := preferences.NewStore(preferences.Options{
		Documents: docs,
		Secrets:   secrets,
		Log:       logger,
		Timezone:  func() string { return "UTC" },
	})
	require.NoError(t, err)

	rec := &recorder{}
	emitter := events.NewEmitter(logger)
	emitter.SetCustom(rec.emit)

	svc, err := services.NewServices(services.Deps{
		Store:    store,
		Registry: themes.NewRegistry(),
		EnvKeys:  env,
		Emitter:  emitter,
		Log:      logger,
	})
	require.NoError(t, err)

	return harness{store: store, docs: docs, secrets: secrets, emitter: emitter, recorder: rec, services: svc}
}

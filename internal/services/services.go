package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"boltdesk/internal/assets"
	"boltdesk/internal/events"
	"boltdesk/internal/preferences"
	"boltdesk/internal/themes"
)

// Deps are the collaborators shared by every settings service.
type Deps struct {
	Store    *preferences.Store
	Registry *themes.Registry
	EnvKeys  EnvKeyStatus
	Emitter  *events.Emitter
	Log      logrus.FieldLogger
	// Catalog defaults to the embedded models.json.
	Catalog ModelCatalogService
}

// Services aggregates the settings services bound to the frontend.
type Services struct {
	Profile       ProfileService
	Themes        ThemeService
	APIKeys       *APIKeyService
	Catalog       ModelCatalogService
	DesignContext *DesignContextService
}

// NewServices constructs the service container around one preference store.
func NewServices(deps Deps) (*Services, error) {
	if deps.Store == nil {
		return nil, errors.New("preference store is required")
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Registry == nil {
		deps.Registry = themes.NewRegistry()
	}
	if deps.Emitter == nil {
		deps.Emitter = events.NewEmitter(deps.Log)
	}
	if deps.Catalog == nil {
		catalog, err := NewModelCatalogService(assets.ModelsData)
		if err != nil {
			return nil, err
		}
		deps.Catalog = catalog
	}

	designContext, err := NewDesignContextService(deps.Store)
	if err != nil {
		return nil, err
	}

	return &Services{
		Profile:       NewProfileService(deps.Store, deps.Emitter, deps.Log.WithField("service", "profile")),
		Themes:        NewThemeService(deps.Store, deps.Registry, deps.Emitter, deps.Log.WithField("service", "themes")),
		APIKeys:       NewAPIKeyService(deps.Store, deps.Catalog, deps.EnvKeys, deps.Emitter, deps.Log.WithField("service", "api-keys")),
		Catalog:       deps.Catalog,
		DesignContext: designContext,
	}, nil
}

// Startup hands the application context to every service that keeps one.
func (s *Services) Startup(ctx context.Context) {
	s.Profile.Startup(ctx)
	s.Themes.Startup(ctx)
	s.APIKeys.Startup(ctx)
}

// Shutdown drops the services' bus subscriptions.
func (s *Services) Shutdown() {
	s.Profile.Shutdown()
	s.Themes.Shutdown()
}

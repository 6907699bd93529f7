// Package api serves the local endpoints the webview calls for settings data.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"boltdesk/internal/models"
)

// EnvKeyChecker reports whether a provider's key is present in this
// process's environment.
type EnvKeyChecker interface {
	IsSet(provider string) bool
}

// DesignSource reads the current design preferences.
type DesignSource interface {
	DesignScheme(ctx context.Context) models.DesignScheme
	WebsiteTheme(ctx context.Context) string
}

// ThemeCatalog lists the built-in presets.
type ThemeCatalog interface {
	List() []models.ThemePreset
}

// DesignPrompter renders the design scheme for the generation pipeline.
type DesignPrompter interface {
	SystemPrompt(ctx context.Context) (string, error)
}

type Deps struct {
	EnvKeys EnvKeyChecker
	Design  DesignSource
	Themes  ThemeCatalog
	// DesignContext is optional; without it /api/design-context is not routed.
	DesignContext DesignPrompter
	Log           logrus.FieldLogger
}

// Server routes the settings endpoints.
type Server struct {
	router  *mux.Router
	envKeys EnvKeyChecker
	design  DesignSource
	themes  ThemeCatalog
	prompts DesignPrompter
	log     logrus.FieldLogger
}

func NewServer(deps Deps) (*Server, error) {
	if deps.EnvKeys == nil || deps.Design == nil || deps.Themes == nil {
		return nil, errors.New("api: env keys, design source and theme catalog are required")
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	s := &Server{
		router:  mux.NewRouter(),
		envKeys: deps.EnvKeys,
		design:  deps.Design,
		themes:  deps.Themes,
		prompts: deps.DesignContext,
		log:     deps.Log,
	}
	s.setupRouter()
	return s, nil
}

// Handler returns the router, ready to be mounted as the asset server's
// fallback handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	s.router.Use(recoveryMiddleware(s.log))
	s.router.Use(loggingMiddleware(s.log))

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/check-env-key", s.handleCheckEnvKey).Methods(http.MethodGet)
	api.HandleFunc("/design-scheme", s.handleDesignScheme).Methods(http.MethodGet)
	api.HandleFunc("/themes", s.handleThemes).Methods(http.MethodGet)
	if s.prompts != nil {
		api.HandleFunc("/design-context", s.handleDesignContext).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethod, "Method not allowed")
	})
}

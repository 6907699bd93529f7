package api

import (
	"net/http"
	"strings"

	"boltdesk/internal/models"
)

type checkEnvKeyResponse struct {
	IsSet bool `json:"isSet"`
}

type designSchemeResponse struct {
	ThemeID string              `json:"themeId"`
	Scheme  models.DesignScheme `json:"scheme"`
}

type designContextResponse struct {
	System string `json:"system"`
}

// handleCheckEnvKey handles GET /api/check-env-key?provider=. An empty or
// unknown provider is simply not set.
func (s *Server) handleCheckEnvKey(w http.ResponseWriter, r *http.Request) {
	provider := strings.TrimSpace(r.URL.Query().Get("provider"))
	if provider == "" {
		respondJSON(w, http.StatusOK, checkEnvKeyResponse{IsSet: false})
		return
	}
	respondJSON(w, http.StatusOK, checkEnvKeyResponse{IsSet: s.envKeys.IsSet(provider)})
}

// handleDesignScheme handles GET /api/design-scheme.
func (s *Server) handleDesignScheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, designSchemeResponse{
		ThemeID: s.design.WebsiteTheme(ctx),
		Scheme:  s.design.DesignScheme(ctx),
	})
}

// handleThemes handles GET /api/themes.
func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.themes.List())
}

// handleDesignContext handles GET /api/design-context.
func (s *Server) handleDesignContext(w http.ResponseWriter, r *http.Request) {
	text, err := s.prompts.SystemPrompt(r.Context())
	if err != nil {
		s.log.WithError(err).Error("rendering design context failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to render design context")
		return
	}
	respondJSON(w, http.StatusOK, designContextResponse{System: text})
}

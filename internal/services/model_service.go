package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"boltdesk/internal/models"
)

// ModelCatalogService exposes the built-in provider and model catalog. The
// provider names it lists are the keys used by the API key store and the
// environment probe.
type ModelCatalogService interface {
	ListProviders() []models.ProviderInfo
	ListModelGroups() []models.LLMModelGroup
	Provider(name string) (models.ProviderInfo, bool)
	ProviderNames() []string
	EnvKeys(provider string) []string
	GetModel(modelKey string) (*models.LLMModel, error)
}

type modelCatalogService struct {
	providerOrder []string
	providers     map[string]models.ProviderInfo
	models        map[string]*catalogModel
}

type catalogModel struct {
	Key         string
	ProviderID  string
	Provider    string
	DisplayName string
	APIName     string
	MaxTokens   int
}

type rawModelFile struct {
	Providers []rawProvider `json:"providers"`
}

type rawProvider struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"displayName"`
	EnvKeys      []string   `json:"envKeys"`
	GetAPIKeyURL string     `json:"getApiKeyUrl"`
	Models       []rawModel `json:"models"`
}

type rawModel struct {
	DisplayName string `json:"displayName"`
	APIName     string `json:"apiName"`
	MaxTokens   int    `json:"maxTokens,omitempty"`
}

// NewModelCatalogService parses a catalog in the models.json layout.
func NewModelCatalogService(data []byte) (ModelCatalogService, error) {
	var parsed rawModelFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse models asset: %w", err)
	}

	s := &modelCatalogService{
		providers: make(map[string]models.ProviderInfo),
		models:    make(map[string]*catalogModel),
	}
	for _, provider := range parsed.Providers {
		providerID := strings.TrimSpace(provider.ID)
		if providerID == "" {
			continue
		}
		if _, dup := s.providers[providerID]; dup {
			return nil, fmt.Errorf("duplicate provider %s in models asset", providerID)
		}
		providerName := strings.TrimSpace(provider.DisplayName)
		if providerName == "" {
			providerName = providerID
		}
		s.providers[providerID] = models.ProviderInfo{
			Name:         providerID,
			DisplayName:  providerName,
			EnvKeys:      trimAll(provider.EnvKeys),
			GetAPIKeyURL: strings.TrimSpace(provider.GetAPIKeyURL),
		}
		s.providerOrder = append(s.providerOrder, providerID)
		for _, mdl := range provider.Models {
			key := computeModelKey(providerID, mdl)
			s.models[key] = &catalogModel{
				Key:         key,
				ProviderID:  providerID,
				Provider:    providerName,
				DisplayName: strings.TrimSpace(mdl.DisplayName),
				APIName:     strings.TrimSpace(mdl.APIName),
				MaxTokens:   mdl.MaxTokens,
			}
		}
	}
	return s, nil
}

func (s *modelCatalogService) ListProviders() []models.ProviderInfo {
	out := make([]models.ProviderInfo, 0, len(s.providerOrder))
	for _, id := range s.providerOrder {
		out = append(out, cloneProvider(s.providers[id]))
	}
	return out
}

func (s *modelCatalogService) ListModelGroups() []models.LLMModelGroup {
	groups := make([]models.LLMModelGroup, 0, len(s.providerOrder))
	for _, providerID := range s.providerOrder {
		group := models.LLMModelGroup{
			ProviderID:   providerID,
			ProviderName: s.providers[providerID].DisplayName,
		}
		var modelsForProvider []models.LLMModel
		for _, mdl := range s.models {
			if mdl.ProviderID != providerID {
				continue
			}
			modelsForProvider = append(modelsForProvider, toLLMModel(mdl))
		}
		sort.SliceStable(modelsForProvider, func(i, j int) bool {
			return strings.ToLower(modelsForProvider[i].DisplayName) < strings.ToLower(modelsForProvider[j].DisplayName)
		})
		group.Models = modelsForProvider
		groups = append(groups, group)
	}
	return groups
}

func (s *modelCatalogService) Provider(name string) (models.ProviderInfo, bool) {
	p, ok := s.providers[strings.TrimSpace(name)]
	if !ok {
		return models.ProviderInfo{}, false
	}
	return cloneProvider(p), true
}

func (s *modelCatalogService) ProviderNames() []string {
	return append([]string(nil), s.providerOrder...)
}

// EnvKeys returns the environment variables that may carry provider's key.
func (s *modelCatalogService) EnvKeys(provider string) []string {
	p, ok := s.providers[strings.TrimSpace(provider)]
	if !ok {
		return nil
	}
	return append([]string(nil), p.EnvKeys...)
}

func (s *modelCatalogService) GetModel(modelKey string) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}
	catalog, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("model %s not found", modelKey)
	}
	model := toLLMModel(catalog)
	return &model, nil
}

func toLLMModel(mdl *catalogModel) models.LLMModel {
	return models.LLMModel{
		Key:          mdl.Key,
		DisplayName:  mdl.DisplayName,
		APIName:      mdl.APIName,
		ProviderID:   mdl.ProviderID,
		ProviderName: mdl.Provider,
		MaxTokens:    mdl.MaxTokens,
	}
}

func computeModelKey(providerID string, mdl rawModel) string {
	return strings.TrimSpace(providerID) + "|" + strings.TrimSpace(mdl.APIName)
}

func cloneProvider(p models.ProviderInfo) models.ProviderInfo {
	p.EnvKeys = append([]string(nil), p.EnvKeys...)
	return p
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

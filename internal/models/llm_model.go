package models

// LLMModel represents a single model option exposed to the model picker.
type LLMModel struct {
	Key          string `json:"key"`
	DisplayName  string `json:"displayName"`
	APIName      string `json:"apiName"`
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	MaxTokens    int    `json:"maxTokens,omitempty"`
}

// LLMModelGroup groups models by their provider for presentation.
type LLMModelGroup struct {
	ProviderID   string     `json:"providerId"`
	ProviderName string     `json:"providerName"`
	Models       []LLMModel `json:"models"`
}

// ProviderInfo describes a model vendor. Name is the stable key used by the
// API key store and the environment probe.
type ProviderInfo struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"displayName"`
	EnvKeys      []string `json:"envKeys,omitempty"`
	GetAPIKeyURL string   `json:"getApiKeyUrl,omitempty"`
}

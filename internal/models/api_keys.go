package models

// APIKeys maps provider name to secret. An absent provider means "not
// configured"; an empty string means the key was explicitly cleared.
//
// Maps handed out by the preference store may be shared between readers,
// so treat them as read-only and Clone before editing.
type APIKeys map[string]string

// Lookup reports the stored key and whether the provider has an entry at all.
func (k APIKeys) Lookup(provider string) (string, bool) {
	if k == nil {
		return "", false
	}
	v, ok := k[provider]
	return v, ok
}

func (k APIKeys) Clone() APIKeys {
	out := make(APIKeys, len(k))
	for p, v := range k {
		out[p] = v
	}
	return out
}

// KeySource says where a provider's credential comes from.
type KeySource string

const (
	KeySourceStored      KeySource = "stored"
	KeySourceEnvironment KeySource = "environment"
	KeySourceNone        KeySource = "none"
)

// APIKeyStatus is what the key manager shows next to a provider.
type APIKeyStatus struct {
	Provider     string    `json:"provider"`
	Label        string    `json:"label"`
	Source       KeySource `json:"source"`
	Configured   bool      `json:"configured"`
	Cleared      bool      `json:"cleared"`
	GetAPIKeyURL string    `json:"getApiKeyUrl,omitempty"`
}

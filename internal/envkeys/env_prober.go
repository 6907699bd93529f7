package envkeys

import (
	"context"

	"boltdesk/internal/utils"
)

// EnvLookup maps a provider name to the environment variables that may hold
// its key.
type EnvLookup func(provider string) []string

// EnvProber answers probes from this process's environment.
type EnvProber struct {
	names EnvLookup
}

func NewEnvProber(names EnvLookup) *EnvProber {
	return &EnvProber{names: names}
}

func (p *EnvProber) Probe(_ context.Context, provider string) (bool, error) {
	return p.IsSet(provider), nil
}

// IsSet reports whether any of provider's variables holds a non-blank value.
func (p *EnvProber) IsSet(provider string) bool {
	if p.names == nil {
		return false
	}
	names := p.names(provider)
	if len(names) == 0 {
		return false
	}
	_, ok := utils.LookupFirstEnv(names...)
	return ok
}

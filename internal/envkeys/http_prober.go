package envkeys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CheckEnvKeyPath is the collaborator endpoint answering env-key probes.
const CheckEnvKeyPath = "/api/check-env-key"

// CheckEnvKeyResponse is the probe payload.
type CheckEnvKeyResponse struct {
	IsSet bool `json:"isSet"`
}

// HTTPProber asks a remote collaborator over HTTP.
type HTTPProber struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProber builds a prober for baseURL. A zero timeout leaves the
// client's own behaviour in place.
func NewHTTPProber(baseURL string, timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, provider string) (bool, error) {
	endpoint := p.baseURL + CheckEnvKeyPath + "?provider=" + url.QueryEscape(provider)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("probe %s: unexpected status %d", provider, resp.StatusCode)
	}

	var payload struct {
		IsSet *bool `json:"isSet"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode probe response: %w", err)
	}
	if payload.IsSet == nil {
		return false, errors.New("probe response has no boolean isSet")
	}
	return *payload.IsSet, nil
}

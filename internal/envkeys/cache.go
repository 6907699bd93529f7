package envkeys

import (
	"context"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Prober asks whether a provider's credential is supplied by the hosting
// environment.
type Prober interface {
	Probe(ctx context.Context, provider string) (bool, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, provider string) (bool, error)

func (f ProberFunc) Probe(ctx context.Context, provider string) (bool, error) {
	return f(ctx, provider)
}

// StatusCache remembers probe answers for the life of the process.
// Environment credentials cannot change while the app runs, so answers are
// never invalidated. Failed probes are not remembered.
type StatusCache struct {
	prober Prober
	log    logrus.FieldLogger
	known  *cache.Cache
	group  singleflight.Group
}

func NewStatusCache(prober Prober, log logrus.FieldLogger) *StatusCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StatusCache{
		prober: prober,
		log:    log,
		known:  cache.New(cache.NoExpiration, 0),
	}
}

// IsEnvProvided reports whether provider's key comes from the environment.
// Probe failures read as false and are retried on the next call.
func (c *StatusCache) IsEnvProvided(ctx context.Context, provider string) bool {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return false
	}
	if v, ok := c.known.Get(provider); ok {
		return v.(bool)
	}

	v, err, _ := c.group.Do(provider, func() (any, error) {
		if v, ok := c.known.Get(provider); ok {
			return v.(bool), nil
		}
		isSet, err := c.prober.Probe(ctx, provider)
		if err != nil {
			return false, err
		}
		c.known.Set(provider, isSet, cache.NoExpiration)
		return isSet, nil
	})
	if err != nil {
		c.log.WithError(err).WithField("provider", provider).Debug("env key probe failed")
		return false
	}
	return v.(bool)
}

// Cached reports the remembered answer for provider without probing.
func (c *StatusCache) Cached(provider string) (isSet bool, known bool) {
	v, ok := c.known.Get(provider)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

// KeyringOptions selects and configures the OS keyring.
type KeyringOptions struct {
	Service string
	// Backend restricts the keyring to one backend type, e.g. "file" or
	// "secret-service". Empty lets the library pick.
	Backend string
	FileDir string
	// FilePassword unlocks the encrypted file backend.
	FilePassword string
}

// OpenKeyring opens the keyring that holds provider API keys.
func OpenKeyring(opts KeyringOptions) (keyring.Keyring, error) {
	if opts.Service == "" {
		return nil, errors.New("keyring service is required")
	}
	cfg := keyring.Config{
		ServiceName:              opts.Service,
		KeychainTrustApplication: true,
		FileDir:                  opts.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(opts.FilePassword),
	}
	if cfg.FileDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.FileDir = filepath.Join(dir, opts.Service, "keyring")
		}
	}
	if opts.Backend != "" {
		cfg.AllowedBackends = []keyring.BackendType{keyring.BackendType(opts.Backend)}
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

// secretRepository keeps whole documents as keyring items. It stands in for
// cookie storage: one item per document key, the value is the serialized
// document.
type secretRepository struct {
	ring    keyring.Keyring
	service string
}

func NewSecretRepository(ring keyring.Keyring, service string) DocumentRepository {
	return &secretRepository{ring: ring, service: service}
}

func (r *secretRepository) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("document key is required")
	}
	item, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(item.Data), true, nil
}

func (r *secretRepository) Put(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("document key is required")
	}
	return r.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       r.service + " " + key,
		Description: "Preference document stored by " + r.service,
	})
}

func (r *secretRepository) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("document key is required")
	}
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

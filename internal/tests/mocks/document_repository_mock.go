package mocks

import (
	"context"
	"sync"
)

// DocumentRepositoryMock is an in-memory document repository whose methods
// can be overridden per test.
type DocumentRepositoryMock struct {
	GetFunc    func(ctx context.Context, key string) (string, bool, error)
	PutFunc    func(ctx context.Context, key, value string) error
	DeleteFunc func(ctx context.Context, key string) error

	mu   sync.Mutex
	data map[string]string
	puts int
	gets int
}

func NewDocumentRepositoryMock(seed map[string]string) *DocumentRepositoryMock {
	data := make(map[string]string, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &DocumentRepositoryMock{data: data}
}

func (m *DocumentRepositoryMock) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	m.gets++
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *DocumentRepositoryMock) Put(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.puts++
	m.mu.Unlock()
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}

func (m *DocumentRepositoryMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Raw returns what is stored under key, bypassing the overrides.
func (m *DocumentRepositoryMock) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Seed stores value directly, as another process would.
func (m *DocumentRepositoryMock) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
}

func (m *DocumentRepositoryMock) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

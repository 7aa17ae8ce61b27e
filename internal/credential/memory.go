package credential

import (
	"fmt"
	"sync"
)

// Memory is an in-process Vault, used in tests and when no keyring backend
// is available.
type Memory struct {
	mu    sync.Mutex
	items map[string]string
}

var _ Vault = (*Memory)(nil)

// NewMemory returns an empty in-process vault.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

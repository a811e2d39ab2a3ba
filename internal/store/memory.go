package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend keeps records in process memory. It backs tests and the
// "memory" driver.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]map[string][]byte
	failPut error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]map[string][]byte)}
}

func (backend *MemoryBackend) Get(_ context.Context, scope string, key string) ([]byte, bool, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()

	value, ok := backend.records[scope][key]
	if !ok {
		return nil, false, nil
	}
	result := make([]byte, len(value))
	copy(result, value)
	return result, true, nil
}

func (backend *MemoryBackend) Put(_ context.Context, scope string, key string, value []byte) error {
	if scope == "" {
		return ErrEmptyScope
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()

	if backend.failPut != nil {
		return backend.failPut
	}
	if backend.records[scope] == nil {
		backend.records[scope] = make(map[string][]byte)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	backend.records[scope][key] = stored
	return nil
}

// Seed writes raw bytes without encoding, for corrupt-data scenarios.
func (backend *MemoryBackend) Seed(scope string, key string, raw string) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.records[scope] == nil {
		backend.records[scope] = make(map[string][]byte)
	}
	backend.records[scope][key] = []byte(raw)
}

// FailWrites makes every following Put return err; nil restores writes.
func (backend *MemoryBackend) FailWrites(err error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.failPut = err
}

func (backend *MemoryBackend) ListScopes(context.Context) ([]string, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()

	scopes := make([]string, 0, len(backend.records))
	for scope := range backend.records {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes, nil
}

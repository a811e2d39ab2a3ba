package hydration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/terraincognita07/waterline/internal/store"
	"go.uber.org/zap"
)

const DefaultIdleTTL = 30 * time.Minute

var ErrRegistryClosed = errors.New("hydration registry is closed")

type registryEntry struct {
	manager  *Manager
	lastSeen time.Time
}

// Registry hands out one loaded Manager per installation over a shared
// backend. Managers idle for longer than IdleTTL are closed and dropped; the
// next request reloads them from the store.
type Registry struct {
	mu       sync.Mutex
	backend  store.Backend
	observer store.WriteObserver
	options  Options
	entries  map[string]*registryEntry
	closed   bool
}

func NewRegistry(backend store.Backend, observer store.WriteObserver, options Options) *Registry {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.IdleTTL <= 0 {
		options.IdleTTL = DefaultIdleTTL
	}
	return &Registry{
		backend:  backend,
		observer: observer,
		options:  options,
		entries:  make(map[string]*registryEntry),
	}
}

// Manager returns the loaded manager for installationID, creating it on
// first use.
func (registry *Registry) Manager(ctx context.Context, installationID string) (*Manager, error) {
	if installationID == "" {
		return nil, store.ErrEmptyScope
	}

	registry.mu.Lock()
	if registry.closed {
		registry.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	now := registry.options.Clock()
	evicted := registry.pruneLocked(now)
	entry, ok := registry.entries[installationID]
	if !ok {
		adapter := store.NewAdapter(registry.backend, installationID, registry.options.Logger, registry.observer)
		entry = &registryEntry{manager: NewManager(adapter, registry.options)}
		registry.entries[installationID] = entry
	}
	entry.lastSeen = now
	manager := entry.manager
	registry.mu.Unlock()

	registry.notifyEvicted(evicted)
	if err := manager.Load(ctx); err != nil {
		return nil, err
	}
	return manager, nil
}

// PruneIdle closes and drops the managers that have been idle past IdleTTL
// and returns how many were removed.
func (registry *Registry) PruneIdle() int {
	registry.mu.Lock()
	evicted := registry.pruneLocked(registry.options.Clock())
	registry.mu.Unlock()

	registry.notifyEvicted(evicted)
	return len(evicted)
}

// pruneLocked keeps managers holding unsaved changes so a failed write is
// not turned into data loss.
func (registry *Registry) pruneLocked(now time.Time) []string {
	var evicted []string
	for installationID, entry := range registry.entries {
		if now.Sub(entry.lastSeen) <= registry.options.IdleTTL || entry.manager.Unsaved() {
			continue
		}
		entry.manager.Close()
		delete(registry.entries, installationID)
		evicted = append(evicted, installationID)
	}
	return evicted
}

func (registry *Registry) notifyEvicted(installationIDs []string) {
	if registry.options.OnEvict == nil {
		return
	}
	for _, installationID := range installationIDs {
		registry.options.OnEvict(installationID)
	}
}

func (registry *Registry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.entries)
}

func (registry *Registry) Close() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.closed = true
	for _, entry := range registry.entries {
		entry.manager.Close()
	}
}

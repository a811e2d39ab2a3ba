package hydration

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/terraincognita07/waterline/internal/store"
)

func TestRegistryIsolatesInstallations(t *testing.T) {
	backend := store.NewMemoryBackend()
	registry := NewRegistry(backend, nil, Options{})
	ctx := context.Background()

	first, err := registry.Manager(ctx, "install-a")
	if err != nil {
		t.Fatalf("manager a: %v", err)
	}
	if _, _, err := first.AddIntake(ctx, 300); err != nil {
		t.Fatalf("add intake: %v", err)
	}

	second, err := registry.Manager(ctx, "install-b")
	if err != nil {
		t.Fatalf("manager b: %v", err)
	}
	if len(second.History()) != 0 {
		t.Fatal("expected second installation to start empty")
	}

	again, err := registry.Manager(ctx, "install-a")
	if err != nil {
		t.Fatalf("manager a again: %v", err)
	}
	if again != first {
		t.Fatal("expected registry to reuse the loaded manager")
	}
	if registry.Len() != 2 {
		t.Fatalf("expected 2 managers, got %d", registry.Len())
	}
}

func TestRegistryClose(t *testing.T) {
	registry := NewRegistry(store.NewMemoryBackend(), nil, Options{})
	ctx := context.Background()
	manager, err := registry.Manager(ctx, "install-a")
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	registry.Close()
	if manager.Phase() != PhaseClosed {
		t.Fatalf("expected closed manager, got %s", manager.Phase())
	}
	if _, err := registry.Manager(ctx, "install-a"); !errors.Is(err, ErrRegistryClosed) {
		t.Fatalf("expected ErrRegistryClosed, got %v", err)
	}
	if _, err := registry.Manager(ctx, ""); !errors.Is(err, store.ErrEmptyScope) {
		t.Fatalf("expected ErrEmptyScope, got %v", err)
	}
}

func TestRegistryPrunesIdleManagers(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	var evicted []string
	registry := NewRegistry(store.NewMemoryBackend(), nil, Options{
		Clock:   func() time.Time { return now },
		IdleTTL: 10 * time.Minute,
		OnEvict: func(installationID string) { evicted = append(evicted, installationID) },
	})
	ctx := context.Background()

	idle, err := registry.Manager(ctx, "install-a")
	if err != nil {
		t.Fatalf("manager a: %v", err)
	}
	if _, _, err := idle.AddIntake(ctx, 250); err != nil {
		t.Fatalf("add intake: %v", err)
	}
	now = now.Add(6 * time.Minute)
	if _, err := registry.Manager(ctx, "install-b"); err != nil {
		t.Fatalf("manager b: %v", err)
	}

	now = now.Add(5 * time.Minute)
	if removed := registry.PruneIdle(); removed != 1 {
		t.Fatalf("expected 1 eviction, got %d", removed)
	}
	if idle.Phase() != PhaseClosed {
		t.Fatalf("expected evicted manager to be closed, got %s", idle.Phase())
	}
	if registry.Len() != 1 {
		t.Fatalf("expected 1 manager left, got %d", registry.Len())
	}

	now = now.Add(time.Hour)
	if removed := registry.PruneIdle(); removed != 1 {
		t.Fatalf("expected second eviction, got %d", removed)
	}
	sort.Strings(evicted)
	if len(evicted) != 2 || evicted[0] != "install-a" || evicted[1] != "install-b" {
		t.Fatalf("unexpected evictions: %v", evicted)
	}

	reloaded, err := registry.Manager(ctx, "install-a")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded == idle || len(reloaded.History()) != 1 {
		t.Fatalf("expected a fresh manager with persisted history, got %d records", len(reloaded.History()))
	}
}

func TestRegistryKeepsManagersWithUnsavedChanges(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	backend := store.NewMemoryBackend()
	registry := NewRegistry(backend, nil, Options{
		Clock:   func() time.Time { return now },
		IdleTTL: time.Minute,
	})
	ctx := context.Background()

	manager, err := registry.Manager(ctx, "install-a")
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	backend.FailWrites(errors.New("disk full"))
	if _, _, err := manager.AddIntake(ctx, 250); err != nil {
		t.Fatalf("add intake: %v", err)
	}
	if !manager.Unsaved() {
		t.Fatal("expected failed write to leave unsaved changes")
	}

	now = now.Add(time.Hour)
	if removed := registry.PruneIdle(); removed != 0 {
		t.Fatalf("expected unsaved manager to be kept, evicted %d", removed)
	}
	if registry.Len() != 1 || manager.Phase() != PhaseReady {
		t.Fatalf("expected manager to stay ready, len=%d phase=%s", registry.Len(), manager.Phase())
	}
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/terraincognita07/waterline/internal/models"
)

func TestFileBackendRoundTrip(t *testing.T) {
	filesystem := afero.NewMemMapFs()
	backend, err := NewFileBackend(filesystem, "/data")
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	ctx := context.Background()

	if _, found, err := backend.Get(ctx, "install-1", SettingsKey); err != nil || found {
		t.Fatalf("expected missing record, found=%v err=%v", found, err)
	}

	if err := backend.Put(ctx, "install-1", SettingsKey, []byte(`{"dailyGoal":1800}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	raw, found, err := backend.Get(ctx, "install-1", SettingsKey)
	if err != nil || !found {
		t.Fatalf("expected stored record, found=%v err=%v", found, err)
	}
	if string(raw) != `{"dailyGoal":1800}` {
		t.Fatalf("unexpected content %q", raw)
	}

	exists, err := afero.Exists(filesystem, "/data/install-1/hydration-settings.json")
	if err != nil || !exists {
		t.Fatalf("expected record file on disk, exists=%v err=%v", exists, err)
	}
	if tmp, _ := afero.Exists(filesystem, "/data/install-1/hydration-settings.json.tmp"); tmp {
		t.Fatal("expected temporary file to be renamed away")
	}
}

func TestFileBackendRejectsPathTraversal(t *testing.T) {
	backend, err := NewFileBackend(afero.NewMemMapFs(), "/data")
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}

	err = backend.Put(context.Background(), "../etc", SettingsKey, []byte("{}"))
	if !errors.Is(err, ErrUnsafeName) {
		t.Fatalf("expected ErrUnsafeName, got %v", err)
	}
}

func TestFileBackendCorruptFileFallsBackToDefault(t *testing.T) {
	filesystem := afero.NewMemMapFs()
	backend, err := NewFileBackend(filesystem, "/data")
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	if err := filesystem.MkdirAll("/data/install-1", 0o755); err != nil {
		t.Fatalf("create scope dir: %v", err)
	}
	if err := afero.WriteFile(filesystem, "/data/install-1/hydration-history.json", []byte("\x00\x01garbage"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	adapter := NewAdapter(backend, "install-1", nil, nil)
	history := Load(context.Background(), adapter, HistoryKey, models.IntakeHistory{})
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %#v", history)
	}

	scopes, err := backend.ListScopes(context.Background())
	if err != nil {
		t.Fatalf("list scopes: %v", err)
	}
	if len(scopes) != 1 || scopes[0] != "install-1" {
		t.Fatalf("unexpected scopes %#v", scopes)
	}
}

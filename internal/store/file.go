package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/spf13/afero"
)

var safeNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var ErrUnsafeName = errors.New("scope or key contains unsupported characters")

// FileBackend stores each record as <root>/<scope>/<key>.json on an afero
// filesystem. Writes go through a temporary file and a rename.
type FileBackend struct {
	fs   afero.Fs
	root string
}

func NewFileBackend(filesystem afero.Fs, root string) (*FileBackend, error) {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	if err := filesystem.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{fs: filesystem, root: root}, nil
}

func (backend *FileBackend) Get(_ context.Context, scope string, key string) ([]byte, bool, error) {
	path, err := backend.recordPath(scope, key)
	if err != nil {
		return nil, false, err
	}

	content, err := afero.ReadFile(backend.fs, path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return content, true, nil
}

func (backend *FileBackend) Put(_ context.Context, scope string, key string, value []byte) error {
	if scope == "" {
		return ErrEmptyScope
	}
	path, err := backend.recordPath(scope, key)
	if err != nil {
		return err
	}
	if err := backend.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create scope directory: %w", err)
	}

	temporary := path + ".tmp"
	if err := afero.WriteFile(backend.fs, temporary, value, 0o600); err != nil {
		return err
	}
	return backend.fs.Rename(temporary, path)
}

func (backend *FileBackend) ListScopes(context.Context) ([]string, error) {
	entries, err := afero.ReadDir(backend.fs, backend.root)
	if err != nil {
		return nil, err
	}
	scopes := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			scopes = append(scopes, entry.Name())
		}
	}
	sort.Strings(scopes)
	return scopes, nil
}

func (backend *FileBackend) recordPath(scope string, key string) (string, error) {
	if !safeNamePattern.MatchString(scope) || !safeNamePattern.MatchString(key) {
		return "", ErrUnsafeName
	}
	if scope == "." || scope == ".." || key == "." || key == ".." {
		return "", ErrUnsafeName
	}
	return filepath.Join(backend.root, scope, key+".json"), nil
}

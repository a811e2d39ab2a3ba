// Package store is the serialization boundary between the hydration state and
// a durable key-value backend. It owns no business logic.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	SettingsKey = "hydration-settings"
	HistoryKey  = "hydration-history"
)

var ErrEmptyScope = errors.New("store scope is required")

// Backend is a durable byte store partitioned by scope.
type Backend interface {
	Get(ctx context.Context, scope string, key string) ([]byte, bool, error)
	Put(ctx context.Context, scope string, key string, value []byte) error
}

// WriteObserver is told about every failed write.
type WriteObserver interface {
	StoreWriteFailed(key string)
}

type validator interface {
	Valid() bool
}

// Adapter binds a backend to a single installation scope. An adapter without
// a backend behaves like a context with no durable store: loads return the
// default and saves do nothing.
type Adapter struct {
	backend  Backend
	scope    string
	logger   *zap.Logger
	observer WriteObserver
}

func NewAdapter(backend Backend, scope string, logger *zap.Logger, observer WriteObserver) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		backend:  backend,
		scope:    scope,
		logger:   logger.With(zap.String("scope", scope)),
		observer: observer,
	}
}

func (adapter *Adapter) Available() bool {
	return adapter != nil && adapter.backend != nil && adapter.scope != ""
}

func (adapter *Adapter) Scope() string {
	if adapter == nil {
		return ""
	}
	return adapter.scope
}

// Load returns the value stored under key decoded over a copy of
// defaultValue, or defaultValue itself when the key is absent, unreadable,
// malformed or fails its Valid check.
func Load[T any](ctx context.Context, adapter *Adapter, key string, defaultValue T) T {
	if !adapter.Available() {
		return defaultValue
	}

	raw, found, err := adapter.backend.Get(ctx, adapter.scope, key)
	if err != nil {
		adapter.logger.Warn("read stored record failed", zap.String("key", key), zap.Error(err))
		return defaultValue
	}
	if !found || len(raw) == 0 {
		return defaultValue
	}

	decoded, err := decodeOver(raw, defaultValue)
	if err != nil {
		adapter.logger.Warn("stored record is corrupt, using default", zap.String("key", key), zap.Error(err))
		return defaultValue
	}
	return decoded
}

func decodeOver[T any](raw []byte, defaultValue T) (T, error) {
	// Round-trip the default so decoding never aliases its slices or maps.
	seed, err := json.Marshal(defaultValue)
	if err != nil {
		return defaultValue, fmt.Errorf("encode default: %w", err)
	}
	var decoded T
	if err := json.Unmarshal(seed, &decoded); err != nil {
		return defaultValue, fmt.Errorf("copy default: %w", err)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return defaultValue, err
	}
	if check, ok := any(decoded).(validator); ok && !check.Valid() {
		return defaultValue, errors.New("stored value failed validation")
	}
	return decoded, nil
}

// Save encodes value and writes it under key. The error is informational:
// callers keep their in-memory state whether or not the write lands.
func (adapter *Adapter) Save(ctx context.Context, key string, value any) error {
	if !adapter.Available() {
		return nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		adapter.reportWriteFailure(key, err)
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := adapter.backend.Put(ctx, adapter.scope, key, encoded); err != nil {
		adapter.reportWriteFailure(key, err)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (adapter *Adapter) reportWriteFailure(key string, err error) {
	adapter.logger.Error("write stored record failed", zap.String("key", key), zap.Error(err))
	if adapter.observer != nil {
		adapter.observer.StoreWriteFailed(key)
	}
}

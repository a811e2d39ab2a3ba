// Package hydration owns the canonical settings and intake history of one
// installation and derives today's progress from them.
package hydration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/waterline/internal/models"
	"github.com/terraincognita07/waterline/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseClosed  Phase = "closed"
)

var (
	ErrNotReady       = errors.New("hydration state is still loading")
	ErrClosed         = errors.New("hydration state is closed")
	ErrIntakeTooLarge = fmt.Errorf("intake amount must not exceed %d ml", models.MaxIntakeAmount)
)

// Observer receives domain events. Implementations must not block.
type Observer interface {
	IntakeLogged(amount int)
}

type Options struct {
	Clock    func() time.Time
	NewID    func() string
	Location *time.Location
	Logger   *zap.Logger
	Observer Observer

	// IdleTTL and OnEvict only apply to a Registry.
	IdleTTL time.Duration
	OnEvict func(installationID string)
}

// Snapshot is a consistent read of the manager state at one instant.
type Snapshot struct {
	Phase          Phase                 `json:"phase"`
	Settings       models.UserSettings   `json:"settings"`
	IntakeHistory  []models.IntakeRecord `json:"intakeHistory"`
	TodaysIntake   []models.IntakeRecord `json:"todaysIntake"`
	TotalToday     int                   `json:"totalToday"`
	Progress       float64               `json:"progress"`
	StorageWarning string                `json:"storageWarning,omitempty"`
}

type Manager struct {
	mu       sync.RWMutex
	adapter  *store.Adapter
	clock    func() time.Time
	newID    func() string
	location *time.Location
	logger   *zap.Logger
	observer Observer

	phase          Phase
	settings       models.UserSettings
	history        models.IntakeHistory
	storageWarning string
}

func NewManager(adapter *store.Adapter, options Options) *Manager {
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.NewID == nil {
		options.NewID = uuid.NewString
	}
	if options.Location == nil {
		options.Location = time.Local
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Manager{
		adapter:  adapter,
		clock:    options.Clock,
		newID:    options.NewID,
		location: options.Location,
		logger:   options.Logger.With(zap.String("installation", adapter.Scope())),
		observer: options.Observer,
		phase:    PhaseLoading,
		settings: models.DefaultSettings(),
		history:  models.IntakeHistory{},
	}
}

// Load reconciles the in-memory defaults with the store and moves the
// manager to ready. Only the first call reads the store.
func (manager *Manager) Load(ctx context.Context) error {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	switch manager.phase {
	case PhaseReady:
		return nil
	case PhaseClosed:
		return ErrClosed
	}

	var (
		settings models.UserSettings
		history  models.IntakeHistory
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		settings = store.Load(groupCtx, manager.adapter, store.SettingsKey, models.DefaultSettings())
		return nil
	})
	group.Go(func() error {
		history = store.Load(groupCtx, manager.adapter, store.HistoryKey, models.IntakeHistory{})
		return nil
	})
	if err := group.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if settings.Reminders == nil {
		settings.Reminders = []models.Reminder{}
	}
	if history == nil {
		history = models.IntakeHistory{}
	}
	manager.settings = settings
	manager.history = history
	manager.phase = PhaseReady
	manager.logger.Debug("hydration state loaded", zap.Int("records", len(history)))
	return nil
}

// Close rejects further commands. Snapshots stay readable.
func (manager *Manager) Close() {
	manager.mu.Lock()
	manager.phase = PhaseClosed
	manager.mu.Unlock()
}

func (manager *Manager) Phase() Phase {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.phase
}

func (manager *Manager) Location() *time.Location {
	return manager.location
}

func (manager *Manager) Now() time.Time {
	return manager.clock().In(manager.location)
}

// AddIntake appends a record for amount milliliters. Non-positive amounts are
// ignored and reported with added == false. Amounts above
// models.MaxIntakeAmount are rejected with ErrIntakeTooLarge.
func (manager *Manager) AddIntake(ctx context.Context, amount int) (models.IntakeRecord, bool, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if err := manager.commandAllowedLocked(); err != nil {
		return models.IntakeRecord{}, false, err
	}
	if amount <= 0 {
		return models.IntakeRecord{}, false, nil
	}
	if amount > models.MaxIntakeAmount {
		return models.IntakeRecord{}, false, ErrIntakeTooLarge
	}

	record := models.IntakeRecord{
		ID:        manager.newID(),
		Amount:    amount,
		Timestamp: manager.clock(),
	}
	next := make(models.IntakeHistory, len(manager.history), len(manager.history)+1)
	copy(next, manager.history)
	manager.history = append(next, record)

	manager.persistLocked(ctx, store.HistoryKey, manager.history)
	if manager.observer != nil {
		manager.observer.IntakeLogged(amount)
	}
	return record, true, nil
}

// UpdateSettings merges patch into the current settings.
func (manager *Manager) UpdateSettings(ctx context.Context, patch SettingsPatch) (models.UserSettings, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if err := manager.commandAllowedLocked(); err != nil {
		return models.UserSettings{}, err
	}
	manager.settings = patch.Apply(manager.settings)
	manager.persistLocked(ctx, store.SettingsKey, manager.settings)
	return manager.settings.Clone(), nil
}

// UpdateReminders replaces the reminder list wholesale.
func (manager *Manager) UpdateReminders(ctx context.Context, reminders []models.Reminder) (models.UserSettings, error) {
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return manager.UpdateSettings(ctx, SettingsPatch{Reminders: &reminders})
}

// Unsaved reports whether the last write failed, so in-memory state is ahead
// of the store.
func (manager *Manager) Unsaved() bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.storageWarning != ""
}

func (manager *Manager) Settings() models.UserSettings {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.settings.Clone()
}

func (manager *Manager) History() []models.IntakeRecord {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return cloneHistory(manager.history)
}

// Snapshot derives today's values relative to now.
func (manager *Manager) Snapshot(now time.Time) Snapshot {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	today := TodaysIntake(manager.history, now, manager.location)
	total := TotalIntake(today)
	return Snapshot{
		Phase:          manager.phase,
		Settings:       manager.settings.Clone(),
		IntakeHistory:  cloneHistory(manager.history),
		TodaysIntake:   today,
		TotalToday:     total,
		Progress:       Progress(total, manager.settings.DailyGoal),
		StorageWarning: manager.storageWarning,
	}
}

func (manager *Manager) commandAllowedLocked() error {
	switch manager.phase {
	case PhaseLoading:
		return ErrNotReady
	case PhaseClosed:
		return ErrClosed
	default:
		return nil
	}
}

// persistLocked writes value through to the store. The in-memory state is
// never rolled back on failure.
func (manager *Manager) persistLocked(ctx context.Context, key string, value any) {
	if err := manager.adapter.Save(ctx, key, value); err != nil {
		manager.storageWarning = "changes could not be saved: " + err.Error()
		return
	}
	manager.storageWarning = ""
}

func cloneHistory(history models.IntakeHistory) []models.IntakeRecord {
	cloned := make([]models.IntakeRecord, len(history))
	copy(cloned, history)
	return cloned
}

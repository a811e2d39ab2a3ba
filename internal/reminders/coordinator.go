package reminders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/terraincognita07/waterline/internal/models"
	"go.uber.org/zap"
)

type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

var ErrGenerationPending = errors.New("reminder generation already in progress")

// ApplyFunc stores a successful schedule. It is called at most once per run.
type ApplyFunc func(ctx context.Context, reminders []models.Reminder) error

// OutcomeObserver is told how every finished run ended.
type OutcomeObserver interface {
	ReminderGeneration(outcome string)
}

// Status describes the latest run of one installation.
type Status struct {
	State      State      `json:"state"`
	Count      int        `json:"count,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Coordinator allows a single generation run per installation at a time. A
// request that arrives while one is pending is rejected.
type Coordinator struct {
	generator Generator
	timeout   time.Duration
	clock     func() time.Time
	logger    *zap.Logger
	observer  OutcomeObserver

	mu       sync.Mutex
	statuses map[string]Status
}

type CoordinatorOptions struct {
	Timeout  time.Duration
	Clock    func() time.Time
	Logger   *zap.Logger
	Observer OutcomeObserver
}

func NewCoordinator(generator Generator, options CoordinatorOptions) *Coordinator {
	if options.Timeout <= 0 {
		options.Timeout = 30 * time.Second
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Coordinator{
		generator: generator,
		timeout:   options.Timeout,
		clock:     options.Clock,
		logger:    options.Logger,
		observer:  options.Observer,
		statuses:  make(map[string]Status),
	}
}

// Run generates reminders for installationID and applies them on success.
// Settings are never touched when generation or validation fails.
func (coordinator *Coordinator) Run(ctx context.Context, installationID string, request Request, apply ApplyFunc) ([]models.Reminder, error) {
	startedAt := coordinator.clock()
	if !coordinator.begin(installationID, startedAt) {
		return nil, ErrGenerationPending
	}

	reminders, err := coordinator.generate(ctx, request)
	if err == nil {
		err = apply(ctx, reminders)
	}

	finishedAt := coordinator.clock()
	status := Status{State: StateSucceeded, Count: len(reminders), StartedAt: &startedAt, FinishedAt: &finishedAt}
	outcome := "success"
	if err != nil {
		status = Status{State: StateFailed, Error: err.Error(), StartedAt: &startedAt, FinishedAt: &finishedAt}
		outcome = "failure"
		reminders = nil
		coordinator.logger.Warn("reminder generation failed", zap.String("installation", installationID), zap.Error(err))
	}
	coordinator.finish(installationID, status)
	if coordinator.observer != nil {
		coordinator.observer.ReminderGeneration(outcome)
	}
	return reminders, err
}

func (coordinator *Coordinator) generate(ctx context.Context, request Request) ([]models.Reminder, error) {
	if coordinator.generator == nil {
		return nil, errors.New("no reminder generator configured")
	}
	runCtx, cancel := context.WithTimeout(ctx, coordinator.timeout)
	defer cancel()

	response, err := coordinator.generator.Generate(runCtx, request)
	if err != nil {
		return nil, err
	}
	validated, err := ValidateResponse(response)
	if err != nil {
		return nil, err
	}
	return validated.Reminders, nil
}

func (coordinator *Coordinator) Status(installationID string) Status {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	status, ok := coordinator.statuses[installationID]
	if !ok {
		return Status{State: StateIdle}
	}
	return status
}

func (coordinator *Coordinator) begin(installationID string, startedAt time.Time) bool {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.statuses[installationID].State == StatePending {
		return false
	}
	coordinator.statuses[installationID] = Status{State: StatePending, StartedAt: &startedAt}
	return true
}

func (coordinator *Coordinator) finish(installationID string, status Status) {
	coordinator.mu.Lock()
	coordinator.statuses[installationID] = status
	coordinator.mu.Unlock()
}

// Forget drops the stored status of an installation. A pending run keeps its
// status so the single-flight guard stays in force.
func (coordinator *Coordinator) Forget(installationID string) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	if coordinator.statuses[installationID].State == StatePending {
		return
	}
	delete(coordinator.statuses, installationID)
}

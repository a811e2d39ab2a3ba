// Package reminders turns a hydration profile into a reminder schedule using
// an external generator.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/waterline/internal/models"
)

var (
	ErrInvalidRequest  = errors.New("invalid reminder request")
	ErrInvalidResponse = errors.New("invalid reminder response")
)

// Request is the hydration profile sent to a generator.
type Request struct {
	DailyGoal     int    `json:"dailyGoal"`
	WakeUpTime    string `json:"wakeUpTime"`
	BedTime       string `json:"bedTime"`
	ActivityLevel string `json:"activityLevel"`
	Climate       string `json:"climate"`
}

type Response struct {
	Reminders []models.Reminder `json:"reminders"`
}

// Generator produces a reminder schedule. A returned error or a response
// failing ValidateResponse counts as a generation failure.
type Generator interface {
	Generate(ctx context.Context, request Request) (Response, error)
}

func RequestFromSettings(settings models.UserSettings) Request {
	return Request{
		DailyGoal:     settings.DailyGoal,
		WakeUpTime:    settings.WakeUpTime,
		BedTime:       settings.BedTime,
		ActivityLevel: settings.ActivityLevel,
		Climate:       settings.Climate,
	}
}

func (request Request) Validate() error {
	if request.DailyGoal < 1 {
		return fmt.Errorf("%w: daily goal must be positive", ErrInvalidRequest)
	}
	if _, err := models.ParseClock(request.WakeUpTime); err != nil {
		return fmt.Errorf("%w: wake up time: %v", ErrInvalidRequest, err)
	}
	if _, err := models.ParseClock(request.BedTime); err != nil {
		return fmt.Errorf("%w: bed time: %v", ErrInvalidRequest, err)
	}
	if !models.IsValidActivityLevel(request.ActivityLevel) {
		return fmt.Errorf("%w: activity level %q", ErrInvalidRequest, request.ActivityLevel)
	}
	if strings.TrimSpace(request.Climate) == "" {
		return fmt.Errorf("%w: climate is required", ErrInvalidRequest)
	}
	return nil
}

// ValidateResponse accepts a response only when every reminder is usable.
// Times are normalized to HH:mm and messages trimmed.
func ValidateResponse(response Response) (Response, error) {
	if len(response.Reminders) == 0 {
		return Response{}, fmt.Errorf("%w: no reminders were generated", ErrInvalidResponse)
	}

	normalized := make([]models.Reminder, 0, len(response.Reminders))
	for index, reminder := range response.Reminders {
		clock, err := models.NormalizeClock(reminder.Time)
		if err != nil {
			return Response{}, fmt.Errorf("%w: reminder %d time %q", ErrInvalidResponse, index, reminder.Time)
		}
		message := strings.TrimSpace(reminder.Message)
		if message == "" {
			return Response{}, fmt.Errorf("%w: reminder %d has no message", ErrInvalidResponse, index)
		}
		normalized = append(normalized, models.Reminder{Time: clock, Message: message})
	}
	return Response{Reminders: normalized}, nil
}

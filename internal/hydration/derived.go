package hydration

import (
	"time"

	"github.com/terraincognita07/waterline/internal/models"
)

// DateAtLocation truncates value to local midnight in location.
func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.Local
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// TodaysIntake keeps the records whose timestamp falls on the local calendar
// date of now, in their original order.
func TodaysIntake(history []models.IntakeRecord, now time.Time, location *time.Location) []models.IntakeRecord {
	start, end := DayRange(now, location)
	today := make([]models.IntakeRecord, 0)
	for _, record := range history {
		if !record.Timestamp.Before(start) && record.Timestamp.Before(end) {
			today = append(today, record)
		}
	}
	return today
}

func TotalIntake(records []models.IntakeRecord) int {
	total := 0
	for _, record := range records {
		total += record.Amount
	}
	return total
}

// Progress is the percentage of goal reached, clamped to 100. A zero goal
// yields zero progress.
func Progress(total int, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	progress := float64(total) / float64(goal) * 100
	if progress > 100 {
		return 100
	}
	return progress
}

// Remaining is how many milliliters are still missing to reach goal.
func Remaining(total int, goal int) int {
	if total >= goal {
		return 0
	}
	return goal - total
}

// GlassesRemaining rounds the remaining amount up to whole glasses.
func GlassesRemaining(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	return (remaining + models.GlassVolume - 1) / models.GlassVolume
}

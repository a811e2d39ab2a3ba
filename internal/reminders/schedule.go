package reminders

import (
	"context"
	"fmt"
	"strings"

	"github.com/terraincognita07/waterline/internal/models"
)

const (
	scheduleSipVolume    = 250
	scheduleMinReminders = 4
	scheduleMaxReminders = 16
)

var hotClimates = []string{"hot", "tropical", "humid", "arid", "desert", "dry"}

// ScheduleGenerator spreads reminders evenly across the waking window. It
// needs no network and is used when no model is configured.
type ScheduleGenerator struct{}

func (ScheduleGenerator) Generate(ctx context.Context, request Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if err := request.Validate(); err != nil {
		return Response{}, err
	}

	wake, _ := models.ParseClock(request.WakeUpTime)
	bed, _ := models.ParseClock(request.BedTime)
	if bed <= wake {
		bed += 24 * 60
	}
	window := bed - wake

	count := reminderCount(request)
	if window < count {
		count = max(window, 1)
	}
	volume := max(request.DailyGoal/count, 1)

	reminders := make([]models.Reminder, 0, count)
	step := window / count
	for index := 0; index < count; index++ {
		at := wake + step*index
		if index > 0 {
			at += step / 2
		}
		reminders = append(reminders, models.Reminder{
			Time:    models.FormatClock(at),
			Message: scheduleMessage(index, count, volume),
		})
	}
	return Response{Reminders: reminders}, nil
}

func reminderCount(request Request) int {
	count := (request.DailyGoal + scheduleSipVolume - 1) / scheduleSipVolume
	switch request.ActivityLevel {
	case models.ActivityVeryActive:
		count++
	case models.ActivityExtraActive:
		count += 2
	}
	if isHotClimate(request.Climate) {
		count++
	}
	return min(max(count, scheduleMinReminders), scheduleMaxReminders)
}

func isHotClimate(climate string) bool {
	normalized := strings.ToLower(climate)
	for _, hot := range hotClimates {
		if strings.Contains(normalized, hot) {
			return true
		}
	}
	return false
}

func scheduleMessage(index int, count int, volume int) string {
	switch {
	case index == 0:
		return fmt.Sprintf("Good morning! Start the day with %d ml of water.", volume)
	case index == count-1:
		return fmt.Sprintf("Last glass of the day: about %d ml before bed.", volume)
	default:
		return fmt.Sprintf("Time for a water break: drink about %d ml.", volume)
	}
}

package hydration

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/waterline/internal/models"
)

var (
	ErrInvalidDailyGoal     = errors.New("daily goal must be at least 1 ml")
	ErrInvalidWakeUpTime    = errors.New("invalid wake up time")
	ErrInvalidBedTime       = errors.New("invalid bed time")
	ErrInvalidActivityLevel = errors.New("invalid activity level")
	ErrInvalidGender        = errors.New("invalid gender")
	ErrInvalidClimate       = errors.New("climate is required")
	ErrInvalidHeight        = errors.New("height must not be negative")
	ErrInvalidWeight        = errors.New("weight must not be negative")
	ErrInvalidDateOfBirth   = errors.New("invalid date of birth")
	ErrInvalidProfilePhoto  = errors.New("profile photo must be an image data uri")
	ErrInvalidReminder      = errors.New("invalid reminder")
)

const dateOfBirthLayout = "2006-01-02"

// SettingsPatch is a partial settings update. Nil fields keep their value.
type SettingsPatch struct {
	Name          *string            `json:"name,omitempty"`
	DateOfBirth   *string            `json:"dateOfBirth,omitempty"`
	Height        *float64           `json:"height,omitempty"`
	Weight        *float64           `json:"weight,omitempty"`
	Gender        *string            `json:"gender,omitempty"`
	ProfilePhoto  *string            `json:"profilePhoto,omitempty"`
	DailyGoal     *int               `json:"dailyGoal,omitempty"`
	WakeUpTime    *string            `json:"wakeUpTime,omitempty"`
	BedTime       *string            `json:"bedTime,omitempty"`
	ActivityLevel *string            `json:"activityLevel,omitempty"`
	Climate       *string            `json:"climate,omitempty"`
	Reminders     *[]models.Reminder `json:"reminders,omitempty"`
}

func (patch SettingsPatch) Empty() bool {
	return patch == SettingsPatch{}
}

// Apply overwrites the fields present in patch and returns the result.
func (patch SettingsPatch) Apply(settings models.UserSettings) models.UserSettings {
	next := settings.Clone()
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.DateOfBirth != nil {
		next.DateOfBirth = *patch.DateOfBirth
	}
	if patch.Height != nil {
		next.Height = *patch.Height
	}
	if patch.Weight != nil {
		next.Weight = *patch.Weight
	}
	if patch.Gender != nil {
		next.Gender = *patch.Gender
	}
	if patch.ProfilePhoto != nil {
		next.ProfilePhoto = *patch.ProfilePhoto
	}
	if patch.DailyGoal != nil {
		next.DailyGoal = *patch.DailyGoal
	}
	if patch.WakeUpTime != nil {
		next.WakeUpTime = *patch.WakeUpTime
	}
	if patch.BedTime != nil {
		next.BedTime = *patch.BedTime
	}
	if patch.ActivityLevel != nil {
		next.ActivityLevel = *patch.ActivityLevel
	}
	if patch.Climate != nil {
		next.Climate = *patch.Climate
	}
	if patch.Reminders != nil {
		next.Reminders = models.CloneReminders(*patch.Reminders)
	}
	return next
}

// ValidateSettingsPatch checks user-submitted values before they reach the
// manager. now bounds the date of birth.
func ValidateSettingsPatch(patch SettingsPatch, now time.Time) error {
	if patch.DailyGoal != nil && *patch.DailyGoal < 1 {
		return ErrInvalidDailyGoal
	}
	if patch.WakeUpTime != nil {
		if _, err := models.ParseClock(*patch.WakeUpTime); err != nil {
			return ErrInvalidWakeUpTime
		}
	}
	if patch.BedTime != nil {
		if _, err := models.ParseClock(*patch.BedTime); err != nil {
			return ErrInvalidBedTime
		}
	}
	if patch.ActivityLevel != nil && !models.IsValidActivityLevel(*patch.ActivityLevel) {
		return ErrInvalidActivityLevel
	}
	if patch.Gender != nil && !models.IsValidGender(*patch.Gender) {
		return ErrInvalidGender
	}
	if patch.Climate != nil && strings.TrimSpace(*patch.Climate) == "" {
		return ErrInvalidClimate
	}
	if patch.Height != nil && *patch.Height < 0 {
		return ErrInvalidHeight
	}
	if patch.Weight != nil && *patch.Weight < 0 {
		return ErrInvalidWeight
	}
	if patch.DateOfBirth != nil && *patch.DateOfBirth != "" {
		birth, err := time.ParseInLocation(dateOfBirthLayout, *patch.DateOfBirth, now.Location())
		if err != nil || !birth.Before(now) {
			return ErrInvalidDateOfBirth
		}
	}
	if patch.ProfilePhoto != nil && *patch.ProfilePhoto != "" && !strings.HasPrefix(*patch.ProfilePhoto, "data:image/") {
		return ErrInvalidProfilePhoto
	}
	if patch.Reminders != nil {
		if err := ValidateReminders(*patch.Reminders); err != nil {
			return err
		}
	}
	return nil
}

func ValidateReminders(reminders []models.Reminder) error {
	for _, reminder := range reminders {
		if _, err := models.ParseClock(reminder.Time); err != nil {
			return ErrInvalidReminder
		}
		if strings.TrimSpace(reminder.Message) == "" {
			return ErrInvalidReminder
		}
	}
	return nil
}

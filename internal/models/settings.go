package models

const (
	ActivitySedentary        = "sedentary"
	ActivityLightlyActive    = "lightlyActive"
	ActivityModeratelyActive = "moderatelyActive"
	ActivityVeryActive       = "veryActive"
	ActivityExtraActive      = "extraActive"
)

const (
	GenderMale           = "male"
	GenderFemale         = "female"
	GenderOther          = "other"
	GenderPreferNotToSay = "preferNotToSay"
)

const (
	DefaultDailyGoal     = 2000
	DefaultWakeUpTime    = "07:00"
	DefaultBedTime       = "23:00"
	DefaultActivityLevel = ActivityModeratelyActive
	DefaultClimate       = "temperate"
	GlassVolume          = 250
)

type Reminder struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

// UserSettings is the singleton settings record of one installation.
type UserSettings struct {
	Name          string     `json:"name"`
	DateOfBirth   string     `json:"dateOfBirth"`
	Height        float64    `json:"height"`
	Weight        float64    `json:"weight"`
	Gender        string     `json:"gender"`
	ProfilePhoto  string     `json:"profilePhoto"`
	DailyGoal     int        `json:"dailyGoal"`
	WakeUpTime    string     `json:"wakeUpTime"`
	BedTime       string     `json:"bedTime"`
	ActivityLevel string     `json:"activityLevel"`
	Climate       string     `json:"climate"`
	Reminders     []Reminder `json:"reminders"`
}

func DefaultSettings() UserSettings {
	return UserSettings{
		Gender:        GenderPreferNotToSay,
		DailyGoal:     DefaultDailyGoal,
		WakeUpTime:    DefaultWakeUpTime,
		BedTime:       DefaultBedTime,
		ActivityLevel: DefaultActivityLevel,
		Climate:       DefaultClimate,
		Reminders:     []Reminder{},
	}
}

// Valid rejects stored values whose hydration configuration cannot be used.
// Profile fields are opaque and never invalidate the record.
func (settings UserSettings) Valid() bool {
	if !IsValidActivityLevel(settings.ActivityLevel) {
		return false
	}
	if _, err := ParseClock(settings.WakeUpTime); err != nil {
		return false
	}
	if _, err := ParseClock(settings.BedTime); err != nil {
		return false
	}
	return settings.DailyGoal >= 0
}

// Clone returns a copy that shares no slices with the receiver.
func (settings UserSettings) Clone() UserSettings {
	cloned := settings
	cloned.Reminders = CloneReminders(settings.Reminders)
	return cloned
}

func CloneReminders(reminders []Reminder) []Reminder {
	result := make([]Reminder, len(reminders))
	copy(result, reminders)
	return result
}

func IsValidActivityLevel(level string) bool {
	switch level {
	case ActivitySedentary, ActivityLightlyActive, ActivityModeratelyActive, ActivityVeryActive, ActivityExtraActive:
		return true
	default:
		return false
	}
}

func IsValidGender(gender string) bool {
	switch gender {
	case GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return true
	default:
		return false
	}
}

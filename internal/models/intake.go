package models

import "time"

// MaxIntakeAmount caps a single intake record in milliliters.
const MaxIntakeAmount = 10000

// IntakeRecord is one logged water-consumption event. Records are appended
// in logging order and never edited afterwards.
type IntakeRecord struct {
	ID        string    `json:"id"`
	Amount    int       `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// IntakeHistory is the persisted, insertion-ordered sequence of records.
type IntakeHistory []IntakeRecord

// Valid reports whether every record carries an id, an amount in
// (0, MaxIntakeAmount] and a timestamp. A history failing this check is
// treated as corrupt on load.
func (history IntakeHistory) Valid() bool {
	for _, record := range history {
		if record.ID == "" || record.Amount <= 0 || record.Amount > MaxIntakeAmount || record.Timestamp.IsZero() {
			return false
		}
	}
	return true
}

package models

import "time"

// StoredRecord is one value of the durable key-value store. Scope isolates
// installations from each other.
type StoredRecord struct {
	Scope     string `gorm:"primaryKey;not null"`
	RecordKey string `gorm:"column:record_key;primaryKey;not null"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (StoredRecord) TableName() string {
	return "stored_records"
}

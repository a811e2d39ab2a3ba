package db

import (
	"context"
	"time"

	"github.com/terraincognita07/waterline/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository persists installation records in SQLite.
type RecordRepository struct {
	database *gorm.DB
}

func NewRecordRepository(database *gorm.DB) *RecordRepository {
	return &RecordRepository{database: database}
}

func (repo *RecordRepository) Get(ctx context.Context, scope string, key string) ([]byte, bool, error) {
	var record models.StoredRecord
	result := repo.database.WithContext(ctx).
		Where("scope = ? AND record_key = ?", scope, key).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}
	return []byte(record.Value), true, nil
}

func (repo *RecordRepository) Put(ctx context.Context, scope string, key string, value []byte) error {
	record := models.StoredRecord{
		Scope:     scope,
		RecordKey: key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}, {Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}

func (repo *RecordRepository) ListScopes(ctx context.Context) ([]string, error) {
	scopes := make([]string, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.StoredRecord{}).
		Distinct("scope").
		Order("scope ASC").
		Pluck("scope", &scopes).Error; err != nil {
		return nil, err
	}
	return scopes, nil
}

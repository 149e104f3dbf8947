package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/faceattend/attendbackend/apperrors"
	"github.com/faceattend/attendbackend/models"
)

// SettingsRepository handles database operations for persisted configuration
// values
type SettingsRepository struct {
	DB *gorm.DB
}

// Ensure SettingsRepository implements SettingsRepositoryInterface
var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// Get retrieves a setting value by key
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	err := r.DB.WithContext(ctx).First(&setting, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("setting %s: %w", key, apperrors.ErrNotFound)
		}
		return "", storageError(fmt.Sprintf("failed to get setting %s", key), err)
	}
	return setting.Value, nil
}

// Set inserts or updates a setting value
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return storageError(fmt.Sprintf("failed to set setting %s", key), err)
	}
	return nil
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/ardash/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lastSyncKey is the settings row holding the last successful sync time
const lastSyncKey = "last_sync_at"

// GormSettingsRepository implements SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// GetLastSyncAt returns the last successful sync time, or nil if never synced
func (r *GormSettingsRepository) GetLastSyncAt(ctx context.Context) (*time.Time, error) {
	var model models.AppSettingModel
	if err := r.db.WithContext(ctx).
		First(&model, "key = ?", lastSyncKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	at, err := time.Parse(time.RFC3339, model.Value)
	if err != nil {
		return nil, err
	}
	return &at, nil
}

// SetLastSyncAt records the completion time of a successful sync
func (r *GormSettingsRepository) SetLastSyncAt(ctx context.Context, at time.Time) error {
	model := models.AppSettingModel{
		Key:       lastSyncKey,
		Value:     at.UTC().Format(time.RFC3339),
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
}

// Ensure GormSettingsRepository implements SettingsRepository
var _ ledger.SettingsRepository = (*GormSettingsRepository)(nil)

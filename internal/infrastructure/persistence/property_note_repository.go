package persistence

import (
	"context"
	"errors"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/ardash/backend/internal/domain/shared"
	"github.com/ardash/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPropertyNoteRepository implements PropertyNoteRepository using GORM
type GormPropertyNoteRepository struct {
	db *gorm.DB
}

// NewGormPropertyNoteRepository creates a new GormPropertyNoteRepository
func NewGormPropertyNoteRepository(db *gorm.DB) *GormPropertyNoteRepository {
	return &GormPropertyNoteRepository{db: db}
}

// FindByProperty finds the note for a property name
func (r *GormPropertyNoteRepository) FindByProperty(ctx context.Context, propertyName string) (*ledger.PropertyNote, error) {
	var model models.PropertyNoteModel
	if err := r.db.WithContext(ctx).
		First(&model, "property_name = ?", propertyName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates or replaces the note for a property. The original creation
// time is preserved on replacement.
func (r *GormPropertyNoteRepository) Upsert(ctx context.Context, note *ledger.PropertyNote) error {
	var model models.PropertyNoteModel
	model.FromDomain(note)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "property_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "author", "updated_at"}),
		}).
		Create(&model).Error
}

// Delete removes the note for a property
func (r *GormPropertyNoteRepository) Delete(ctx context.Context, propertyName string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.PropertyNoteModel{}, "property_name = ?", propertyName)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPropertyNoteRepository implements PropertyNoteRepository
var _ ledger.PropertyNoteRepository = (*GormPropertyNoteRepository)(nil)

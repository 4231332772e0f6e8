package persistence

import (
	"context"
	"errors"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/ardash/backend/internal/domain/shared"
	"github.com/ardash/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFollowUpRepository implements FollowUpRepository using GORM
type GormFollowUpRepository struct {
	db *gorm.DB
}

// NewGormFollowUpRepository creates a new GormFollowUpRepository
func NewGormFollowUpRepository(db *gorm.DB) *GormFollowUpRepository {
	return &GormFollowUpRepository{db: db}
}

// FindByID finds a follow-up by its ID
func (r *GormFollowUpRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.FollowUp, error) {
	var model models.FollowUpModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice finds all follow-ups for an invoice, newest first
func (r *GormFollowUpRepository) FindByInvoice(ctx context.Context, invoiceID int64) ([]ledger.FollowUp, error) {
	var followUpModels []models.FollowUpModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Find(&followUpModels).Error; err != nil {
		return nil, err
	}
	followUps := make([]ledger.FollowUp, len(followUpModels))
	for i, model := range followUpModels {
		followUps[i] = *model.ToDomain()
	}
	return followUps, nil
}

// FindOpen finds all open follow-ups across invoices, soonest due first
func (r *GormFollowUpRepository) FindOpen(ctx context.Context) ([]ledger.FollowUp, error) {
	var followUpModels []models.FollowUpModel
	if err := r.db.WithContext(ctx).
		Where("completed = ?", false).
		Order("due_date ASC").
		Find(&followUpModels).Error; err != nil {
		return nil, err
	}
	followUps := make([]ledger.FollowUp, len(followUpModels))
	for i, model := range followUpModels {
		followUps[i] = *model.ToDomain()
	}
	return followUps, nil
}

// Save creates or updates a follow-up
func (r *GormFollowUpRepository) Save(ctx context.Context, followUp *ledger.FollowUp) error {
	var model models.FollowUpModel
	model.FromDomain(followUp)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a follow-up
func (r *GormFollowUpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FollowUpModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormFollowUpRepository implements FollowUpRepository
var _ ledger.FollowUpRepository = (*GormFollowUpRepository)(nil)

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

// GormNoteRepository implements NoteRepository using GORM
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a new GormNoteRepository
func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

// FindByID finds a note by its ID
func (r *GormNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Note, error) {
	var model models.NoteModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice finds all notes for an invoice, newest first
func (r *GormNoteRepository) FindByInvoice(ctx context.Context, invoiceID int64) ([]ledger.Note, error) {
	var noteModels []models.NoteModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}
	notes := make([]ledger.Note, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// Save creates or updates a note
func (r *GormNoteRepository) Save(ctx context.Context, note *ledger.Note) error {
	var model models.NoteModel
	model.FromDomain(note)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a note
func (r *GormNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.NoteModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormNoteRepository implements NoteRepository
var _ ledger.NoteRepository = (*GormNoteRepository)(nil)

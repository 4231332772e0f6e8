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

// findAllPageSize bounds memory when reading the full invoice table
const findAllPageSize = 1000

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindAll reads the entire invoice table in keyset-paged batches
func (r *GormInvoiceRepository) FindAll(ctx context.Context) ([]ledger.Invoice, error) {
	var invoices []ledger.Invoice
	var lastID int64

	for {
		var page []models.InvoiceModel
		if err := r.db.WithContext(ctx).
			Where("id > ?", lastID).
			Order("id ASC").
			Limit(findAllPageSize).
			Find(&page).Error; err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			invoices = append(invoices, *page[i].ToDomain())
		}
		lastID = page[len(page)-1].ID
		if len(page) < findAllPageSize {
			break
		}
	}

	return invoices, nil
}

// FindByID finds an invoice by its external ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, invoiceID int64) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpsertBatch writes invoices with conflict target invoice_id. The update set
// covers authoritative and derived columns only, so local-only columns on
// existing rows survive every sync.
func (r *GormInvoiceRepository) UpsertBatch(ctx context.Context, invoices []ledger.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	rows := make([]models.InvoiceModel, len(invoices))
	for i := range invoices {
		rows[i].FromDomain(&invoices[i])
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "invoice_id"}},
			DoUpdates: clause.AssignmentColumns(models.AuthoritativeColumns()),
		}).
		Create(&rows).Error
}

// DeleteByIDs removes invoices by external ID
func (r *GormInvoiceRepository) DeleteByIDs(ctx context.Context, invoiceIDs []int64) error {
	if len(invoiceIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("invoice_id IN ?", invoiceIDs).
		Delete(&models.InvoiceModel{}).Error
}

// UpdateLocalFields mutates only the user-controlled columns of one row
func (r *GormInvoiceRepository) UpdateLocalFields(ctx context.Context, invoiceID int64, patch ledger.LocalFieldsPatch) error {
	updates := map[string]any{}
	if patch.Ghosting != nil {
		updates["ghosting"] = *patch.Ghosting
	}
	if patch.Terminated != nil {
		updates["terminated"] = *patch.Terminated
	}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = patch.PaymentStatus.String()
	}
	if patch.Comments != nil {
		updates["comments"] = *patch.Comments
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_id = ?", invoiceID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountMissingExternalID counts legacy rows without a populated external ID
func (r *GormInvoiceRepository) CountMissingExternalID(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_id IS NULL").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ ledger.InvoiceRepository = (*GormInvoiceRepository)(nil)

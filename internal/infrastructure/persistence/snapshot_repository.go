package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/ardash/backend/internal/domain/shared"
	"github.com/ardash/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSnapshotRepository implements SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Upsert writes a snapshot, overwriting any existing row for the same
// (date, region) pair.
func (r *GormSnapshotRepository) Upsert(ctx context.Context, snapshot *ledger.MonthlySnapshot) error {
	var model models.MonthlySnapshotModel
	model.FromDomain(snapshot)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "snapshot_date"}, {Name: "region"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_outstanding", "invoice_count",
				"aging_current", "aging_1_30", "aging_31_60",
				"aging_61_90", "aging_91_120", "aging_121_plus",
				"count_current", "count_1_30", "count_31_60",
				"count_61_90", "count_91_120", "count_121_plus",
				"company_breakdown", "created_by", "created_at",
			}),
		}).
		Create(&model).Error
}

// FindByDateAndRegion finds the snapshot for a specific date and region
func (r *GormSnapshotRepository) FindByDateAndRegion(ctx context.Context, date time.Time, region ledger.Region) (*ledger.MonthlySnapshot, error) {
	var model models.MonthlySnapshotModel
	if err := r.db.WithContext(ctx).
		Where("snapshot_date = ? AND region = ?", date, region.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns all snapshots for a region, newest first. RegionAll returns
// only the all-region snapshots, not every row.
func (r *GormSnapshotRepository) List(ctx context.Context, region ledger.Region) ([]ledger.MonthlySnapshot, error) {
	var snapshotModels []models.MonthlySnapshotModel
	if err := r.db.WithContext(ctx).
		Where("region = ?", region.String()).
		Order("snapshot_date DESC").
		Find(&snapshotModels).Error; err != nil {
		return nil, err
	}
	snapshots := make([]ledger.MonthlySnapshot, len(snapshotModels))
	for i, model := range snapshotModels {
		snapshots[i] = *model.ToDomain()
	}
	return snapshots, nil
}

// Ensure GormSnapshotRepository implements SnapshotRepository
var _ ledger.SnapshotRepository = (*GormSnapshotRepository)(nil)

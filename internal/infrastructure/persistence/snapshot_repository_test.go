package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockSnapshotRepository(t *testing.T) (*GormSnapshotRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSnapshotRepository(gormDB), mock, mockDB
}

func TestGormSnapshotRepository_Upsert(t *testing.T) {
	t.Run("conflict target is date and region", func(t *testing.T) {
		repo, mock, mockDB := newMockSnapshotRepository(t)
		defer mockDB.Close()

		snap := ledger.MonthlySnapshot{
			SnapshotDate:     time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			Region:           ledger.RegionPhoenix,
			TotalOutstanding: decimal.NewFromInt(300),
			InvoiceCount:     2,
			CreatedBy:        "alice",
			CreatedAt:        time.Now(),
		}

		mock.ExpectQuery(`INSERT INTO "monthly_snapshots" .*ON CONFLICT \("snapshot_date","region"\) DO UPDATE SET.*"total_outstanding"=.*`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

		err := repo.Upsert(context.Background(), &snap)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSettingsRepository_LastSyncAt(t *testing.T) {
	newRepo := func(t *testing.T) (*GormSettingsRepository, sqlmock.Sqlmock, *sql.DB) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		gormDB, err := gorm.Open(postgres.New(postgres.Config{
			Conn:       mockDB,
			DriverName: "postgres",
		}), &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)
		return NewGormSettingsRepository(gormDB), mock, mockDB
	}

	t.Run("returns nil when never synced", func(t *testing.T) {
		repo, mock, mockDB := newRepo(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "app_settings" WHERE key = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("last_sync_at", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		at, err := repo.GetLastSyncAt(context.Background())

		assert.NoError(t, err)
		assert.Nil(t, at)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("parses stored timestamp", func(t *testing.T) {
		repo, mock, mockDB := newRepo(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "app_settings" WHERE key = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("last_sync_at", 1).
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
				AddRow("last_sync_at", "2025-06-15T08:30:00Z", time.Now()))

		at, err := repo.GetLastSyncAt(context.Background())

		assert.NoError(t, err)
		require.NotNil(t, at)
		assert.Equal(t, time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC), at.UTC())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

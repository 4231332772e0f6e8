package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceRepository persists the mirrored invoice set
type InvoiceRepository interface {
	// FindAll reads the entire invoice table, paging internally until the
	// result set is exhausted.
	FindAll(ctx context.Context) ([]Invoice, error)
	FindByID(ctx context.Context, invoiceID int64) (*Invoice, error)

	// UpsertBatch writes invoices with conflict target invoice_id. Only
	// authoritative and derived columns are in the write set; local-only
	// columns on existing rows are preserved.
	UpsertBatch(ctx context.Context, invoices []Invoice) error
	DeleteByIDs(ctx context.Context, invoiceIDs []int64) error

	// UpdateLocalFields mutates only the user-controlled columns of one row
	UpdateLocalFields(ctx context.Context, invoiceID int64, patch LocalFieldsPatch) error

	// CountMissingExternalID counts rows lacking a populated external ID,
	// the marker for the one-time migration bootstrap state.
	CountMissingExternalID(ctx context.Context) (int64, error)
}

// NoteRepository persists invoice notes
type NoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Note, error)
	FindByInvoice(ctx context.Context, invoiceID int64) ([]Note, error)
	Save(ctx context.Context, note *Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FollowUpRepository persists follow-ups
type FollowUpRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FollowUp, error)
	FindByInvoice(ctx context.Context, invoiceID int64) ([]FollowUp, error)
	FindOpen(ctx context.Context) ([]FollowUp, error)
	Save(ctx context.Context, followUp *FollowUp) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PropertyNoteRepository persists per-property notes with upsert semantics
type PropertyNoteRepository interface {
	FindByProperty(ctx context.Context, propertyName string) (*PropertyNote, error)
	Upsert(ctx context.Context, note *PropertyNote) error
	Delete(ctx context.Context, propertyName string) error
}

// SnapshotRepository persists monthly snapshots keyed by (date, region)
type SnapshotRepository interface {
	// Upsert overwrites any existing snapshot for the same (date, region)
	Upsert(ctx context.Context, snapshot *MonthlySnapshot) error
	FindByDateAndRegion(ctx context.Context, date time.Time, region Region) (*MonthlySnapshot, error)
	List(ctx context.Context, region Region) ([]MonthlySnapshot, error)
}

// SettingsRepository stores sync bookkeeping in a key-value settings table
type SettingsRepository interface {
	GetLastSyncAt(ctx context.Context) (*time.Time, error)
	SetLastSyncAt(ctx context.Context, at time.Time) error
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/ardash/backend/internal/domain/shared"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeSource struct {
	pages         [][]ledger.Invoice
	fetchedCounts map[int]int
	pageErrs      map[int]error
	contacts      map[int64]ledger.Contact
	contactErr    error
	pageCalls     int
	afterIDs      []int64
	contactCalls  [][]int64
}

func (f *fakeSource) FetchInvoicesPage(ctx context.Context, afterID int64, pageSize int) (ledger.InvoicePage, error) {
	call := f.pageCalls
	f.pageCalls++
	f.afterIDs = append(f.afterIDs, afterID)
	if err, ok := f.pageErrs[call]; ok {
		return ledger.InvoicePage{}, err
	}
	if call >= len(f.pages) {
		return ledger.InvoicePage{}, nil
	}
	page := ledger.InvoicePage{Invoices: f.pages[call], FetchedCount: len(f.pages[call])}
	if n, ok := f.fetchedCounts[call]; ok {
		page.FetchedCount = n
	}
	return page, nil
}

func (f *fakeSource) FetchContacts(ctx context.Context, contactIDs []int64) (map[int64]ledger.Contact, error) {
	f.contactCalls = append(f.contactCalls, contactIDs)
	if f.contactErr != nil {
		return nil, f.contactErr
	}
	result := make(map[int64]ledger.Contact)
	for _, id := range contactIDs {
		if c, ok := f.contacts[id]; ok {
			result[id] = c
		}
	}
	return result, nil
}

type fakeInvoiceRepo struct {
	invoices    map[int64]ledger.Invoice
	missingIDs  int64
	upsertErr   error
	upsertCalls int
	deleted     []int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[int64]ledger.Invoice)}
}

func (f *fakeInvoiceRepo) FindAll(ctx context.Context) ([]ledger.Invoice, error) {
	result := make([]ledger.Invoice, 0, len(f.invoices))
	for _, inv := range f.invoices {
		result = append(result, inv)
	}
	return result, nil
}

func (f *fakeInvoiceRepo) FindByID(ctx context.Context, invoiceID int64) (*ledger.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &inv, nil
}

func (f *fakeInvoiceRepo) UpsertBatch(ctx context.Context, invoices []ledger.Invoice) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, inv := range invoices {
		existing, ok := f.invoices[inv.InvoiceID]
		if ok {
			// Local fields survive upserts
			inv.Ghosting = existing.Ghosting
			inv.Terminated = existing.Terminated
			inv.PaymentStatus = existing.PaymentStatus
			inv.Comments = existing.Comments
		}
		f.invoices[inv.InvoiceID] = inv
	}
	return nil
}

func (f *fakeInvoiceRepo) DeleteByIDs(ctx context.Context, invoiceIDs []int64) error {
	for _, id := range invoiceIDs {
		delete(f.invoices, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

func (f *fakeInvoiceRepo) UpdateLocalFields(ctx context.Context, invoiceID int64, patch ledger.LocalFieldsPatch) error {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return shared.ErrNotFound
	}
	if patch.Ghosting != nil {
		inv.Ghosting = *patch.Ghosting
	}
	if patch.Terminated != nil {
		inv.Terminated = *patch.Terminated
	}
	if patch.PaymentStatus != nil {
		inv.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Comments != nil {
		inv.Comments = *patch.Comments
	}
	f.invoices[invoiceID] = inv
	return nil
}

func (f *fakeInvoiceRepo) CountMissingExternalID(ctx context.Context) (int64, error) {
	return f.missingIDs, nil
}

type fakeSettingsRepo struct {
	lastSyncAt *time.Time
}

func (f *fakeSettingsRepo) GetLastSyncAt(ctx context.Context) (*time.Time, error) {
	return f.lastSyncAt, nil
}

func (f *fakeSettingsRepo) SetLastSyncAt(ctx context.Context, at time.Time) error {
	f.lastSyncAt = &at
	return nil
}

type fakeLocker struct {
	locked   bool
	acquires int
	releases int
}

func (f *fakeLocker) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	f.acquires++
	if f.locked {
		return "", false, nil
	}
	f.locked = true
	return "lock-token", true, nil
}

func (f *fakeLocker) Release(ctx context.Context, token string) error {
	f.releases++
	f.locked = false
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func sourceInvoice(id int64, remaining float64, dueDaysAgo int) ledger.Invoice {
	due := time.Now().UTC().AddDate(0, 0, -dueDaysAgo)
	return ledger.Invoice{
		InvoiceID:       id,
		InvoiceNumber:   fmt.Sprintf("INV-%d", id),
		CompanyName:     "Test Co",
		AmountRemaining: decimal.NewFromFloat(remaining),
		DueDate:         &due,
	}
}

func newTestSyncService(source *fakeSource, repo *fakeInvoiceRepo, settings *fakeSettingsRepo, locker *fakeLocker, cfg SyncConfig) *SyncService {
	return NewSyncService(source, repo, settings, locker, cfg)
}

// =============================================================================
// Tests
// =============================================================================

func TestSyncService_Sync(t *testing.T) {
	t.Run("full sync pages until short page and records sync time", func(t *testing.T) {
		source := &fakeSource{
			pages: [][]ledger.Invoice{
				{sourceInvoice(1, 100, 10), sourceInvoice(2, 200, 45)},
				{sourceInvoice(3, 300, 0)},
			},
		}
		repo := newFakeInvoiceRepo()
		settings := &fakeSettingsRepo{}
		locker := &fakeLocker{}

		svc := newTestSyncService(source, repo, settings, locker, SyncConfig{PageSize: 2})
		result, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, result.Upserted)
		assert.Equal(t, 0, result.Deleted)
		assert.False(t, result.Truncated)
		assert.False(t, result.Bootstrap)
		assert.Len(t, repo.invoices, 3)
		require.NotNil(t, settings.lastSyncAt)
		assert.Equal(t, 1, locker.releases)
		// Cursor advances to the last-seen external ID between pages
		assert.Equal(t, []int64{0, 2}, source.afterIDs)

		// Derived fields were computed during reconciliation
		stored := repo.invoices[2]
		assert.Equal(t, 45, stored.PastDueDays)
		assert.Equal(t, ledger.Bucket31To60, stored.AgingBucket)
	})

	t.Run("invoices absent upstream are deleted", func(t *testing.T) {
		source := &fakeSource{
			pages: [][]ledger.Invoice{{sourceInvoice(1, 100, 5)}},
		}
		repo := newFakeInvoiceRepo()
		repo.invoices[1] = sourceInvoice(1, 100, 5)
		repo.invoices[99] = sourceInvoice(99, 500, 80)

		svc := newTestSyncService(source, repo, &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 10})
		result, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Deleted)
		assert.Equal(t, []int64{99}, repo.deleted)
		assert.NotContains(t, repo.invoices, int64(99))
	})

	t.Run("bootstrap state suppresses deletes", func(t *testing.T) {
		source := &fakeSource{
			pages: [][]ledger.Invoice{{sourceInvoice(1, 100, 5)}},
		}
		repo := newFakeInvoiceRepo()
		repo.invoices[99] = sourceInvoice(99, 500, 80)
		repo.missingIDs = 12

		svc := newTestSyncService(source, repo, &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 10})
		result, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.True(t, result.Bootstrap)
		assert.Equal(t, 0, result.Deleted)
		assert.Contains(t, repo.invoices, int64(99))
	})

	t.Run("concurrent run is rejected", func(t *testing.T) {
		locker := &fakeLocker{locked: true}
		svc := newTestSyncService(&fakeSource{}, newFakeInvoiceRepo(), &fakeSettingsRepo{}, locker, SyncConfig{})

		_, err := svc.Sync(context.Background())

		assert.ErrorIs(t, err, shared.ErrSyncInProgress)
		assert.Equal(t, 0, locker.releases)
	})

	t.Run("first page failure aborts the run", func(t *testing.T) {
		source := &fakeSource{
			pageErrs: map[int]error{0: fmt.Errorf("%w: HTTP 502", ledger.ErrSourceUnavailable)},
		}
		repo := newFakeInvoiceRepo()
		settings := &fakeSettingsRepo{}
		locker := &fakeLocker{}

		svc := newTestSyncService(source, repo, settings, locker, SyncConfig{})
		_, err := svc.Sync(context.Background())

		require.Error(t, err)
		assert.Nil(t, settings.lastSyncAt)
		assert.Equal(t, 0, repo.upsertCalls)
		// Lock is always released
		assert.Equal(t, 1, locker.releases)
	})

	t.Run("mid-pagination failure degrades to partial sync without deletes", func(t *testing.T) {
		source := &fakeSource{
			pages: [][]ledger.Invoice{
				{sourceInvoice(1, 100, 5), sourceInvoice(2, 200, 5)},
			},
			pageErrs: map[int]error{1: fmt.Errorf("%w: timeout", ledger.ErrSourceUnavailable)},
		}
		repo := newFakeInvoiceRepo()
		repo.invoices[99] = sourceInvoice(99, 500, 80)

		svc := newTestSyncService(source, repo, &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 2})
		result, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, 2, result.Upserted)
		// Invoice 99 may simply be beyond the fetched pages
		assert.Equal(t, 0, result.Deleted)
		assert.Contains(t, repo.invoices, int64(99))
	})

	t.Run("dropped upstream rows do not end pagination early", func(t *testing.T) {
		// Page 0 came back full upstream but one row was unmappable, so
		// only one invoice survived. The paginator must keep going and
		// reach invoice 99 on the next page instead of deleting it.
		source := &fakeSource{
			pages: [][]ledger.Invoice{
				{sourceInvoice(1, 100, 5)},
				{sourceInvoice(99, 500, 80)},
			},
			fetchedCounts: map[int]int{0: 2},
		}
		repo := newFakeInvoiceRepo()
		repo.invoices[99] = sourceInvoice(99, 500, 80)

		svc := newTestSyncService(source, repo, &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 2})
		result, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, source.pageCalls)
		assert.False(t, result.Truncated)
		assert.Equal(t, 0, result.Deleted)
		assert.Contains(t, repo.invoices, int64(99))
	})

	t.Run("full page with no mirrorable rows truncates without deletes", func(t *testing.T) {
		source := &fakeSource{
			pages:         [][]ledger.Invoice{{sourceInvoice(1, 100, 5), sourceInvoice(2, 200, 5)}, nil},
			fetchedCounts: map[int]int{1: 2},
		}
		repo := newFakeInvoiceRepo()
		repo.invoices[99] = sourceInvoice(99, 500, 80)

		svc := newTestSyncService(source, repo, &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 2})
		result, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, 0, result.Deleted)
		assert.Contains(t, repo.invoices, int64(99))
	})

	t.Run("page ceiling truncates the fetch", func(t *testing.T) {
		source := &fakeSource{
			pages: [][]ledger.Invoice{
				{sourceInvoice(1, 100, 5), sourceInvoice(2, 200, 5)},
				{sourceInvoice(3, 300, 5), sourceInvoice(4, 400, 5)},
			},
		}
		svc := newTestSyncService(source, newFakeInvoiceRepo(), &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 2, MaxPages: 1})
		result, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, 2, result.Upserted)
		assert.Equal(t, 1, source.pageCalls)
	})

	t.Run("upsert failure aborts and names the batch", func(t *testing.T) {
		source := &fakeSource{
			pages: [][]ledger.Invoice{{sourceInvoice(1, 100, 5), sourceInvoice(2, 200, 5)}},
		}
		repo := newFakeInvoiceRepo()
		repo.upsertErr = errors.New("connection lost")
		settings := &fakeSettingsRepo{}

		svc := newTestSyncService(source, repo, settings, &fakeLocker{}, SyncConfig{PageSize: 10, UpsertBatchSize: 1})
		_, err := svc.Sync(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch 0-0")
		assert.Nil(t, settings.lastSyncAt)
	})

	t.Run("upserts are split into configured batches", func(t *testing.T) {
		source := &fakeSource{
			pages: [][]ledger.Invoice{{
				sourceInvoice(1, 100, 5), sourceInvoice(2, 200, 5), sourceInvoice(3, 300, 5),
			}},
		}
		repo := newFakeInvoiceRepo()

		svc := newTestSyncService(source, repo, &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 10, UpsertBatchSize: 2})
		_, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, repo.upsertCalls)
	})
}

func TestSyncService_ContactEnrichment(t *testing.T) {
	t.Run("contact and billing contact fields are populated", func(t *testing.T) {
		inv := sourceInvoice(1, 100, 5)
		inv.ContactID = 7
		inv.BillingContactID = 8

		source := &fakeSource{
			pages: [][]ledger.Invoice{{inv}},
			contacts: map[int64]ledger.Contact{
				7: {ContactID: 7, Name: "Jane Doe", Email: "jane@acme.com"},
				8: {ContactID: 8, Name: "Bill Payer", Email: "ap@acme.com"},
			},
		}
		repo := newFakeInvoiceRepo()

		svc := newTestSyncService(source, repo, &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 10})
		_, err := svc.Sync(context.Background())

		require.NoError(t, err)
		stored := repo.invoices[1]
		assert.Equal(t, "Jane Doe", stored.ContactName)
		assert.Equal(t, "jane@acme.com", stored.ContactEmail)
		assert.Equal(t, "Bill Payer", stored.BillingContactName)
		assert.Equal(t, "ap@acme.com", stored.BillingContactEmail)
	})

	t.Run("enrichment failure leaves blanks but does not fail the sync", func(t *testing.T) {
		inv := sourceInvoice(1, 100, 5)
		inv.ContactID = 7

		source := &fakeSource{
			pages:      [][]ledger.Invoice{{inv}},
			contactErr: errors.New("contact endpoint down"),
		}
		repo := newFakeInvoiceRepo()

		svc := newTestSyncService(source, repo, &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 10})
		result, err := svc.Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Upserted)
		assert.Empty(t, repo.invoices[1].ContactName)
	})

	t.Run("contact IDs are deduplicated and batched", func(t *testing.T) {
		a := sourceInvoice(1, 100, 5)
		a.ContactID = 7
		b := sourceInvoice(2, 200, 5)
		b.ContactID = 7
		b.BillingContactID = 8

		source := &fakeSource{
			pages:    [][]ledger.Invoice{{a, b}},
			contacts: map[int64]ledger.Contact{},
		}

		svc := newTestSyncService(source, newFakeInvoiceRepo(), &fakeSettingsRepo{}, &fakeLocker{}, SyncConfig{PageSize: 10, ContactBatchSize: 1})
		_, err := svc.Sync(context.Background())

		require.NoError(t, err)
		// Two distinct IDs with batch size one means exactly two batches
		assert.Len(t, source.contactCalls, 2)
	})
}

func TestSyncService_Status(t *testing.T) {
	settings := &fakeSettingsRepo{}
	svc := newTestSyncService(&fakeSource{}, newFakeInvoiceRepo(), settings, &fakeLocker{}, SyncConfig{})

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status.LastSyncAt)

	at := time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)
	settings.lastSyncAt = &at

	status, err = svc.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.LastSyncAt)
	assert.Equal(t, at, *status.LastSyncAt)
}

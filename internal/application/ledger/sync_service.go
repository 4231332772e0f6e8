// Package ledger provides application-level operations over the mirrored
// accounts-receivable record set.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/ardash/backend/internal/domain/shared"
)

// SyncConfig tunes the sync pipeline
type SyncConfig struct {
	PageSize          int
	MaxPages          int
	ContactBatchSize  int
	ContactBatchDelay time.Duration
	UpsertBatchSize   int
	LockTTL           time.Duration
}

// applyDefaults fills zero values with safe operating defaults
func (c *SyncConfig) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = 500
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 40
	}
	if c.ContactBatchSize <= 0 {
		c.ContactBatchSize = 50
	}
	if c.UpsertBatchSize <= 0 {
		c.UpsertBatchSize = 200
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 10 * time.Minute
	}
}

// SyncResult summarizes one completed sync run
type SyncResult struct {
	Upserted  int       `json:"upserted"`
	Deleted   int       `json:"deleted"`
	Truncated bool      `json:"truncated"`
	Bootstrap bool      `json:"bootstrap"`
	SyncedAt  time.Time `json:"synced_at"`
}

// SyncStatus reports sync bookkeeping for the status endpoint
type SyncStatus struct {
	LastSyncAt *time.Time `json:"last_sync_at"`
}

// SyncService orchestrates the pull-reconcile-write pipeline that mirrors
// outstanding invoices from the upstream invoicing system.
type SyncService struct {
	source       ledger.InvoiceSource
	invoiceRepo  ledger.InvoiceRepository
	settingsRepo ledger.SettingsRepository
	locker       shared.SyncLocker
	config       SyncConfig
	logger       *zap.Logger
	now          func() time.Time
}

// SyncServiceOption is a functional option for configuring SyncService
type SyncServiceOption func(*SyncService)

// WithSyncLogger sets a custom logger for SyncService
func WithSyncLogger(logger *zap.Logger) SyncServiceOption {
	return func(s *SyncService) {
		s.logger = logger
	}
}

// WithClock overrides the time source, used by tests
func WithClock(now func() time.Time) SyncServiceOption {
	return func(s *SyncService) {
		s.now = now
	}
}

// NewSyncService creates a new SyncService
func NewSyncService(
	source ledger.InvoiceSource,
	invoiceRepo ledger.InvoiceRepository,
	settingsRepo ledger.SettingsRepository,
	locker shared.SyncLocker,
	config SyncConfig,
	opts ...SyncServiceOption,
) *SyncService {
	config.applyDefaults()
	s := &SyncService{
		source:       source,
		invoiceRepo:  invoiceRepo,
		settingsRepo: settingsRepo,
		locker:       locker,
		config:       config,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync runs one full sync: fetch all outstanding invoices from the upstream
// system, enrich them with contact data, reconcile against the stored mirror
// and write the result. Concurrent runs are rejected with ErrSyncInProgress.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	lockToken, acquired, err := s.locker.Acquire(ctx, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !acquired {
		return nil, shared.ErrSyncInProgress
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockToken); err != nil {
			s.logger.Warn("Failed to release sync lock", zap.Error(err))
		}
	}()

	asOf := s.now().UTC()

	fresh, complete, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Fetched invoices from upstream",
		zap.Int("count", len(fresh)),
		zap.Bool("complete", complete),
	)

	s.enrichContacts(ctx, fresh)

	existing, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored invoices: %w", err)
	}

	missing, err := s.invoiceRepo.CountMissingExternalID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check bootstrap state: %w", err)
	}
	bootstrap := missing > 0
	if bootstrap {
		s.logger.Info("Bootstrap state detected, deletes suppressed",
			zap.Int64("rows_missing_external_id", missing))
	}

	result := ledger.Reconcile(existing, fresh, asOf, bootstrap)

	// An incomplete fetch cannot prove absence, so deletes are dropped
	if !complete && len(result.DeleteIDs) > 0 {
		s.logger.Warn("Fetch was incomplete, suppressing deletes",
			zap.Int("suppressed", len(result.DeleteIDs)))
		result.DeleteIDs = nil
	}

	if err := s.invoiceRepo.DeleteByIDs(ctx, result.DeleteIDs); err != nil {
		return nil, fmt.Errorf("failed to delete paid-off invoices: %w", err)
	}

	for start := 0; start < len(result.Upserts); start += s.config.UpsertBatchSize {
		end := start + s.config.UpsertBatchSize
		if end > len(result.Upserts) {
			end = len(result.Upserts)
		}
		if err := s.invoiceRepo.UpsertBatch(ctx, result.Upserts[start:end]); err != nil {
			return nil, fmt.Errorf("failed to upsert invoice batch %d-%d: %w", start, end-1, err)
		}
	}

	if err := s.settingsRepo.SetLastSyncAt(ctx, asOf); err != nil {
		return nil, fmt.Errorf("failed to record sync time: %w", err)
	}

	s.logger.Info("Sync completed",
		zap.Int("upserted", len(result.Upserts)),
		zap.Int("deleted", len(result.DeleteIDs)),
		zap.Bool("truncated", !complete),
	)

	return &SyncResult{
		Upserted:  len(result.Upserts),
		Deleted:   len(result.DeleteIDs),
		Truncated: !complete,
		Bootstrap: bootstrap,
		SyncedAt:  asOf,
	}, nil
}

// Status returns the last completed sync time
func (s *SyncService) Status(ctx context.Context) (*SyncStatus, error) {
	lastSyncAt, err := s.settingsRepo.GetLastSyncAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync status: %w", err)
	}
	return &SyncStatus{LastSyncAt: lastSyncAt}, nil
}

// fetchAll pages through the upstream invoice list using the external ID as
// cursor. It returns complete=false when pagination was cut short: the page
// ceiling was hit, a transient upstream failure followed at least one good
// page, or a full page had no rows to advance the cursor from.
func (s *SyncService) fetchAll(ctx context.Context) ([]ledger.Invoice, bool, error) {
	var all []ledger.Invoice
	var afterID int64

	for page := 0; page < s.config.MaxPages; page++ {
		batch, err := s.source.FetchInvoicesPage(ctx, afterID, s.config.PageSize)
		if err != nil {
			// A transient failure mid-pagination degrades to a partial
			// sync of the pages already fetched. A failure on the first
			// page means nothing was fetched and the run aborts.
			if errors.Is(err, ledger.ErrSourceUnavailable) && len(all) > 0 {
				s.logger.Warn("Upstream became unavailable mid-fetch",
					zap.Int("pages_fetched", page),
					zap.Error(err))
				return all, false, nil
			}
			return nil, false, fmt.Errorf("failed to fetch invoices: %w", err)
		}

		all = append(all, batch.Invoices...)

		// Completion is judged on the raw upstream row count, not on how
		// many rows survived parsing. A full page that lost rows to
		// client-side filtering must still advance the cursor.
		if batch.FetchedCount < s.config.PageSize {
			return all, true, nil
		}
		if len(batch.Invoices) == 0 {
			// A full page of unmappable rows leaves no cursor to advance
			// from. The fetch stays truncated so deletes are suppressed.
			s.logger.Warn("Full page yielded no mirrorable invoices, fetch truncated",
				zap.Int64("after_id", afterID),
				zap.Int("fetched", batch.FetchedCount))
			return all, false, nil
		}
		afterID = batch.Invoices[len(batch.Invoices)-1].InvoiceID
	}

	s.logger.Warn("Page ceiling reached, fetch truncated",
		zap.Int("max_pages", s.config.MaxPages),
		zap.Int("count", len(all)))
	return all, false, nil
}

// enrichContacts resolves contact and billing contact IDs to names and email
// addresses. Enrichment is best-effort: a failed batch leaves its invoices
// with blank contact fields rather than failing the sync.
func (s *SyncService) enrichContacts(ctx context.Context, invoices []ledger.Invoice) {
	idSet := make(map[int64]struct{})
	for i := range invoices {
		if invoices[i].ContactID > 0 {
			idSet[invoices[i].ContactID] = struct{}{}
		}
		if invoices[i].BillingContactID > 0 {
			idSet[invoices[i].BillingContactID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return
	}

	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	contacts := make(map[int64]ledger.Contact, len(ids))
	for start := 0; start < len(ids); start += s.config.ContactBatchSize {
		if start > 0 && s.config.ContactBatchDelay > 0 {
			select {
			case <-ctx.Done():
				s.logger.Warn("Contact enrichment cancelled", zap.Error(ctx.Err()))
				return
			case <-time.After(s.config.ContactBatchDelay):
			}
		}

		end := start + s.config.ContactBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := s.source.FetchContacts(ctx, ids[start:end])
		if err != nil {
			s.logger.Warn("Contact batch failed, continuing without enrichment",
				zap.Int("batch_start", start),
				zap.Error(err))
			continue
		}
		for id, c := range batch {
			contacts[id] = c
		}
	}

	for i := range invoices {
		if c, ok := contacts[invoices[i].ContactID]; ok {
			invoices[i].ContactName = c.Name
			invoices[i].ContactEmail = c.Email
		}
		if c, ok := contacts[invoices[i].BillingContactID]; ok {
			invoices[i].BillingContactName = c.Name
			invoices[i].BillingContactEmail = c.Email
		}
	}
}

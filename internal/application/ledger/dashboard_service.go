package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ardash/backend/internal/domain/ledger"
)

// DashboardService serves the read-side aggregate views over the mirrored
// invoice set. All aggregation happens in memory: the mirror holds only
// outstanding invoices, so the working set stays small.
type DashboardService struct {
	invoiceRepo  ledger.InvoiceRepository
	snapshotRepo ledger.SnapshotRepository
	logger       *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	invoiceRepo ledger.InvoiceRepository,
	snapshotRepo ledger.SnapshotRepository,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		invoiceRepo:  invoiceRepo,
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// Summary aggregates the record set into per-bucket counts and dollar values,
// optionally scoped to a region.
func (s *DashboardService) Summary(ctx context.Context, regionStr string) (map[ledger.BucketID]ledger.BucketSummary, error) {
	region, err := ledger.ParseRegion(regionStr)
	if err != nil {
		return nil, err
	}

	records, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	return ledger.Summarize(records, region), nil
}

// Breakdown groups the region-scoped record set by company or property
func (s *DashboardService) Breakdown(ctx context.Context, regionStr, keyStr, orderStr string) ([]ledger.GroupBreakdown, error) {
	region, err := ledger.ParseRegion(regionStr)
	if err != nil {
		return nil, err
	}
	key, err := ledger.ParseGroupKey(keyStr)
	if err != nil {
		return nil, err
	}
	order, err := ledger.ParseSortOrder(orderStr)
	if err != nil {
		return nil, err
	}

	records, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	return ledger.Breakdown(ledger.FilterByRegion(records, region), key, order), nil
}

// FilterValues returns the distinct filterable values in the region-scoped
// record set, for populating dropdown controls.
func (s *DashboardService) FilterValues(ctx context.Context, regionStr string) (*ledger.FilterValues, error) {
	region, err := ledger.ParseRegion(regionStr)
	if err != nil {
		return nil, err
	}

	records, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	values := ledger.DistinctFilterValues(records, region)
	return &values, nil
}

// InvoiceListFilter narrows the invoice list. Zero values mean "no filter";
// the bucket filter takes a summary bucket ID such as "1-30" or "current".
type InvoiceListFilter struct {
	Region   string `form:"region"`
	Company  string `form:"company"`
	Property string `form:"property"`
	Branch   string `form:"branch"`
	Bucket   string `form:"bucket"`
	Search   string `form:"search"`
}

// ListInvoices returns the invoices matching the filter
func (s *DashboardService) ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]ledger.Invoice, error) {
	region, err := ledger.ParseRegion(filter.Region)
	if err != nil {
		return nil, err
	}

	records, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	result := make([]ledger.Invoice, 0, len(records))
	for _, inv := range records {
		if !region.Matches(inv.BranchName) {
			continue
		}
		if filter.Company != "" && inv.CompanyName != filter.Company {
			continue
		}
		if filter.Property != "" && inv.PropertyName != filter.Property {
			continue
		}
		if filter.Branch != "" && inv.BranchName != filter.Branch {
			continue
		}
		if filter.Bucket != "" && filter.Bucket != string(ledger.SummaryAll) {
			if string(ledger.SummaryBucketID(inv.AgingBucket)) != filter.Bucket {
				continue
			}
		}
		if filter.Search != "" && !matchesSearch(inv, filter.Search) {
			continue
		}
		result = append(result, inv)
	}

	return result, nil
}

// matchesSearch does a case-insensitive substring match across the fields a
// collector would search by.
func matchesSearch(inv ledger.Invoice, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{
		inv.InvoiceNumber,
		inv.CompanyName,
		inv.PropertyName,
		inv.OpportunityName,
		inv.ContactName,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// GetInvoice returns one invoice by its external ID
func (s *DashboardService) GetInvoice(ctx context.Context, invoiceID int64) (*ledger.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, invoiceID)
}

// CreateSnapshot aggregates the current record set into a snapshot for the
// given date and region and persists it, overwriting any snapshot already
// stored for the same (date, region).
func (s *DashboardService) CreateSnapshot(ctx context.Context, regionStr string, date time.Time, createdBy string) (*ledger.MonthlySnapshot, error) {
	region, err := ledger.ParseRegion(regionStr)
	if err != nil {
		return nil, err
	}

	records, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	snapshot := ledger.BuildSnapshot(records, region, date, createdBy)
	if err := s.snapshotRepo.Upsert(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.logger.Info("Snapshot created",
		zap.String("region", region.String()),
		zap.Time("date", snapshot.SnapshotDate),
		zap.String("created_by", createdBy),
	)

	return &snapshot, nil
}

// ListSnapshots returns the stored snapshots for a region, newest first
func (s *DashboardService) ListSnapshots(ctx context.Context, regionStr string) ([]ledger.MonthlySnapshot, error) {
	region, err := ledger.ParseRegion(regionStr)
	if err != nil {
		return nil, err
	}
	return s.snapshotRepo.List(ctx, region)
}

// GetSnapshot returns the snapshot stored for one (date, region) pair
func (s *DashboardService) GetSnapshot(ctx context.Context, date time.Time, regionStr string) (*ledger.MonthlySnapshot, error) {
	region, err := ledger.ParseRegion(regionStr)
	if err != nil {
		return nil, err
	}
	return s.snapshotRepo.FindByDateAndRegion(ctx, date, region)
}

package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotTopCompanies caps the company breakdown stored with a snapshot
const SnapshotTopCompanies = 20

// CompanyBreakdownEntry is one company row captured inside a snapshot
type CompanyBreakdownEntry struct {
	CompanyName string          `json:"company_name"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
}

// CompanyBreakdownList is stored as a JSONB column on the snapshot row
type CompanyBreakdownList []CompanyBreakdownEntry

// Value implements driver.Valuer for GORM to store as JSONB
func (l CompanyBreakdownList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (l *CompanyBreakdownList) Scan(value interface{}) error {
	if value == nil {
		*l = CompanyBreakdownList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan CompanyBreakdownList: unsupported type")
	}

	if len(bytes) == 0 {
		*l = CompanyBreakdownList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// MonthlySnapshot is a point-in-time aggregate of outstanding invoices for one
// region. Snapshots are immutable once written: re-creating one for the same
// (date, region) pair overwrites the row via upsert rather than duplicating
// or mutating individual fields.
type MonthlySnapshot struct {
	SnapshotDate     time.Time            `json:"snapshot_date"`
	Region           Region               `json:"region"`
	TotalOutstanding decimal.Decimal      `json:"total_outstanding"`
	InvoiceCount     int                  `json:"invoice_count"`
	BucketTotals     BucketAmounts        `json:"bucket_totals"`
	BucketCounts     BucketCounts         `json:"bucket_counts"`
	CompanyBreakdown CompanyBreakdownList `json:"company_breakdown"`
	CreatedBy        string               `json:"created_by"`
	CreatedAt        time.Time            `json:"created_at"`
}

// BuildSnapshot aggregates the region-filtered record set into a snapshot for
// the given date. The company breakdown is total-sorted and truncated to the
// top SnapshotTopCompanies entries.
func BuildSnapshot(records []Invoice, region Region, date time.Time, createdBy string) MonthlySnapshot {
	filtered := FilterByRegion(records, region)

	snap := MonthlySnapshot{
		SnapshotDate:     truncateToDay(date),
		Region:           region,
		TotalOutstanding: decimal.Zero,
		CreatedBy:        createdBy,
	}

	for _, inv := range filtered {
		snap.TotalOutstanding = snap.TotalOutstanding.Add(inv.AmountRemaining)
		snap.InvoiceCount++
		snap.BucketTotals = snap.BucketTotals.Add(inv.Aging)
		if inv.Aging.ForBucket(inv.AgingBucket).IsPositive() {
			snap.BucketCounts.Increment(inv.AgingBucket)
		}
	}

	companies := Breakdown(filtered, GroupByCompany, SortByTotal)
	if len(companies) > SnapshotTopCompanies {
		companies = companies[:SnapshotTopCompanies]
	}
	snap.CompanyBreakdown = make(CompanyBreakdownList, len(companies))
	for i, c := range companies {
		snap.CompanyBreakdown[i] = CompanyBreakdownEntry{
			CompanyName: c.Key,
			Total:       c.Total,
			Count:       c.Count,
		}
	}

	return snap
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

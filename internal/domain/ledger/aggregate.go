package ledger

import (
	"sort"

	"github.com/ardash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BucketID identifies a summary bucket. It covers every aging bucket plus the
// synthetic "all" bucket that every record contributes to.
type BucketID string

const (
	SummaryAll     BucketID = "all"
	SummaryCurrent BucketID = "current"
	Summary1To30   BucketID = "1-30"
	Summary31To60  BucketID = "31-60"
	Summary61To90  BucketID = "61-90"
	Summary91To120 BucketID = "91-120"
	Summary121Plus BucketID = "121+"
)

// SummaryBucketID maps an aging bucket onto its summary bucket ID
func SummaryBucketID(b AgingBucket) BucketID {
	if b == BucketCurrent {
		return SummaryCurrent
	}
	return BucketID(b)
}

// BucketSummary is the count and dollar value accumulated into one bucket
type BucketSummary struct {
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// Summarize aggregates records into per-bucket counts and values, optionally
// scoped to a region.
//
// Every record passing the region filter counts into the "all" bucket using
// its remaining amount. A record contributes to exactly one specific bucket
// (its bucket amount partition has a single non-zero field), and only when
// that amount is positive, so fully paid records never inflate bucket counts.
// The per-bucket values in the result always sum to the "all" value.
func Summarize(records []Invoice, region Region) map[BucketID]BucketSummary {
	summary := make(map[BucketID]BucketSummary, len(AllBuckets)+1)
	summary[SummaryAll] = BucketSummary{Value: decimal.Zero}
	for _, b := range AllBuckets {
		summary[SummaryBucketID(b)] = BucketSummary{Value: decimal.Zero}
	}

	for _, inv := range records {
		if !region.Matches(inv.BranchName) {
			continue
		}

		all := summary[SummaryAll]
		all.Count++
		all.Value = all.Value.Add(inv.AmountRemaining)
		summary[SummaryAll] = all

		for _, b := range AllBuckets {
			amount := inv.Aging.ForBucket(b)
			if !amount.IsPositive() {
				continue
			}
			id := SummaryBucketID(b)
			s := summary[id]
			s.Count++
			s.Value = s.Value.Add(amount)
			summary[id] = s
		}
	}

	return summary
}

// GroupKey selects the field invoices are grouped by in a breakdown
type GroupKey string

const (
	GroupByCompany  GroupKey = "company"
	GroupByProperty GroupKey = "property"
)

// IsValid checks if the group key is known
func (k GroupKey) IsValid() bool {
	return k == GroupByCompany || k == GroupByProperty
}

// ParseGroupKey validates a group key string
func ParseGroupKey(s string) (GroupKey, error) {
	k := GroupKey(s)
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_GROUP_KEY", "Group key must be one of: company, property")
	}
	return k, nil
}

// SortOrder selects how breakdown rows are ordered
type SortOrder string

const (
	SortByTotal SortOrder = "total"
	SortByCount SortOrder = "count"
)

// IsValid checks if the sort order is known
func (o SortOrder) IsValid() bool {
	return o == SortByTotal || o == SortByCount
}

// ParseSortOrder validates a sort order string, defaulting to total
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortByTotal, nil
	}
	o := SortOrder(s)
	if !o.IsValid() {
		return "", shared.NewDomainError("INVALID_SORT_ORDER", "Sort order must be one of: total, count")
	}
	return o, nil
}

// GroupBreakdown is one row of a per-company or per-property breakdown table
type GroupBreakdown struct {
	Key           string          `json:"key"`
	Total         decimal.Decimal `json:"total"`
	Count         int             `json:"count"`
	Amounts       BucketAmounts   `json:"amounts"`
	Counts        BucketCounts    `json:"counts"`
	HasGhosting   bool            `json:"has_ghosting"`
	HasTerminated bool            `json:"has_terminated"`
}

// Breakdown groups records by company or property name and accumulates totals,
// per-bucket amounts and counts, and OR-reduced status flags per group.
//
// Records with an empty property name are skipped when grouping by property;
// company and property names are grouping keys, not foreign keys, so no
// referential lookup is involved. Rows are sorted by the requested order
// descending with the group key ascending as a tie break, keeping output
// deterministic for equal totals.
func Breakdown(records []Invoice, key GroupKey, order SortOrder) []GroupBreakdown {
	groups := make(map[string]*GroupBreakdown)

	for _, inv := range records {
		groupKey := inv.CompanyName
		if key == GroupByProperty {
			groupKey = inv.PropertyName
			if groupKey == "" {
				continue
			}
		}

		g, ok := groups[groupKey]
		if !ok {
			g = &GroupBreakdown{Key: groupKey, Total: decimal.Zero}
			groups[groupKey] = g
		}

		g.Total = g.Total.Add(inv.AmountRemaining)
		g.Count++
		g.Amounts = g.Amounts.Add(inv.Aging)
		if inv.Aging.ForBucket(inv.AgingBucket).IsPositive() {
			g.Counts.Increment(inv.AgingBucket)
		}
		g.HasGhosting = g.HasGhosting || inv.Ghosting
		g.HasTerminated = g.HasTerminated || inv.Terminated
	}

	rows := make([]GroupBreakdown, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, *g)
	}

	sort.Slice(rows, func(i, j int) bool {
		switch order {
		case SortByCount:
			if rows[i].Count != rows[j].Count {
				return rows[i].Count > rows[j].Count
			}
		default:
			if !rows[i].Total.Equal(rows[j].Total) {
				return rows[i].Total.GreaterThan(rows[j].Total)
			}
		}
		return rows[i].Key < rows[j].Key
	})

	return rows
}

// FilterValues holds the distinct grouping values present in a record set,
// for the presentation layer to populate filter controls. Reset policy when a
// selected value disappears is the caller's concern.
type FilterValues struct {
	Companies  []string `json:"companies"`
	Properties []string `json:"properties"`
	Branches   []string `json:"branches"`
}

// DistinctFilterValues collects the sorted distinct company, property and
// branch names in the region-filtered record set. Empty values are omitted.
func DistinctFilterValues(records []Invoice, region Region) FilterValues {
	companies := make(map[string]struct{})
	properties := make(map[string]struct{})
	branches := make(map[string]struct{})

	for _, inv := range records {
		if !region.Matches(inv.BranchName) {
			continue
		}
		if inv.CompanyName != "" {
			companies[inv.CompanyName] = struct{}{}
		}
		if inv.PropertyName != "" {
			properties[inv.PropertyName] = struct{}{}
		}
		if inv.BranchName != "" {
			branches[inv.BranchName] = struct{}{}
		}
	}

	return FilterValues{
		Companies:  sortedKeys(companies),
		Properties: sortedKeys(properties),
		Branches:   sortedKeys(branches),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

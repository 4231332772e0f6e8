package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestClassify_NilDueDate(t *testing.T) {
	result := Classify(nil, dateUTC(2025, 6, 15))

	assert.Equal(t, 0, result.PastDueDays)
	assert.Equal(t, BucketCurrent, result.Bucket)
	assert.Equal(t, "Not Past Due", result.Category)
}

func TestClassify_BucketThresholds(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)

	tests := []struct {
		name     string
		daysAgo  int
		expected AgingBucket
	}{
		{"due today", 0, BucketCurrent},
		{"one day past due", 1, Bucket1To30},
		{"thirty days", 30, Bucket1To30},
		{"thirty-one days", 31, Bucket31To60},
		{"sixty days", 60, Bucket31To60},
		{"sixty-one days", 61, Bucket61To90},
		{"ninety days", 90, Bucket61To90},
		{"ninety-one days", 91, Bucket91To120},
		{"one-twenty days", 120, Bucket91To120},
		{"one-twenty-one days", 121, Bucket121Plus},
		{"one year", 365, Bucket121Plus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := asOf.AddDate(0, 0, -tt.daysAgo)
			result := Classify(&due, asOf)
			assert.Equal(t, tt.expected, result.Bucket)
			assert.Equal(t, tt.daysAgo, result.PastDueDays)
		})
	}
}

func TestClassify_FutureDueDateClampsToZero(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	due := asOf.AddDate(0, 0, 14)

	result := Classify(&due, asOf)

	assert.Equal(t, 0, result.PastDueDays)
	assert.Equal(t, BucketCurrent, result.Bucket)
}

func TestClassify_IgnoresTimeOfDayAndZone(t *testing.T) {
	loc, err := time.LoadLocation("America/Phoenix")
	require.NoError(t, err)

	// 45 calendar days apart in UTC terms regardless of local wall clocks
	due := time.Date(2025, 5, 1, 23, 59, 0, 0, time.UTC)
	asOf := time.Date(2025, 6, 15, 0, 1, 0, 0, loc)

	result := Classify(&due, asOf)

	assert.Equal(t, 45, result.PastDueDays)
	assert.Equal(t, Bucket31To60, result.Bucket)
}

func TestClassify_FortyFiveDaysScenario(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	due := asOf.AddDate(0, 0, -45)

	result := Classify(&due, asOf)

	assert.Equal(t, 45, result.PastDueDays)
	assert.Equal(t, Bucket31To60, result.Bucket)
	assert.Equal(t, "31-60 Days Past Due", result.Category)
}

func TestNewBucketAmounts_PartitionInvariant(t *testing.T) {
	remaining := decimal.NewFromFloat(1234.56)

	for _, bucket := range AllBuckets {
		t.Run(string(bucket), func(t *testing.T) {
			amounts := NewBucketAmounts(bucket, remaining)

			assert.True(t, amounts.Sum().Equal(remaining), "field sum must equal remaining")
			assert.True(t, amounts.ForBucket(bucket).Equal(remaining))

			nonZero := 0
			for _, b := range AllBuckets {
				if !amounts.ForBucket(b).IsZero() {
					nonZero++
				}
			}
			assert.Equal(t, 1, nonZero, "exactly one bucket field is non-zero")
		})
	}
}

func TestInvoice_ApplyAging(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	due := asOf.AddDate(0, 0, -45)
	inv := Invoice{
		InvoiceID:       1001,
		AmountRemaining: decimal.NewFromInt(500),
		DueDate:         &due,
	}

	inv.ApplyAging(asOf)

	assert.Equal(t, 45, inv.PastDueDays)
	assert.Equal(t, Bucket31To60, inv.AgingBucket)
	assert.True(t, inv.Aging.Days31To60.Equal(decimal.NewFromInt(500)))
	assert.True(t, inv.Aging.Days1To30.IsZero())
	assert.True(t, inv.Aging.Sum().Equal(inv.AmountRemaining))
	require.NoError(t, inv.Validate())
}

func TestInvoice_ApplyAgingRebuildsPartition(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	due := asOf.AddDate(0, 0, -10)
	inv := Invoice{
		InvoiceID:       1001,
		AmountRemaining: decimal.NewFromInt(500),
		DueDate:         &due,
		// Stale partition from a previous classification
		Aging: NewBucketAmounts(Bucket121Plus, decimal.NewFromInt(999)),
	}

	inv.ApplyAging(asOf)

	assert.True(t, inv.Aging.Days121Plus.IsZero())
	assert.True(t, inv.Aging.Days1To30.Equal(decimal.NewFromInt(500)))
}

package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingBucket classifies an invoice by how many days it is past due
type AgingBucket string

const (
	BucketCurrent  AgingBucket = "Current"
	Bucket1To30    AgingBucket = "1-30"
	Bucket31To60   AgingBucket = "31-60"
	Bucket61To90   AgingBucket = "61-90"
	Bucket91To120  AgingBucket = "91-120"
	Bucket121Plus  AgingBucket = "121+"
)

// AllBuckets lists every bucket in ascending age order
var AllBuckets = []AgingBucket{
	BucketCurrent,
	Bucket1To30,
	Bucket31To60,
	Bucket61To90,
	Bucket91To120,
	Bucket121Plus,
}

// IsValid checks if the bucket is a known AgingBucket
func (b AgingBucket) IsValid() bool {
	switch b {
	case BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, Bucket91To120, Bucket121Plus:
		return true
	}
	return false
}

// String returns the display label of the bucket
func (b AgingBucket) String() string {
	return string(b)
}

// Category returns the human-readable aging category for the bucket
func (b AgingBucket) Category() string {
	if b == BucketCurrent {
		return "Not Past Due"
	}
	return string(b) + " Days Past Due"
}

// AgingResult is the outcome of classifying a due date against a reference date
type AgingResult struct {
	PastDueDays int
	Bucket      AgingBucket
	Category    string
}

// Classify computes the past-due day count and aging bucket for a due date.
//
// The difference is taken on UTC calendar days only, so the wall-clock time and
// timezone of either input never change the result. A nil due date is a silent
// fallback to Current rather than an error: malformed upstream dates must not
// abort a sync. Due dates in the future clamp to zero days past due.
func Classify(dueDate *time.Time, asOf time.Time) AgingResult {
	if dueDate == nil {
		return AgingResult{PastDueDays: 0, Bucket: BucketCurrent, Category: BucketCurrent.Category()}
	}

	days := calendarDaysBetween(*dueDate, asOf)
	if days < 0 {
		days = 0
	}

	bucket := bucketForDays(days)
	return AgingResult{
		PastDueDays: days,
		Bucket:      bucket,
		Category:    bucket.Category(),
	}
}

// calendarDaysBetween returns the whole calendar days from a to b using UTC
// date components only.
func calendarDaysBetween(a, b time.Time) int {
	au := a.UTC()
	bu := b.UTC()
	aDay := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}

// bucketForDays maps a past-due day count onto its aging bucket.
// Day 0 is Current; each threshold uses a strict > comparison.
func bucketForDays(days int) AgingBucket {
	switch {
	case days > 120:
		return Bucket121Plus
	case days > 90:
		return Bucket91To120
	case days > 60:
		return Bucket61To90
	case days > 30:
		return Bucket31To60
	case days > 0:
		return Bucket1To30
	default:
		return BucketCurrent
	}
}

// BucketAmounts is the mutually-exclusive partition of an invoice's remaining
// amount across aging buckets. Exactly one field equals the remaining amount
// and the rest are zero, so the field sum always equals the remaining amount.
type BucketAmounts struct {
	Current     decimal.Decimal `json:"current"`
	Days1To30   decimal.Decimal `json:"aging_1_30"`
	Days31To60  decimal.Decimal `json:"aging_31_60"`
	Days61To90  decimal.Decimal `json:"aging_61_90"`
	Days91To120 decimal.Decimal `json:"aging_91_120"`
	Days121Plus decimal.Decimal `json:"aging_121_plus"`
}

// NewBucketAmounts builds the partition placing remaining into the given bucket
func NewBucketAmounts(bucket AgingBucket, remaining decimal.Decimal) BucketAmounts {
	var a BucketAmounts
	switch bucket {
	case Bucket1To30:
		a.Days1To30 = remaining
	case Bucket31To60:
		a.Days31To60 = remaining
	case Bucket61To90:
		a.Days61To90 = remaining
	case Bucket91To120:
		a.Days91To120 = remaining
	case Bucket121Plus:
		a.Days121Plus = remaining
	default:
		a.Current = remaining
	}
	return a
}

// ForBucket returns the amount assigned to the given bucket
func (a BucketAmounts) ForBucket(bucket AgingBucket) decimal.Decimal {
	switch bucket {
	case BucketCurrent:
		return a.Current
	case Bucket1To30:
		return a.Days1To30
	case Bucket31To60:
		return a.Days31To60
	case Bucket61To90:
		return a.Days61To90
	case Bucket91To120:
		return a.Days91To120
	case Bucket121Plus:
		return a.Days121Plus
	}
	return decimal.Zero
}

// Sum returns the total of all bucket fields
func (a BucketAmounts) Sum() decimal.Decimal {
	return a.Current.
		Add(a.Days1To30).
		Add(a.Days31To60).
		Add(a.Days61To90).
		Add(a.Days91To120).
		Add(a.Days121Plus)
}

// Add returns the field-wise sum of two partitions
func (a BucketAmounts) Add(b BucketAmounts) BucketAmounts {
	return BucketAmounts{
		Current:     a.Current.Add(b.Current),
		Days1To30:   a.Days1To30.Add(b.Days1To30),
		Days31To60:  a.Days31To60.Add(b.Days31To60),
		Days61To90:  a.Days61To90.Add(b.Days61To90),
		Days91To120: a.Days91To120.Add(b.Days91To120),
		Days121Plus: a.Days121Plus.Add(b.Days121Plus),
	}
}

// BucketCounts tracks per-bucket invoice occurrence counts
type BucketCounts struct {
	Current     int `json:"count_current"`
	Days1To30   int `json:"count_1_30"`
	Days31To60  int `json:"count_31_60"`
	Days61To90  int `json:"count_61_90"`
	Days91To120 int `json:"count_91_120"`
	Days121Plus int `json:"count_121_plus"`
}

// ForBucket returns the count for the given bucket
func (c BucketCounts) ForBucket(bucket AgingBucket) int {
	switch bucket {
	case BucketCurrent:
		return c.Current
	case Bucket1To30:
		return c.Days1To30
	case Bucket31To60:
		return c.Days31To60
	case Bucket61To90:
		return c.Days61To90
	case Bucket91To120:
		return c.Days91To120
	case Bucket121Plus:
		return c.Days121Plus
	}
	return 0
}

// Increment bumps the count for the given bucket
func (c *BucketCounts) Increment(bucket AgingBucket) {
	switch bucket {
	case BucketCurrent:
		c.Current++
	case Bucket1To30:
		c.Days1To30++
	case Bucket31To60:
		c.Days31To60++
	case Bucket61To90:
		c.Days61To90++
	case Bucket91To120:
		c.Days91To120++
	case Bucket121Plus:
		c.Days121Plus++
	}
}

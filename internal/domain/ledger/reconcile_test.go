package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeInvoice(id int64, remaining float64, daysOverdue int, asOf time.Time) Invoice {
	due := asOf.AddDate(0, 0, -daysOverdue)
	inv := Invoice{
		InvoiceID:       id,
		InvoiceNumber:   "INV-" + time.Now().Format("20060102"),
		CompanyName:     "Test Co",
		AmountRemaining: decimal.NewFromFloat(remaining),
		DueDate:         &due,
	}
	inv.ApplyAging(asOf)
	return inv
}

func TestReconcile_AddsAndDeletes(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	existing := []Invoice{
		makeInvoice(1, 100, 5, asOf),
		makeInvoice(2, 200, 40, asOf),
	}
	fresh := []Invoice{
		makeInvoice(2, 150, 40, asOf), // still outstanding, amount changed
		makeInvoice(3, 300, 70, asOf), // new upstream
	}

	result := Reconcile(existing, fresh, asOf, false)

	require.Len(t, result.Upserts, 2)
	assert.Equal(t, []int64{1}, result.DeleteIDs)
}

func TestReconcile_RecomputesDerivedFields(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	due := asOf.AddDate(0, 0, -45)
	fresh := []Invoice{{
		InvoiceID:       7,
		AmountRemaining: decimal.NewFromInt(250),
		DueDate:         &due,
		// Upstream never supplies derived fields; whatever is here is stale
		AgingBucket: Bucket121Plus,
	}}

	result := Reconcile(nil, fresh, asOf, false)

	require.Len(t, result.Upserts, 1)
	up := result.Upserts[0]
	assert.Equal(t, Bucket31To60, up.AgingBucket)
	assert.Equal(t, 45, up.PastDueDays)
	assert.True(t, up.Aging.Sum().Equal(up.AmountRemaining))
}

func TestReconcile_Idempotent(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	fresh := []Invoice{
		makeInvoice(1, 100, 5, asOf),
		makeInvoice(2, 200, 40, asOf),
	}

	first := Reconcile(nil, fresh, asOf, false)
	second := Reconcile(first.Upserts, fresh, asOf, false)

	assert.Empty(t, second.DeleteIDs)
	assert.Equal(t, first.Upserts, second.Upserts)
}

func TestReconcile_BootstrapSuppressesDeletes(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	existing := []Invoice{
		makeInvoice(1, 100, 5, asOf),
		makeInvoice(2, 200, 40, asOf),
		makeInvoice(3, 300, 70, asOf),
	}
	fresh := []Invoice{makeInvoice(2, 200, 40, asOf)}

	result := Reconcile(existing, fresh, asOf, true)

	assert.Empty(t, result.DeleteIDs)
	assert.Len(t, result.Upserts, 1)
}

func TestReconcile_EmptyFreshDeletesEverything(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	existing := []Invoice{
		makeInvoice(3, 300, 70, asOf),
		makeInvoice(1, 100, 5, asOf),
	}

	result := Reconcile(existing, nil, asOf, false)

	assert.Empty(t, result.Upserts)
	assert.Equal(t, []int64{1, 3}, result.DeleteIDs, "delete IDs are sorted ascending")
}

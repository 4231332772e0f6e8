package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFollowUp_SnapshotsInvoiceFields(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	inv := makeInvoice(42, 350, 20, asOf)
	inv.InvoiceNumber = "INV-1042"
	inv.PropertyName = "Oasis"
	due := dateUTC(2025, 6, 20)

	f, err := NewFollowUp(&inv, "call about payment plan", due, "bob")

	require.NoError(t, err)
	assert.Equal(t, int64(42), f.InvoiceID)
	assert.Equal(t, "INV-1042", f.InvoiceNumber)
	assert.Equal(t, "Test Co", f.CompanyName)
	assert.Equal(t, "Oasis", f.PropertyName)
	assert.True(t, f.AmountRemaining.Equal(decimal.NewFromInt(350)))
	assert.False(t, f.Completed)
	assert.Nil(t, f.CompletedAt)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", f.ID.String())
}

func TestNewFollowUp_Validation(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	inv := makeInvoice(1, 100, 5, asOf)
	due := dateUTC(2025, 6, 20)

	_, err := NewFollowUp(nil, "text", due, "bob")
	assert.Error(t, err)

	_, err = NewFollowUp(&inv, "", due, "bob")
	assert.Error(t, err)

	_, err = NewFollowUp(&inv, "text", due, "")
	assert.Error(t, err)

	_, err = NewFollowUp(&inv, "text", time.Time{}, "bob")
	assert.Error(t, err)
}

func TestFollowUp_CompleteAndReopen(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	inv := makeInvoice(1, 100, 5, asOf)
	f, err := NewFollowUp(&inv, "text", dateUTC(2025, 6, 20), "bob")
	require.NoError(t, err)

	require.NoError(t, f.Complete())
	assert.True(t, f.Completed)
	require.NotNil(t, f.CompletedAt)

	// completing twice is rejected
	assert.Error(t, f.Complete())

	require.NoError(t, f.Reopen())
	assert.False(t, f.Completed)
	assert.Nil(t, f.CompletedAt)

	// reopening an open follow-up is rejected
	assert.Error(t, f.Reopen())
}

func TestFollowUp_EditRejectedWhenCompleted(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	inv := makeInvoice(1, 100, 5, asOf)
	f, err := NewFollowUp(&inv, "original", dateUTC(2025, 6, 20), "bob")
	require.NoError(t, err)

	newDue := dateUTC(2025, 7, 1)
	require.NoError(t, f.Edit("updated", newDue))
	assert.Equal(t, "updated", f.Text)
	assert.Equal(t, newDue, f.DueDate)

	require.NoError(t, f.Complete())
	assert.Error(t, f.Edit("should fail", newDue))
	assert.Equal(t, "updated", f.Text)
}

func TestFollowUp_IsOverdue(t *testing.T) {
	asOf := dateUTC(2025, 6, 15)
	inv := makeInvoice(1, 100, 5, asOf)
	f, err := NewFollowUp(&inv, "text", dateUTC(2025, 6, 20), "bob")
	require.NoError(t, err)

	assert.False(t, f.IsOverdue(dateUTC(2025, 6, 19)))
	assert.True(t, f.IsOverdue(dateUTC(2025, 6, 21)))

	require.NoError(t, f.Complete())
	assert.False(t, f.IsOverdue(dateUTC(2025, 6, 21)))
}

func TestNote_Lifecycle(t *testing.T) {
	action := dateUTC(2025, 7, 1)
	n, err := NewNote(7, "chased by email", "bob", true, &action)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n.InvoiceID)
	assert.True(t, n.NeedsAction)

	// flagged notes require an action date
	_, err = NewNote(7, "text", "bob", true, nil)
	assert.Error(t, err)

	_, err = NewNote(7, "", "bob", false, nil)
	assert.Error(t, err)

	require.NoError(t, n.EditText("chased by phone"))
	assert.Equal(t, "chased by phone", n.Text)
	assert.Error(t, n.EditText(""))
}

func TestMergeHistory_NewestFirst(t *testing.T) {
	base := dateUTC(2025, 6, 1)

	older, err := NewNote(1, "older note", "bob", false, nil)
	require.NoError(t, err)
	older.CreatedAt = base

	asOf := dateUTC(2025, 6, 15)
	inv := makeInvoice(1, 100, 5, asOf)
	f, err := NewFollowUp(&inv, "follow up", dateUTC(2025, 6, 20), "carol")
	require.NoError(t, err)
	f.CreatedAt = base.AddDate(0, 0, 5)

	newer, err := NewNote(1, "newer note", "bob", false, nil)
	require.NoError(t, err)
	newer.CreatedAt = base.AddDate(0, 0, 10)

	entries := MergeHistory([]Note{*older, *newer}, []FollowUp{*f})

	require.Len(t, entries, 3)
	assert.Equal(t, "newer note", entries[0].Text)
	assert.Equal(t, HistoryKindNote, entries[0].Kind)
	assert.Equal(t, "follow up", entries[1].Text)
	assert.Equal(t, HistoryKindFollowUp, entries[1].Kind)
	assert.Equal(t, "older note", entries[2].Text)
}

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/ardash/backend/internal/domain/shared"
)

type fakeNoteRepo struct {
	notes map[uuid.UUID]ledger.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]ledger.Note)}
}

func (f *fakeNoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &note, nil
}

func (f *fakeNoteRepo) FindByInvoice(ctx context.Context, invoiceID int64) ([]ledger.Note, error) {
	var result []ledger.Note
	for _, note := range f.notes {
		if note.InvoiceID == invoiceID {
			result = append(result, note)
		}
	}
	return result, nil
}

func (f *fakeNoteRepo) Save(ctx context.Context, note *ledger.Note) error {
	f.notes[note.ID] = *note
	return nil
}

func (f *fakeNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.notes[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

type fakeFollowUpRepo struct {
	followUps map[uuid.UUID]ledger.FollowUp
}

func newFakeFollowUpRepo() *fakeFollowUpRepo {
	return &fakeFollowUpRepo{followUps: make(map[uuid.UUID]ledger.FollowUp)}
}

func (f *fakeFollowUpRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.FollowUp, error) {
	fu, ok := f.followUps[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &fu, nil
}

func (f *fakeFollowUpRepo) FindByInvoice(ctx context.Context, invoiceID int64) ([]ledger.FollowUp, error) {
	var result []ledger.FollowUp
	for _, fu := range f.followUps {
		if fu.InvoiceID == invoiceID {
			result = append(result, fu)
		}
	}
	return result, nil
}

func (f *fakeFollowUpRepo) FindOpen(ctx context.Context) ([]ledger.FollowUp, error) {
	var result []ledger.FollowUp
	for _, fu := range f.followUps {
		if !fu.Completed {
			result = append(result, fu)
		}
	}
	return result, nil
}

func (f *fakeFollowUpRepo) Save(ctx context.Context, followUp *ledger.FollowUp) error {
	f.followUps[followUp.ID] = *followUp
	return nil
}

func (f *fakeFollowUpRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.followUps[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.followUps, id)
	return nil
}

type fakePropertyNoteRepo struct {
	notes map[string]ledger.PropertyNote
}

func newFakePropertyNoteRepo() *fakePropertyNoteRepo {
	return &fakePropertyNoteRepo{notes: make(map[string]ledger.PropertyNote)}
}

func (f *fakePropertyNoteRepo) FindByProperty(ctx context.Context, propertyName string) (*ledger.PropertyNote, error) {
	note, ok := f.notes[propertyName]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &note, nil
}

func (f *fakePropertyNoteRepo) Upsert(ctx context.Context, note *ledger.PropertyNote) error {
	f.notes[note.PropertyName] = *note
	return nil
}

func (f *fakePropertyNoteRepo) Delete(ctx context.Context, propertyName string) error {
	if _, ok := f.notes[propertyName]; !ok {
		return shared.ErrNotFound
	}
	delete(f.notes, propertyName)
	return nil
}

func newTestAnnotationService() (*AnnotationService, *fakeInvoiceRepo, *fakeNoteRepo, *fakeFollowUpRepo, *fakePropertyNoteRepo) {
	invoices := newFakeInvoiceRepo()
	notes := newFakeNoteRepo()
	followUps := newFakeFollowUpRepo()
	propertyNotes := newFakePropertyNoteRepo()
	svc := NewAnnotationService(invoices, notes, followUps, propertyNotes)
	return svc, invoices, notes, followUps, propertyNotes
}

func TestAnnotationService_Notes(t *testing.T) {
	t.Run("add edit and delete", func(t *testing.T) {
		svc, invoices, _, _, _ := newTestAnnotationService()
		seedInvoices(invoices, sourceInvoice(1, 100, 10))

		note, err := svc.AddNote(context.Background(), 1, "called about payment", "alice", false, nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", note.Author)

		edited, err := svc.EditNote(context.Background(), note.ID, "left a voicemail")
		require.NoError(t, err)
		assert.Equal(t, "left a voicemail", edited.Text)

		require.NoError(t, svc.DeleteNote(context.Background(), note.ID))
		listed, err := svc.ListNotes(context.Background(), 1)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("note requires an existing invoice", func(t *testing.T) {
		svc, _, _, _, _ := newTestAnnotationService()

		_, err := svc.AddNote(context.Background(), 42, "text", "alice", false, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("flagged note requires an action date", func(t *testing.T) {
		svc, invoices, _, _, _ := newTestAnnotationService()
		seedInvoices(invoices, sourceInvoice(1, 100, 10))

		_, err := svc.AddNote(context.Background(), 1, "text", "alice", true, nil)
		assert.Error(t, err)
	})
}

func TestAnnotationService_FollowUps(t *testing.T) {
	due := time.Now().AddDate(0, 0, 7)

	t.Run("create snapshots invoice fields", func(t *testing.T) {
		svc, invoices, _, _, _ := newTestAnnotationService()
		inv := sourceInvoice(1, 250, 40)
		inv.CompanyName = "Acme"
		seedInvoices(invoices, inv)

		fu, err := svc.CreateFollowUp(context.Background(), 1, "chase payment", due, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Acme", fu.CompanyName)
		assert.Equal(t, "INV-1", fu.InvoiceNumber)
		assert.False(t, fu.Completed)
	})

	t.Run("complete and reopen round trip", func(t *testing.T) {
		svc, invoices, _, _, _ := newTestAnnotationService()
		seedInvoices(invoices, sourceInvoice(1, 100, 10))

		fu, err := svc.CreateFollowUp(context.Background(), 1, "chase payment", due, "alice")
		require.NoError(t, err)

		completed, err := svc.CompleteFollowUp(context.Background(), fu.ID)
		require.NoError(t, err)
		assert.True(t, completed.Completed)
		require.NotNil(t, completed.CompletedAt)

		// Completed follow-ups leave the open worklist
		open, err := svc.ListOpenFollowUps(context.Background())
		require.NoError(t, err)
		assert.Empty(t, open)

		reopened, err := svc.ReopenFollowUp(context.Background(), fu.ID)
		require.NoError(t, err)
		assert.False(t, reopened.Completed)
		assert.Nil(t, reopened.CompletedAt)
	})

	t.Run("editing a completed follow-up is rejected", func(t *testing.T) {
		svc, invoices, _, _, _ := newTestAnnotationService()
		seedInvoices(invoices, sourceInvoice(1, 100, 10))

		fu, err := svc.CreateFollowUp(context.Background(), 1, "chase payment", due, "alice")
		require.NoError(t, err)
		_, err = svc.CompleteFollowUp(context.Background(), fu.ID)
		require.NoError(t, err)

		_, err = svc.EditFollowUp(context.Background(), fu.ID, "new text", due)
		assert.Error(t, err)
	})

	t.Run("follow-up requires an existing invoice", func(t *testing.T) {
		svc, _, _, _, _ := newTestAnnotationService()

		_, err := svc.CreateFollowUp(context.Background(), 42, "text", due, "alice")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAnnotationService_History(t *testing.T) {
	svc, invoices, notes, followUps, _ := newTestAnnotationService()
	seedInvoices(invoices, sourceInvoice(1, 100, 10))

	note, err := ledger.NewNote(1, "older note", "alice", false, nil)
	require.NoError(t, err)
	note.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, notes.Save(context.Background(), note))

	inv, err := invoices.FindByID(context.Background(), 1)
	require.NoError(t, err)
	fu, err := ledger.NewFollowUp(inv, "newer follow-up", time.Now().AddDate(0, 0, 3), "bob")
	require.NoError(t, err)
	require.NoError(t, followUps.Save(context.Background(), fu))

	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ledger.HistoryKindFollowUp, history[0].Kind)
	assert.Equal(t, ledger.HistoryKindNote, history[1].Kind)
}

func TestAnnotationService_PropertyNotes(t *testing.T) {
	svc, _, _, _, propertyNotes := newTestAnnotationService()

	note, err := svc.UpsertPropertyNote(context.Background(), "Desert Plaza", "gate code 4321", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Desert Plaza", note.PropertyName)

	// Second upsert replaces the first
	_, err = svc.UpsertPropertyNote(context.Background(), "Desert Plaza", "new gate code", "bob")
	require.NoError(t, err)

	stored, err := svc.GetPropertyNote(context.Background(), "Desert Plaza")
	require.NoError(t, err)
	assert.Equal(t, "new gate code", stored.Text)
	assert.Equal(t, "bob", stored.Author)
	assert.Len(t, propertyNotes.notes, 1)

	require.NoError(t, svc.DeletePropertyNote(context.Background(), "Desert Plaza"))
	_, err = svc.GetPropertyNote(context.Background(), "Desert Plaza")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAnnotationService_UpdateInvoiceLocalFields(t *testing.T) {
	t.Run("patch applies and returns the updated invoice", func(t *testing.T) {
		svc, invoices, _, _, _ := newTestAnnotationService()
		seedInvoices(invoices, sourceInvoice(1, 100, 10))

		ghosting := true
		status := ledger.PaymentStatusPromiseToPay
		inv, err := svc.UpdateInvoiceLocalFields(context.Background(), 1, ledger.LocalFieldsPatch{
			Ghosting:      &ghosting,
			PaymentStatus: &status,
		})

		require.NoError(t, err)
		assert.True(t, inv.Ghosting)
		assert.Equal(t, ledger.PaymentStatusPromiseToPay, inv.PaymentStatus)
		assert.False(t, inv.Terminated)
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		svc, invoices, _, _, _ := newTestAnnotationService()
		seedInvoices(invoices, sourceInvoice(1, 100, 10))

		_, err := svc.UpdateInvoiceLocalFields(context.Background(), 1, ledger.LocalFieldsPatch{})
		assert.Error(t, err)
	})

	t.Run("unknown payment status is rejected", func(t *testing.T) {
		svc, invoices, _, _, _ := newTestAnnotationService()
		seedInvoices(invoices, sourceInvoice(1, 100, 10))

		bad := ledger.PaymentStatus("Paid In Full")
		_, err := svc.UpdateInvoiceLocalFields(context.Background(), 1, ledger.LocalFieldsPatch{PaymentStatus: &bad})
		assert.Error(t, err)
	})
}

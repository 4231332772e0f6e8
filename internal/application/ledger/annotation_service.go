package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ardash/backend/internal/domain/ledger"
)

// AnnotationService manages the locally-authored layer over the mirrored
// invoice set: notes, follow-ups, property notes and the user-controlled
// invoice fields. Everything here survives syncs untouched.
type AnnotationService struct {
	invoiceRepo      ledger.InvoiceRepository
	noteRepo         ledger.NoteRepository
	followUpRepo     ledger.FollowUpRepository
	propertyNoteRepo ledger.PropertyNoteRepository
}

// NewAnnotationService creates a new AnnotationService
func NewAnnotationService(
	invoiceRepo ledger.InvoiceRepository,
	noteRepo ledger.NoteRepository,
	followUpRepo ledger.FollowUpRepository,
	propertyNoteRepo ledger.PropertyNoteRepository,
) *AnnotationService {
	return &AnnotationService{
		invoiceRepo:      invoiceRepo,
		noteRepo:         noteRepo,
		followUpRepo:     followUpRepo,
		propertyNoteRepo: propertyNoteRepo,
	}
}

// ===================== Notes =====================

// AddNote attaches a note to an invoice. The invoice must exist in the mirror.
func (s *AnnotationService) AddNote(ctx context.Context, invoiceID int64, text, author string, needsAction bool, actionDate *time.Time) (*ledger.Note, error) {
	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}

	note, err := ledger.NewNote(invoiceID, text, author, needsAction, actionDate)
	if err != nil {
		return nil, err
	}

	if err := s.noteRepo.Save(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return note, nil
}

// EditNote replaces a note's text
func (s *AnnotationService) EditNote(ctx context.Context, id uuid.UUID, text string) (*ledger.Note, error) {
	note, err := s.noteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := note.EditText(text); err != nil {
		return nil, err
	}
	if err := s.noteRepo.Save(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return note, nil
}

// DeleteNote removes a note
func (s *AnnotationService) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return s.noteRepo.Delete(ctx, id)
}

// ListNotes returns an invoice's notes
func (s *AnnotationService) ListNotes(ctx context.Context, invoiceID int64) ([]ledger.Note, error) {
	return s.noteRepo.FindByInvoice(ctx, invoiceID)
}

// ===================== Follow-ups =====================

// CreateFollowUp schedules a follow-up for an invoice, freezing the invoice's
// display fields into the follow-up record.
func (s *AnnotationService) CreateFollowUp(ctx context.Context, invoiceID int64, text string, dueDate time.Time, author string) (*ledger.FollowUp, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	followUp, err := ledger.NewFollowUp(inv, text, dueDate, author)
	if err != nil {
		return nil, err
	}

	if err := s.followUpRepo.Save(ctx, followUp); err != nil {
		return nil, fmt.Errorf("failed to save follow-up: %w", err)
	}
	return followUp, nil
}

// CompleteFollowUp marks a follow-up as done
func (s *AnnotationService) CompleteFollowUp(ctx context.Context, id uuid.UUID) (*ledger.FollowUp, error) {
	return s.transitionFollowUp(ctx, id, (*ledger.FollowUp).Complete)
}

// ReopenFollowUp returns a completed follow-up to the open state
func (s *AnnotationService) ReopenFollowUp(ctx context.Context, id uuid.UUID) (*ledger.FollowUp, error) {
	return s.transitionFollowUp(ctx, id, (*ledger.FollowUp).Reopen)
}

func (s *AnnotationService) transitionFollowUp(ctx context.Context, id uuid.UUID, transition func(*ledger.FollowUp) error) (*ledger.FollowUp, error) {
	followUp, err := s.followUpRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(followUp); err != nil {
		return nil, err
	}
	if err := s.followUpRepo.Save(ctx, followUp); err != nil {
		return nil, fmt.Errorf("failed to save follow-up: %w", err)
	}
	return followUp, nil
}

// EditFollowUp updates an open follow-up's text and due date
func (s *AnnotationService) EditFollowUp(ctx context.Context, id uuid.UUID, text string, dueDate time.Time) (*ledger.FollowUp, error) {
	followUp, err := s.followUpRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := followUp.Edit(text, dueDate); err != nil {
		return nil, err
	}
	if err := s.followUpRepo.Save(ctx, followUp); err != nil {
		return nil, fmt.Errorf("failed to save follow-up: %w", err)
	}
	return followUp, nil
}

// DeleteFollowUp removes a follow-up in either state
func (s *AnnotationService) DeleteFollowUp(ctx context.Context, id uuid.UUID) error {
	return s.followUpRepo.Delete(ctx, id)
}

// ListFollowUps returns an invoice's follow-ups
func (s *AnnotationService) ListFollowUps(ctx context.Context, invoiceID int64) ([]ledger.FollowUp, error) {
	return s.followUpRepo.FindByInvoice(ctx, invoiceID)
}

// ListOpenFollowUps returns all open follow-ups across invoices, soonest due
// first, for the reminder worklist.
func (s *AnnotationService) ListOpenFollowUps(ctx context.Context) ([]ledger.FollowUp, error) {
	return s.followUpRepo.FindOpen(ctx)
}

// ===================== History =====================

// History returns an invoice's notes and follow-ups merged into one
// newest-first timeline.
func (s *AnnotationService) History(ctx context.Context, invoiceID int64) ([]ledger.HistoryEntry, error) {
	notes, err := s.noteRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	followUps, err := s.followUpRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return ledger.MergeHistory(notes, followUps), nil
}

// ===================== Property notes =====================

// UpsertPropertyNote creates or replaces the single note for a property
func (s *AnnotationService) UpsertPropertyNote(ctx context.Context, propertyName, text, author string) (*ledger.PropertyNote, error) {
	note, err := ledger.NewPropertyNote(propertyName, text, author)
	if err != nil {
		return nil, err
	}
	if err := s.propertyNoteRepo.Upsert(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save property note: %w", err)
	}
	return note, nil
}

// GetPropertyNote returns the note stored for a property
func (s *AnnotationService) GetPropertyNote(ctx context.Context, propertyName string) (*ledger.PropertyNote, error) {
	return s.propertyNoteRepo.FindByProperty(ctx, propertyName)
}

// DeletePropertyNote removes a property's note
func (s *AnnotationService) DeletePropertyNote(ctx context.Context, propertyName string) error {
	return s.propertyNoteRepo.Delete(ctx, propertyName)
}

// ===================== Invoice local fields =====================

// UpdateInvoiceLocalFields patches the user-controlled fields of one invoice.
// Only provided fields change; authoritative columns are never touched here.
func (s *AnnotationService) UpdateInvoiceLocalFields(ctx context.Context, invoiceID int64, patch ledger.LocalFieldsPatch) (*ledger.Invoice, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.UpdateLocalFields(ctx, invoiceID, patch); err != nil {
		return nil, err
	}
	return s.invoiceRepo.FindByID(ctx, invoiceID)
}

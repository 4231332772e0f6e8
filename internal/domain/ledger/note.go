package ledger

import (
	"time"

	"github.com/ardash/backend/internal/domain/shared"
)

// Note is a free-text annotation on one invoice, attributed to the caller
// identity that authored it. Notes are immutable except for text edits and
// are removed only by explicit deletion, never by sync.
type Note struct {
	shared.BaseEntity
	InvoiceID   int64
	Text        string
	Author      string
	NeedsAction bool
	ActionDate  *time.Time
}

// NewNote creates a note attached to an invoice
func NewNote(invoiceID int64, text, author string, needsAction bool, actionDate *time.Time) (*Note, error) {
	if invoiceID <= 0 {
		return nil, shared.NewDomainError("INVALID_INVOICE_ID", "Note must reference a valid invoice")
	}
	if text == "" {
		return nil, shared.NewDomainError("INVALID_TEXT", "Note text cannot be empty")
	}
	if author == "" {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Note author cannot be empty")
	}
	if needsAction && actionDate == nil {
		return nil, shared.NewDomainError("INVALID_ACTION_DATE", "A follow-up date is required when the note is flagged")
	}

	return &Note{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		Text:        text,
		Author:      author,
		NeedsAction: needsAction,
		ActionDate:  actionDate,
	}, nil
}

// EditText replaces the note text
func (n *Note) EditText(text string) error {
	if text == "" {
		return shared.NewDomainError("INVALID_TEXT", "Note text cannot be empty")
	}
	n.Text = text
	n.Touch()
	return nil
}

// PropertyNote is the single current note for a property name. It is keyed by
// the property name itself, not by invoice, and upserts replace the previous
// note so at most one is active per property.
type PropertyNote struct {
	PropertyName string
	Text         string
	Author       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPropertyNote creates or replaces the note for a property
func NewPropertyNote(propertyName, text, author string) (*PropertyNote, error) {
	if propertyName == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property name cannot be empty")
	}
	if text == "" {
		return nil, shared.NewDomainError("INVALID_TEXT", "Note text cannot be empty")
	}
	if author == "" {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Note author cannot be empty")
	}

	now := time.Now()
	return &PropertyNote{
		PropertyName: propertyName,
		Text:         text,
		Author:       author,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

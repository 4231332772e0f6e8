package ledger

import (
	"time"

	"github.com/ardash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FollowUp is a scheduled, attributable reminder tied to one invoice. The
// invoice's number, company, property and remaining amount are denormalized
// at creation time so historical follow-ups stay meaningful even after the
// invoice record's display fields change or the invoice disappears.
//
// Lifecycle: open -> completed -> open (reopen); deletable from either state.
// Completed follow-ups are audit records, so content edits are only permitted
// while open.
type FollowUp struct {
	shared.BaseEntity
	InvoiceID int64

	// Denormalized invoice snapshot, frozen at creation
	InvoiceNumber   string
	CompanyName     string
	PropertyName    string
	AmountRemaining decimal.Decimal

	Text        string
	DueDate     time.Time
	Author      string
	Completed   bool
	CompletedAt *time.Time
}

// NewFollowUp creates an open follow-up, snapshotting display fields from the
// invoice it references.
func NewFollowUp(inv *Invoice, text string, dueDate time.Time, author string) (*FollowUp, error) {
	if inv == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE_ID", "Follow-up must reference a valid invoice")
	}
	if text == "" {
		return nil, shared.NewDomainError("INVALID_TEXT", "Follow-up text cannot be empty")
	}
	if author == "" {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Follow-up author cannot be empty")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Follow-up due date is required")
	}

	return &FollowUp{
		BaseEntity:      shared.NewBaseEntity(),
		InvoiceID:       inv.InvoiceID,
		InvoiceNumber:   inv.InvoiceNumber,
		CompanyName:     inv.CompanyName,
		PropertyName:    inv.PropertyName,
		AmountRemaining: inv.AmountRemaining,
		Text:            text,
		DueDate:         dueDate,
		Author:          author,
	}, nil
}

// Complete marks the follow-up done and stamps the completion time
func (f *FollowUp) Complete() error {
	if f.Completed {
		return shared.NewDomainError("INVALID_STATE", "Follow-up is already completed")
	}
	now := time.Now()
	f.Completed = true
	f.CompletedAt = &now
	f.Touch()
	return nil
}

// Reopen returns a completed follow-up to the open state, clearing the
// completion timestamp.
func (f *FollowUp) Reopen() error {
	if !f.Completed {
		return shared.NewDomainError("INVALID_STATE", "Follow-up is not completed")
	}
	f.Completed = false
	f.CompletedAt = nil
	f.Touch()
	return nil
}

// Edit updates the text and due date. Completing freezes content, so edits
// are rejected unless the follow-up is open.
func (f *FollowUp) Edit(text string, dueDate time.Time) error {
	if f.Completed {
		return shared.NewDomainError("INVALID_STATE", "Completed follow-ups cannot be edited")
	}
	if text == "" {
		return shared.NewDomainError("INVALID_TEXT", "Follow-up text cannot be empty")
	}
	if dueDate.IsZero() {
		return shared.NewDomainError("INVALID_DUE_DATE", "Follow-up due date is required")
	}
	f.Text = text
	f.DueDate = dueDate
	f.Touch()
	return nil
}

// IsOverdue returns true if the follow-up is open and past its due date
func (f *FollowUp) IsOverdue(asOf time.Time) bool {
	return !f.Completed && asOf.After(f.DueDate)
}

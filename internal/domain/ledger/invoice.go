package ledger

import (
	"time"

	"github.com/ardash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the user-controlled follow-up state of an invoice
type PaymentStatus string

const (
	PaymentStatusNoFollowUp    PaymentStatus = "No Follow Up"
	PaymentStatusInProgress    PaymentStatus = "In Progress"
	PaymentStatusPromiseToPay  PaymentStatus = "Promise To Pay"
	PaymentStatusDisputed      PaymentStatus = "Disputed"
	PaymentStatusInCollections PaymentStatus = "Sent To Collections"
)

// IsValid checks if the status is a known PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusNoFollowUp, PaymentStatusInProgress, PaymentStatusPromiseToPay,
		PaymentStatusDisputed, PaymentStatusInCollections:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Invoice is one accounts-receivable record mirrored from the external
// invoicing system. It is keyed by the external system's immutable numeric ID,
// not an internally generated key, because locally-authored annotations and
// repeated syncs must anchor to the external source of truth.
//
// Fields fall into three groups with different lifecycles:
//   - authoritative fields are overwritten on every sync
//   - derived fields are recomputed on every sync from the due date
//   - local-only fields are set by user action and survive syncs untouched
type Invoice struct {
	InvoiceID int64

	// Authoritative fields
	InvoiceNumber       string
	CompanyName         string
	PropertyName        string
	OpportunityName     string
	OpportunityNumber   string
	BranchName          string
	TotalAmount         decimal.Decimal
	AmountRemaining     decimal.Decimal
	DueDate             *time.Time
	InvoiceDate         *time.Time
	ContactID           int64
	ContactName         string
	ContactEmail        string
	BillingContactID    int64
	BillingContactName  string
	BillingContactEmail string
	PaymentTerms        string

	// Derived fields
	PastDueDays   int
	AgingBucket   AgingBucket
	AgingCategory string
	Aging         BucketAmounts

	// Local-only fields
	Ghosting      bool
	Terminated    bool
	PaymentStatus PaymentStatus
	Comments      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyAging recomputes the derived aging fields against the given reference
// date. The bucket-amount partition is rebuilt from scratch so the partition
// invariant holds regardless of what the fields held before.
func (inv *Invoice) ApplyAging(asOf time.Time) {
	result := Classify(inv.DueDate, asOf)
	inv.PastDueDays = result.PastDueDays
	inv.AgingBucket = result.Bucket
	inv.AgingCategory = result.Category
	inv.Aging = NewBucketAmounts(result.Bucket, inv.AmountRemaining)
}

// Validate checks the invariants a persisted invoice must satisfy
func (inv *Invoice) Validate() error {
	if inv.InvoiceID <= 0 {
		return shared.NewDomainError("INVALID_INVOICE_ID", "Invoice ID must be a positive external identifier")
	}
	if inv.AmountRemaining.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount remaining cannot be negative")
	}
	if !inv.AgingBucket.IsValid() {
		return shared.NewDomainError("INVALID_BUCKET", "Aging bucket is not valid")
	}
	if !inv.Aging.Sum().Equal(inv.AmountRemaining) {
		return shared.NewDomainError("INVALID_PARTITION", "Bucket amounts do not sum to amount remaining")
	}
	return nil
}

// EffectivePaymentStatus returns the payment status, defaulting empty values
func (inv *Invoice) EffectivePaymentStatus() PaymentStatus {
	if inv.PaymentStatus == "" {
		return PaymentStatusNoFollowUp
	}
	return inv.PaymentStatus
}

// IsPastDue returns true if the invoice is at least one day past due
func (inv *Invoice) IsPastDue() bool {
	return inv.PastDueDays > 0
}

// LocalFieldsPatch is a partial update of the user-controlled invoice fields.
// Nil members leave the corresponding column unchanged.
type LocalFieldsPatch struct {
	Ghosting      *bool
	Terminated    *bool
	PaymentStatus *PaymentStatus
	Comments      *string
}

// Validate rejects patches carrying an unknown payment status
func (p LocalFieldsPatch) Validate() error {
	if p.PaymentStatus != nil && !p.PaymentStatus.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Payment status is not valid")
	}
	if p.Ghosting == nil && p.Terminated == nil && p.PaymentStatus == nil && p.Comments == nil {
		return shared.NewDomainError("EMPTY_PATCH", "At least one field must be provided")
	}
	return nil
}

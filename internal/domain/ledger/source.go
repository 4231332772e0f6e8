package ledger

import (
	"context"
	"errors"
)

// ErrSourceUnavailable wraps transport-level failures talking to the upstream
// invoicing system. The sync pipeline treats it as transient: it stops
// paginating and proceeds with whatever pages it already has.
var ErrSourceUnavailable = errors.New("invoice source unavailable")

// Contact is a person record from the upstream invoicing system, fetched
// separately from invoices to fill in name and email.
type Contact struct {
	ContactID int64
	Name      string
	Email     string
}

// InvoicePage is one page of the upstream invoice listing. FetchedCount is
// the number of rows the upstream returned before any were discarded as
// unmappable, so a full page with bad rows still reads as full to the
// paginator.
type InvoicePage struct {
	Invoices     []Invoice
	FetchedCount int
}

// InvoiceSource is the read port onto the upstream invoicing system.
type InvoiceSource interface {
	// FetchInvoicesPage returns up to pageSize outstanding invoices with an
	// external ID strictly greater than afterID, ordered by ID ascending.
	// The returned invoices carry authoritative fields only.
	FetchInvoicesPage(ctx context.Context, afterID int64, pageSize int) (InvoicePage, error)

	// FetchContacts resolves a batch of contact IDs to contact records.
	// Unknown IDs are simply absent from the result.
	FetchContacts(ctx context.Context, contactIDs []int64) (map[int64]Contact, error)
}

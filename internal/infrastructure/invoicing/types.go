package invoicing

import (
	"encoding/json"
	"time"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// invoiceListResponse is the envelope of the invoice list endpoint
type invoiceListResponse struct {
	Items      []invoiceDTO `json:"items"`
	TotalCount int          `json:"total_count"`
}

// invoiceDTO mirrors one invoice row as the upstream API serializes it.
// Numbers arrive as JSON numbers or strings depending on the field, so
// amounts use json.Number and dates are parsed leniently.
type invoiceDTO struct {
	InvoiceID         int64       `json:"invoice_id"`
	InvoiceNumber     string      `json:"invoice_number"`
	CompanyName       string      `json:"company_name"`
	PropertyName      string      `json:"property_name"`
	OpportunityName   string      `json:"opportunity_name"`
	OpportunityNumber string      `json:"opportunity_number"`
	BranchName        string      `json:"branch_name"`
	TotalAmount       json.Number `json:"total_amount"`
	AmountRemaining   json.Number `json:"amount_remaining"`
	DueDate           string      `json:"due_date"`
	InvoiceDate       string      `json:"invoice_date"`
	ContactID         int64       `json:"contact_id"`
	BillingContactID  int64       `json:"billing_contact_id"`
	PaymentTerms      string      `json:"payment_terms"`
}

// contactListResponse is the envelope of the contact list endpoint
type contactListResponse struct {
	Items []contactDTO `json:"items"`
}

// contactDTO mirrors one contact row from the upstream API
type contactDTO struct {
	ContactID int64  `json:"contact_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// dateLayouts are tried in order when parsing upstream date fields
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate parses an upstream date string, returning nil for anything
// unparseable. Malformed dates must never abort a sync.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseAmount parses an upstream amount, defaulting to zero on malformed input
func parseAmount(n json.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// toDomain maps a DTO to a domain invoice carrying authoritative fields only
func (dto invoiceDTO) toDomain() ledger.Invoice {
	return ledger.Invoice{
		InvoiceID:         dto.InvoiceID,
		InvoiceNumber:     dto.InvoiceNumber,
		CompanyName:       dto.CompanyName,
		PropertyName:      dto.PropertyName,
		OpportunityName:   dto.OpportunityName,
		OpportunityNumber: dto.OpportunityNumber,
		BranchName:        dto.BranchName,
		TotalAmount:       parseAmount(dto.TotalAmount),
		AmountRemaining:   parseAmount(dto.AmountRemaining),
		DueDate:           parseDate(dto.DueDate),
		InvoiceDate:       parseDate(dto.InvoiceDate),
		ContactID:         dto.ContactID,
		BillingContactID:  dto.BillingContactID,
		PaymentTerms:      dto.PaymentTerms,
	}
}

// name joins the contact name parts, tolerating either being empty
func (dto contactDTO) name() string {
	switch {
	case dto.FirstName == "":
		return dto.LastName
	case dto.LastName == "":
		return dto.FirstName
	}
	return dto.FirstName + " " + dto.LastName
}

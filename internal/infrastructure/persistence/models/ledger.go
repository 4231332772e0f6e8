package models

import (
	"time"

	"github.com/ardash/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for mirrored invoices.
//
// The surrogate ID exists only so rows migrated from the legacy dashboard,
// which predate external IDs, can coexist with synced rows. Synced rows carry
// the external invoice ID in a unique column, which is also the upsert
// conflict target.
type InvoiceModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	InvoiceID *int64 `gorm:"uniqueIndex"`

	// Authoritative columns, overwritten by every sync
	InvoiceNumber       string          `gorm:"type:varchar(50);not null;index"`
	CompanyName         string          `gorm:"type:varchar(200);not null;index"`
	PropertyName        string          `gorm:"type:varchar(200);index"`
	OpportunityName     string          `gorm:"type:varchar(200)"`
	OpportunityNumber   string          `gorm:"type:varchar(50)"`
	BranchName          string          `gorm:"type:varchar(100);index"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountRemaining     decimal.Decimal `gorm:"type:decimal(18,4);not null;index"`
	DueDate             *time.Time      `gorm:"index"`
	InvoiceDate         *time.Time
	ContactID           int64
	ContactName         string `gorm:"type:varchar(200)"`
	ContactEmail        string `gorm:"type:varchar(320)"`
	BillingContactID    int64
	BillingContactName  string `gorm:"type:varchar(200)"`
	BillingContactEmail string `gorm:"type:varchar(320)"`
	PaymentTerms        string `gorm:"type:varchar(100)"`

	// Derived columns, recomputed by every sync
	PastDueDays   int             `gorm:"not null;default:0"`
	AgingBucket   string          `gorm:"type:varchar(10);not null;index"`
	AgingCategory string          `gorm:"type:varchar(30);not null"`
	AgingCurrent  decimal.Decimal `gorm:"column:aging_current;type:decimal(18,4);not null"`
	Aging1To30    decimal.Decimal `gorm:"column:aging_1_30;type:decimal(18,4);not null"`
	Aging31To60   decimal.Decimal `gorm:"column:aging_31_60;type:decimal(18,4);not null"`
	Aging61To90   decimal.Decimal `gorm:"column:aging_61_90;type:decimal(18,4);not null"`
	Aging91To120  decimal.Decimal `gorm:"column:aging_91_120;type:decimal(18,4);not null"`
	Aging121Plus  decimal.Decimal `gorm:"column:aging_121_plus;type:decimal(18,4);not null"`

	// Local-only columns, never touched by sync
	Ghosting      bool   `gorm:"not null;default:false"`
	Terminated    bool   `gorm:"not null;default:false"`
	PaymentStatus string `gorm:"type:varchar(30);not null;default:'No Follow Up'"`
	Comments      string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// AuthoritativeColumns lists every column the sync upsert is allowed to
// overwrite. Local-only columns are deliberately absent.
func AuthoritativeColumns() []string {
	return []string{
		"invoice_number", "company_name", "property_name",
		"opportunity_name", "opportunity_number", "branch_name",
		"total_amount", "amount_remaining", "due_date", "invoice_date",
		"contact_id", "contact_name", "contact_email",
		"billing_contact_id", "billing_contact_name", "billing_contact_email",
		"payment_terms",
		"past_due_days", "aging_bucket", "aging_category",
		"aging_current", "aging_1_30", "aging_31_60",
		"aging_61_90", "aging_91_120", "aging_121_plus",
		"updated_at",
	}
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	var invoiceID int64
	if m.InvoiceID != nil {
		invoiceID = *m.InvoiceID
	}
	return &ledger.Invoice{
		InvoiceID:           invoiceID,
		InvoiceNumber:       m.InvoiceNumber,
		CompanyName:         m.CompanyName,
		PropertyName:        m.PropertyName,
		OpportunityName:     m.OpportunityName,
		OpportunityNumber:   m.OpportunityNumber,
		BranchName:          m.BranchName,
		TotalAmount:         m.TotalAmount,
		AmountRemaining:     m.AmountRemaining,
		DueDate:             m.DueDate,
		InvoiceDate:         m.InvoiceDate,
		ContactID:           m.ContactID,
		ContactName:         m.ContactName,
		ContactEmail:        m.ContactEmail,
		BillingContactID:    m.BillingContactID,
		BillingContactName:  m.BillingContactName,
		BillingContactEmail: m.BillingContactEmail,
		PaymentTerms:        m.PaymentTerms,
		PastDueDays:         m.PastDueDays,
		AgingBucket:         ledger.AgingBucket(m.AgingBucket),
		AgingCategory:       m.AgingCategory,
		Aging: ledger.BucketAmounts{
			Current:     m.AgingCurrent,
			Days1To30:   m.Aging1To30,
			Days31To60:  m.Aging31To60,
			Days61To90:  m.Aging61To90,
			Days91To120: m.Aging91To120,
			Days121Plus: m.Aging121Plus,
		},
		Ghosting:      m.Ghosting,
		Terminated:    m.Terminated,
		PaymentStatus: ledger.PaymentStatus(m.PaymentStatus),
		Comments:      m.Comments,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	if inv.InvoiceID > 0 {
		id := inv.InvoiceID
		m.InvoiceID = &id
	}
	m.InvoiceNumber = inv.InvoiceNumber
	m.CompanyName = inv.CompanyName
	m.PropertyName = inv.PropertyName
	m.OpportunityName = inv.OpportunityName
	m.OpportunityNumber = inv.OpportunityNumber
	m.BranchName = inv.BranchName
	m.TotalAmount = inv.TotalAmount
	m.AmountRemaining = inv.AmountRemaining
	m.DueDate = inv.DueDate
	m.InvoiceDate = inv.InvoiceDate
	m.ContactID = inv.ContactID
	m.ContactName = inv.ContactName
	m.ContactEmail = inv.ContactEmail
	m.BillingContactID = inv.BillingContactID
	m.BillingContactName = inv.BillingContactName
	m.BillingContactEmail = inv.BillingContactEmail
	m.PaymentTerms = inv.PaymentTerms
	m.PastDueDays = inv.PastDueDays
	m.AgingBucket = inv.AgingBucket.String()
	m.AgingCategory = inv.AgingCategory
	m.AgingCurrent = inv.Aging.Current
	m.Aging1To30 = inv.Aging.Days1To30
	m.Aging31To60 = inv.Aging.Days31To60
	m.Aging61To90 = inv.Aging.Days61To90
	m.Aging91To120 = inv.Aging.Days91To120
	m.Aging121Plus = inv.Aging.Days121Plus
	m.Ghosting = inv.Ghosting
	m.Terminated = inv.Terminated
	m.PaymentStatus = inv.EffectivePaymentStatus().String()
	m.Comments = inv.Comments
	m.CreatedAt = inv.CreatedAt
	m.UpdatedAt = inv.UpdatedAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// NoteModel is the persistence model for invoice notes
type NoteModel struct {
	BaseModel
	InvoiceID   int64      `gorm:"not null;index"`
	Text        string     `gorm:"type:text;not null"`
	Author      string     `gorm:"type:varchar(200);not null"`
	NeedsAction bool       `gorm:"not null;default:false"`
	ActionDate  *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (NoteModel) TableName() string {
	return "invoice_notes"
}

// ToDomain converts the persistence model to a domain Note
func (m *NoteModel) ToDomain() *ledger.Note {
	return &ledger.Note{
		BaseEntity:  m.BaseModel.ToDomain(),
		InvoiceID:   m.InvoiceID,
		Text:        m.Text,
		Author:      m.Author,
		NeedsAction: m.NeedsAction,
		ActionDate:  m.ActionDate,
	}
}

// FromDomain populates the persistence model from a domain Note
func (m *NoteModel) FromDomain(n *ledger.Note) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.InvoiceID = n.InvoiceID
	m.Text = n.Text
	m.Author = n.Author
	m.NeedsAction = n.NeedsAction
	m.ActionDate = n.ActionDate
}

// FollowUpModel is the persistence model for follow-ups
type FollowUpModel struct {
	BaseModel
	InvoiceID       int64           `gorm:"not null;index"`
	InvoiceNumber   string          `gorm:"type:varchar(50);not null"`
	CompanyName     string          `gorm:"type:varchar(200);not null"`
	PropertyName    string          `gorm:"type:varchar(200)"`
	AmountRemaining decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Text            string          `gorm:"type:text;not null"`
	DueDate         time.Time       `gorm:"not null;index"`
	Author          string          `gorm:"type:varchar(200);not null"`
	Completed       bool            `gorm:"not null;default:false;index"`
	CompletedAt     *time.Time
}

// TableName returns the table name for GORM
func (FollowUpModel) TableName() string {
	return "follow_ups"
}

// ToDomain converts the persistence model to a domain FollowUp
func (m *FollowUpModel) ToDomain() *ledger.FollowUp {
	return &ledger.FollowUp{
		BaseEntity:      m.BaseModel.ToDomain(),
		InvoiceID:       m.InvoiceID,
		InvoiceNumber:   m.InvoiceNumber,
		CompanyName:     m.CompanyName,
		PropertyName:    m.PropertyName,
		AmountRemaining: m.AmountRemaining,
		Text:            m.Text,
		DueDate:         m.DueDate,
		Author:          m.Author,
		Completed:       m.Completed,
		CompletedAt:     m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain FollowUp
func (m *FollowUpModel) FromDomain(f *ledger.FollowUp) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.InvoiceID = f.InvoiceID
	m.InvoiceNumber = f.InvoiceNumber
	m.CompanyName = f.CompanyName
	m.PropertyName = f.PropertyName
	m.AmountRemaining = f.AmountRemaining
	m.Text = f.Text
	m.DueDate = f.DueDate
	m.Author = f.Author
	m.Completed = f.Completed
	m.CompletedAt = f.CompletedAt
}

// PropertyNoteModel is the persistence model for per-property notes.
// The property name is the primary key, so upserts replace in place.
type PropertyNoteModel struct {
	PropertyName string    `gorm:"type:varchar(200);primaryKey"`
	Text         string    `gorm:"type:text;not null"`
	Author       string    `gorm:"type:varchar(200);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PropertyNoteModel) TableName() string {
	return "property_notes"
}

// ToDomain converts the persistence model to a domain PropertyNote
func (m *PropertyNoteModel) ToDomain() *ledger.PropertyNote {
	return &ledger.PropertyNote{
		PropertyName: m.PropertyName,
		Text:         m.Text,
		Author:       m.Author,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PropertyNote
func (m *PropertyNoteModel) FromDomain(n *ledger.PropertyNote) {
	m.PropertyName = n.PropertyName
	m.Text = n.Text
	m.Author = n.Author
	m.CreatedAt = n.CreatedAt
	m.UpdatedAt = n.UpdatedAt
}

// MonthlySnapshotModel is the persistence model for monthly snapshots
type MonthlySnapshotModel struct {
	ID               int64                       `gorm:"primaryKey;autoIncrement"`
	SnapshotDate     time.Time                   `gorm:"type:date;not null;uniqueIndex:idx_snapshot_date_region,priority:1"`
	Region           string                      `gorm:"type:varchar(20);not null;uniqueIndex:idx_snapshot_date_region,priority:2"`
	TotalOutstanding decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	InvoiceCount     int                         `gorm:"not null"`
	AgingCurrent     decimal.Decimal             `gorm:"column:aging_current;type:decimal(18,4);not null"`
	Aging1To30       decimal.Decimal             `gorm:"column:aging_1_30;type:decimal(18,4);not null"`
	Aging31To60      decimal.Decimal             `gorm:"column:aging_31_60;type:decimal(18,4);not null"`
	Aging61To90      decimal.Decimal             `gorm:"column:aging_61_90;type:decimal(18,4);not null"`
	Aging91To120     decimal.Decimal             `gorm:"column:aging_91_120;type:decimal(18,4);not null"`
	Aging121Plus     decimal.Decimal             `gorm:"column:aging_121_plus;type:decimal(18,4);not null"`
	CountCurrent     int                         `gorm:"column:count_current;not null"`
	Count1To30       int                         `gorm:"column:count_1_30;not null"`
	Count31To60      int                         `gorm:"column:count_31_60;not null"`
	Count61To90      int                         `gorm:"column:count_61_90;not null"`
	Count91To120     int                         `gorm:"column:count_91_120;not null"`
	Count121Plus     int                         `gorm:"column:count_121_plus;not null"`
	CompanyBreakdown ledger.CompanyBreakdownList `gorm:"type:jsonb;default:'[]'"`
	CreatedBy        string                      `gorm:"type:varchar(200);not null"`
	CreatedAt        time.Time                   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MonthlySnapshotModel) TableName() string {
	return "monthly_snapshots"
}

// ToDomain converts the persistence model to a domain MonthlySnapshot
func (m *MonthlySnapshotModel) ToDomain() *ledger.MonthlySnapshot {
	return &ledger.MonthlySnapshot{
		SnapshotDate:     m.SnapshotDate,
		Region:           ledger.Region(m.Region),
		TotalOutstanding: m.TotalOutstanding,
		InvoiceCount:     m.InvoiceCount,
		BucketTotals: ledger.BucketAmounts{
			Current:     m.AgingCurrent,
			Days1To30:   m.Aging1To30,
			Days31To60:  m.Aging31To60,
			Days61To90:  m.Aging61To90,
			Days91To120: m.Aging91To120,
			Days121Plus: m.Aging121Plus,
		},
		BucketCounts: ledger.BucketCounts{
			Current:     m.CountCurrent,
			Days1To30:   m.Count1To30,
			Days31To60:  m.Count31To60,
			Days61To90:  m.Count61To90,
			Days91To120: m.Count91To120,
			Days121Plus: m.Count121Plus,
		},
		CompanyBreakdown: m.CompanyBreakdown,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain MonthlySnapshot
func (m *MonthlySnapshotModel) FromDomain(s *ledger.MonthlySnapshot) {
	m.SnapshotDate = s.SnapshotDate
	m.Region = s.Region.String()
	m.TotalOutstanding = s.TotalOutstanding
	m.InvoiceCount = s.InvoiceCount
	m.AgingCurrent = s.BucketTotals.Current
	m.Aging1To30 = s.BucketTotals.Days1To30
	m.Aging31To60 = s.BucketTotals.Days31To60
	m.Aging61To90 = s.BucketTotals.Days61To90
	m.Aging91To120 = s.BucketTotals.Days91To120
	m.Aging121Plus = s.BucketTotals.Days121Plus
	m.CountCurrent = s.BucketCounts.Current
	m.Count1To30 = s.BucketCounts.Days1To30
	m.Count31To60 = s.BucketCounts.Days31To60
	m.Count61To90 = s.BucketCounts.Days61To90
	m.Count91To120 = s.BucketCounts.Days91To120
	m.Count121Plus = s.BucketCounts.Days121Plus
	m.CompanyBreakdown = s.CompanyBreakdown
	m.CreatedBy = s.CreatedBy
	m.CreatedAt = s.CreatedAt
}

// AppSettingModel is a key-value row for sync bookkeeping
type AppSettingModel struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AppSettingModel) TableName() string {
	return "app_settings"
}

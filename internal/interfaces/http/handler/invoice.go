package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/ardash/backend/internal/application/ledger"
	"github.com/ardash/backend/internal/domain/ledger"
)

// InvoiceHandler serves the invoice list and per-invoice operations
type InvoiceHandler struct {
	BaseHandler
	dashboardService  *ledgerapp.DashboardService
	annotationService *ledgerapp.AnnotationService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(dashboardService *ledgerapp.DashboardService, annotationService *ledgerapp.AnnotationService) *InvoiceHandler {
	return &InvoiceHandler{
		dashboardService:  dashboardService,
		annotationService: annotationService,
	}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.PATCH("/:id", h.UpdateLocalFields)
		invoices.GET("/:id/history", h.History)
	}
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	InvoiceID           int64                `json:"invoice_id"`
	InvoiceNumber       string               `json:"invoice_number"`
	CompanyName         string               `json:"company_name"`
	PropertyName        string               `json:"property_name,omitempty"`
	OpportunityName     string               `json:"opportunity_name,omitempty"`
	OpportunityNumber   string               `json:"opportunity_number,omitempty"`
	BranchName          string               `json:"branch_name,omitempty"`
	TotalAmount         decimal.Decimal      `json:"total_amount"`
	AmountRemaining     decimal.Decimal      `json:"amount_remaining"`
	DueDate             *time.Time           `json:"due_date,omitempty"`
	InvoiceDate         *time.Time           `json:"invoice_date,omitempty"`
	ContactName         string               `json:"contact_name,omitempty"`
	ContactEmail        string               `json:"contact_email,omitempty"`
	BillingContactName  string               `json:"billing_contact_name,omitempty"`
	BillingContactEmail string               `json:"billing_contact_email,omitempty"`
	PaymentTerms        string               `json:"payment_terms,omitempty"`
	PastDueDays         int                  `json:"past_due_days"`
	AgingBucket         string               `json:"aging_bucket"`
	AgingCategory       string               `json:"aging_category"`
	Aging               ledger.BucketAmounts `json:"aging"`
	Ghosting            bool                 `json:"ghosting"`
	Terminated          bool                 `json:"terminated"`
	PaymentStatus       string               `json:"payment_status"`
	Comments            string               `json:"comments,omitempty"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

func toInvoiceResponse(inv *ledger.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:           inv.InvoiceID,
		InvoiceNumber:       inv.InvoiceNumber,
		CompanyName:         inv.CompanyName,
		PropertyName:        inv.PropertyName,
		OpportunityName:     inv.OpportunityName,
		OpportunityNumber:   inv.OpportunityNumber,
		BranchName:          inv.BranchName,
		TotalAmount:         inv.TotalAmount,
		AmountRemaining:     inv.AmountRemaining,
		DueDate:             inv.DueDate,
		InvoiceDate:         inv.InvoiceDate,
		ContactName:         inv.ContactName,
		ContactEmail:        inv.ContactEmail,
		BillingContactName:  inv.BillingContactName,
		BillingContactEmail: inv.BillingContactEmail,
		PaymentTerms:        inv.PaymentTerms,
		PastDueDays:         inv.PastDueDays,
		AgingBucket:         string(inv.AgingBucket),
		AgingCategory:       inv.AgingCategory,
		Aging:               inv.Aging,
		Ghosting:            inv.Ghosting,
		Terminated:          inv.Terminated,
		PaymentStatus:       inv.EffectivePaymentStatus().String(),
		Comments:            inv.Comments,
		UpdatedAt:           inv.UpdatedAt,
	}
}

// List returns the invoices matching the query filters
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter ledgerapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	invoices, err := h.dashboardService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = toInvoiceResponse(&invoices[i])
	}
	h.Success(c, responses)
}

// Get returns one invoice by its external ID
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, err := parseInvoiceID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.dashboardService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// UpdateLocalFieldsRequest patches the user-controlled invoice fields.
// Omitted fields are left unchanged.
type UpdateLocalFieldsRequest struct {
	Ghosting      *bool   `json:"ghosting"`
	Terminated    *bool   `json:"terminated"`
	PaymentStatus *string `json:"payment_status"`
	Comments      *string `json:"comments"`
}

// UpdateLocalFields patches ghosting, terminated, payment status and comments
func (h *InvoiceHandler) UpdateLocalFields(c *gin.Context) {
	invoiceID, err := parseInvoiceID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req UpdateLocalFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	patch := ledger.LocalFieldsPatch{
		Ghosting:   req.Ghosting,
		Terminated: req.Terminated,
		Comments:   req.Comments,
	}
	if req.PaymentStatus != nil {
		status := ledger.PaymentStatus(*req.PaymentStatus)
		patch.PaymentStatus = &status
	}

	inv, err := h.annotationService.UpdateInvoiceLocalFields(c.Request.Context(), invoiceID, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// History returns the invoice's merged note and follow-up timeline
func (h *InvoiceHandler) History(c *gin.Context) {
	invoiceID, err := parseInvoiceID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	history, err := h.annotationService.History(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// parseInvoiceID reads the external invoice ID path parameter
func parseInvoiceID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/ardash/backend/internal/application/ledger"
	"github.com/ardash/backend/internal/domain/ledger"
)

// AnnotationHandler serves notes, follow-ups and property notes
type AnnotationHandler struct {
	BaseHandler
	annotationService *ledgerapp.AnnotationService
}

// NewAnnotationHandler creates a new AnnotationHandler
func NewAnnotationHandler(annotationService *ledgerapp.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{annotationService: annotationService}
}

// RegisterRoutes registers annotation routes
func (h *AnnotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("/:id/notes", h.ListNotes)
		invoices.POST("/:id/notes", h.AddNote)
		invoices.GET("/:id/follow-ups", h.ListFollowUps)
		invoices.POST("/:id/follow-ups", h.CreateFollowUp)
	}

	notes := rg.Group("/notes")
	{
		notes.PUT("/:id", h.EditNote)
		notes.DELETE("/:id", h.DeleteNote)
	}

	followUps := rg.Group("/follow-ups")
	{
		followUps.GET("/open", h.ListOpenFollowUps)
		followUps.PUT("/:id", h.EditFollowUp)
		followUps.POST("/:id/complete", h.CompleteFollowUp)
		followUps.POST("/:id/reopen", h.ReopenFollowUp)
		followUps.DELETE("/:id", h.DeleteFollowUp)
	}

	properties := rg.Group("/property-notes")
	{
		properties.GET("/:property", h.GetPropertyNote)
		properties.PUT("/:property", h.UpsertPropertyNote)
		properties.DELETE("/:property", h.DeletePropertyNote)
	}
}

// NoteResponse represents an invoice note in API responses
type NoteResponse struct {
	ID          uuid.UUID  `json:"id"`
	InvoiceID   int64      `json:"invoice_id"`
	Text        string     `json:"text"`
	Author      string     `json:"author"`
	NeedsAction bool       `json:"needs_action"`
	ActionDate  *time.Time `json:"action_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toNoteResponse(n *ledger.Note) NoteResponse {
	return NoteResponse{
		ID:          n.ID,
		InvoiceID:   n.InvoiceID,
		Text:        n.Text,
		Author:      n.Author,
		NeedsAction: n.NeedsAction,
		ActionDate:  n.ActionDate,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func toNoteResponses(notes []ledger.Note) []NoteResponse {
	responses := make([]NoteResponse, len(notes))
	for i := range notes {
		responses[i] = toNoteResponse(&notes[i])
	}
	return responses
}

// FollowUpResponse represents a follow-up in API responses
type FollowUpResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceID       int64           `json:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	CompanyName     string          `json:"company_name"`
	PropertyName    string          `json:"property_name,omitempty"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
	Text            string          `json:"text"`
	DueDate         time.Time       `json:"due_date"`
	Author          string          `json:"author"`
	Completed       bool            `json:"completed"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toFollowUpResponse(f *ledger.FollowUp) FollowUpResponse {
	return FollowUpResponse{
		ID:              f.ID,
		InvoiceID:       f.InvoiceID,
		InvoiceNumber:   f.InvoiceNumber,
		CompanyName:     f.CompanyName,
		PropertyName:    f.PropertyName,
		AmountRemaining: f.AmountRemaining,
		Text:            f.Text,
		DueDate:         f.DueDate,
		Author:          f.Author,
		Completed:       f.Completed,
		CompletedAt:     f.CompletedAt,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

func toFollowUpResponses(followUps []ledger.FollowUp) []FollowUpResponse {
	responses := make([]FollowUpResponse, len(followUps))
	for i := range followUps {
		responses[i] = toFollowUpResponse(&followUps[i])
	}
	return responses
}

// PropertyNoteResponse represents a property note in API responses
type PropertyNoteResponse struct {
	PropertyName string    `json:"property_name"`
	Text         string    `json:"text"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toPropertyNoteResponse(n *ledger.PropertyNote) PropertyNoteResponse {
	return PropertyNoteResponse{
		PropertyName: n.PropertyName,
		Text:         n.Text,
		Author:       n.Author,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

// AddNoteRequest creates a note on an invoice
type AddNoteRequest struct {
	Text        string     `json:"text" binding:"required"`
	NeedsAction bool       `json:"needs_action"`
	ActionDate  *time.Time `json:"action_date"`
}

// AddNote attaches a note to an invoice, attributed to the caller
func (h *AnnotationHandler) AddNote(c *gin.Context) {
	invoiceID, err := parseInvoiceID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	author, err := getUsername(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity is required")
		return
	}

	note, err := h.annotationService.AddNote(c.Request.Context(), invoiceID, req.Text, author, req.NeedsAction, req.ActionDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toNoteResponse(note))
}

// EditNoteRequest replaces a note's text
type EditNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// EditNote replaces a note's text
func (h *AnnotationHandler) EditNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid note ID")
		return
	}

	var req EditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.annotationService.EditNote(c.Request.Context(), id, req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toNoteResponse(note))
}

// DeleteNote removes a note
func (h *AnnotationHandler) DeleteNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid note ID")
		return
	}
	if err := h.annotationService.DeleteNote(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListNotes returns an invoice's notes
func (h *AnnotationHandler) ListNotes(c *gin.Context) {
	invoiceID, err := parseInvoiceID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	notes, err := h.annotationService.ListNotes(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toNoteResponses(notes))
}

// CreateFollowUpRequest schedules a follow-up on an invoice
type CreateFollowUpRequest struct {
	Text    string    `json:"text" binding:"required"`
	DueDate time.Time `json:"due_date" binding:"required"`
}

// CreateFollowUp schedules a follow-up, attributed to the caller
func (h *AnnotationHandler) CreateFollowUp(c *gin.Context) {
	invoiceID, err := parseInvoiceID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req CreateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	author, err := getUsername(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity is required")
		return
	}

	followUp, err := h.annotationService.CreateFollowUp(c.Request.Context(), invoiceID, req.Text, req.DueDate, author)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFollowUpResponse(followUp))
}

// EditFollowUpRequest updates an open follow-up
type EditFollowUpRequest struct {
	Text    string    `json:"text" binding:"required"`
	DueDate time.Time `json:"due_date" binding:"required"`
}

// EditFollowUp updates an open follow-up's text and due date
func (h *AnnotationHandler) EditFollowUp(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid follow-up ID")
		return
	}

	var req EditFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	followUp, err := h.annotationService.EditFollowUp(c.Request.Context(), id, req.Text, req.DueDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFollowUpResponse(followUp))
}

// CompleteFollowUp marks a follow-up done
func (h *AnnotationHandler) CompleteFollowUp(c *gin.Context) {
	h.transitionFollowUp(c, h.annotationService.CompleteFollowUp)
}

// ReopenFollowUp returns a completed follow-up to the open state
func (h *AnnotationHandler) ReopenFollowUp(c *gin.Context) {
	h.transitionFollowUp(c, h.annotationService.ReopenFollowUp)
}

func (h *AnnotationHandler) transitionFollowUp(c *gin.Context, transition func(context.Context, uuid.UUID) (*ledger.FollowUp, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid follow-up ID")
		return
	}
	followUp, err := transition(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFollowUpResponse(followUp))
}

// DeleteFollowUp removes a follow-up
func (h *AnnotationHandler) DeleteFollowUp(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid follow-up ID")
		return
	}
	if err := h.annotationService.DeleteFollowUp(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListFollowUps returns an invoice's follow-ups
func (h *AnnotationHandler) ListFollowUps(c *gin.Context) {
	invoiceID, err := parseInvoiceID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	followUps, err := h.annotationService.ListFollowUps(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFollowUpResponses(followUps))
}

// ListOpenFollowUps returns every open follow-up, soonest due first
func (h *AnnotationHandler) ListOpenFollowUps(c *gin.Context) {
	followUps, err := h.annotationService.ListOpenFollowUps(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFollowUpResponses(followUps))
}

// UpsertPropertyNoteRequest creates or replaces a property's note
type UpsertPropertyNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpsertPropertyNote creates or replaces the single note for a property
func (h *AnnotationHandler) UpsertPropertyNote(c *gin.Context) {
	var req UpsertPropertyNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	author, err := getUsername(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity is required")
		return
	}

	note, err := h.annotationService.UpsertPropertyNote(c.Request.Context(), c.Param("property"), req.Text, author)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPropertyNoteResponse(note))
}

// GetPropertyNote returns a property's note
func (h *AnnotationHandler) GetPropertyNote(c *gin.Context) {
	note, err := h.annotationService.GetPropertyNote(c.Request.Context(), c.Param("property"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPropertyNoteResponse(note))
}

// DeletePropertyNote removes a property's note
func (h *AnnotationHandler) DeletePropertyNote(c *gin.Context) {
	if err := h.annotationService.DeletePropertyNote(c.Request.Context(), c.Param("property")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

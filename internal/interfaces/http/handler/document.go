package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ardash/backend/internal/infrastructure/docsearch"
)

// DocumentHandler serves invoice document lookups
type DocumentHandler struct {
	BaseHandler
	searcher docsearch.Searcher
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(searcher docsearch.Searcher) *DocumentHandler {
	return &DocumentHandler{searcher: searcher}
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/documents")
	{
		documents.GET("/search", h.Search)
	}
}

// Search looks up the stored document for an invoice number and returns
// presigned view and download links when one exists
func (h *DocumentHandler) Search(c *gin.Context) {
	invoiceNumber := strings.TrimSpace(c.Query("invoice_number"))
	if invoiceNumber == "" {
		h.BadRequest(c, "invoice_number is required")
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), invoiceNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

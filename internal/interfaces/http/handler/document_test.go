package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardash/backend/internal/infrastructure/docsearch"
)

type stubSearcher struct {
	result docsearch.Result
	err    error
	query  string
}

func (s *stubSearcher) Search(ctx context.Context, invoiceNumber string) (docsearch.Result, error) {
	s.query = invoiceNumber
	return s.result, s.err
}

func setupDocumentRouter(searcher docsearch.Searcher) *gin.Engine {
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewDocumentHandler(searcher).RegisterRoutes(api)
	return engine
}

func TestDocumentHandler_Search(t *testing.T) {
	searcher := &stubSearcher{result: docsearch.Result{
		Found:       true,
		FileName:    "INV-1001.pdf",
		ViewURL:     "https://storage.example.com/view",
		DownloadURL: "https://storage.example.com/download",
	}}
	engine := setupDocumentRouter(searcher)

	req := httptest.NewRequest("GET", "/api/v1/documents/search?invoice_number=INV-1001", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INV-1001", searcher.query)

	var resp struct {
		Success bool             `json:"success"`
		Data    docsearch.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Found)
	assert.Equal(t, "INV-1001.pdf", resp.Data.FileName)
}

func TestDocumentHandler_SearchMissingInvoiceNumber(t *testing.T) {
	engine := setupDocumentRouter(&stubSearcher{})

	req := httptest.NewRequest("GET", "/api/v1/documents/search", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_SearchNotFound(t *testing.T) {
	engine := setupDocumentRouter(&stubSearcher{result: docsearch.Result{Found: false}})

	req := httptest.NewRequest("GET", "/api/v1/documents/search?invoice_number=INV-9999", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data docsearch.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Found)
	assert.Empty(t, resp.Data.ViewURL)
}

func TestDocumentHandler_SearchStorageError(t *testing.T) {
	engine := setupDocumentRouter(&stubSearcher{err: errors.New("connection refused")})

	req := httptest.NewRequest("GET", "/api/v1/documents/search?invoice_number=INV-1001", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

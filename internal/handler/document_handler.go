package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clauselens/internal/service"
)

// maxDocumentTextLen bounds submitted document text.
const maxDocumentTextLen = 500_000

// DocumentHandler handles document analysis endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Analyze handles POST /api/v1/documents/analyze. It runs the full pipeline
// synchronously and returns the analyzed clauses with the document summary.
func (h *DocumentHandler) Analyze(c *gin.Context) {
	var req struct {
		Title        string `json:"title"`
		DocumentType string `json:"document_type"`
		Text         string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}
	if len(req.Text) > maxDocumentTextLen {
		RespondError(c, http.StatusRequestEntityTooLarge, "TEXT_TOO_LARGE", "document text exceeds maximum allowed size")
		return
	}

	resp, err := h.documentService.AnalyzeDocument(c.Request.Context(), &service.AnalyzeDocumentInput{
		Title:        req.Title,
		DocumentType: req.DocumentType,
		Text:         req.Text,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, resp)
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	docs, total, err := h.documentService.ListDocuments(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetStatus handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}
	doc, err := h.documentService.GetStatus(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// GetClauses handles GET /api/v1/documents/:id/clauses
func (h *DocumentHandler) GetClauses(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}
	clauses, err := h.documentService.GetClauses(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, clauses)
}

// GetTimeline handles GET /api/v1/documents/:id/timeline
func (h *DocumentHandler) GetTimeline(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}
	timeline, err := h.documentService.GetTimeline(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, timeline)
}

// GetClauseDetails handles GET /api/v1/clauses/:clause_id
func (h *DocumentHandler) GetClauseDetails(c *gin.Context) {
	clauseID := c.Param("clause_id")
	if clauseID == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid clause ID")
		return
	}
	details, err := h.documentService.GetClauseDetails(c.Request.Context(), clauseID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, details)
}

// Delete handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := parseDocID(c)
	if !ok {
		return
	}
	if err := h.documentService.Delete(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func parseDocID(c *gin.Context) (uuid.UUID, bool) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return uuid.Nil, false
	}
	return docID, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

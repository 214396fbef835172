package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apdesk/apdesk/internal/application/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	worklistService service.WorklistService
	reviewService   service.ReviewService
	exportService   service.ExportService
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	worklistService service.WorklistService,
	reviewService service.ReviewService,
	exportService service.ExportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		worklistService: worklistService,
		reviewService:   reviewService,
		exportService:   exportService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Issues  interface{} `json:"issues,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ReviewRequest carries the actor and optional note of a review action
type ReviewRequest struct {
	Actor string `json:"actor"`
	Note  string `json:"note"`
}

// RejectRequest carries a rejection; the note explaining what to fix is
// mandatory.
type RejectRequest struct {
	Actor string `json:"actor"`
	Note  string `json:"note" binding:"required"`
}

// listQuery bounds the limit parameter of listing endpoints. A zero limit
// falls back to the service default.
type listQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

func actorName(actor string) string {
	if actor == "" {
		return "unknown"
	}
	return actor
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// GetWorklist handles GET /api/worklist
func (h *Handlers) GetWorklist(c *gin.Context) {
	items, err := h.worklistService.GetWorklist(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load worklist", "error", err)
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "failed to load worklist"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	item, err := h.worklistService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to load invoice", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "invoice not found"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: item})
}

// UpdateCoding handles PATCH /api/invoices/:id/coding
func (h *Handlers) UpdateCoding(c *gin.Context) {
	var update service.CodingUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	item, err := h.worklistService.UpdateCoding(c.Request.Context(), c.Param("id"), update, c.GetHeader("X-Actor"))
	if err != nil {
		h.logger.Error("Failed to update coding", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "failed to update coding"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: item})
}

// GetActivity handles GET /api/invoices/:id/activity
func (h *Handlers) GetActivity(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "limit must be between 1 and 500"})
		return
	}

	entries, err := h.worklistService.GetActivity(c.Request.Context(), c.Param("id"), query.Limit)
	if err != nil {
		h.logger.Error("Failed to load activity", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to load activity"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// MarkReviewed handles POST /api/invoices/:id/review
func (h *Handlers) MarkReviewed(c *gin.Context) {
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)

	inv, err := h.reviewService.MarkReviewed(c.Request.Context(), c.Param("id"), actorName(req.Actor))
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// Approve handles POST /api/invoices/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)

	inv, err := h.reviewService.Approve(c.Request.Context(), c.Param("id"), actorName(req.Actor), req.Note)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// Reject handles POST /api/invoices/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "a note explaining the rejection is required"})
		return
	}

	inv, err := h.reviewService.Reject(c.Request.Context(), c.Param("id"), actorName(req.Actor), req.Note)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// writeReviewError maps review failures onto HTTP statuses. Validation
// refusals carry the blocking issues so the UI can render them inline.
func (h *Handlers) writeReviewError(c *gin.Context, err error) {
	var blocked *service.ValidationBlockedError
	switch {
	case errors.As(err, &blocked):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   "record has blocking validation issues",
			Issues:  blocked.Issues,
		})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrNoteRequired):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Review action failed", "error", err)
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "review action failed"})
	}
}

// CreateExport handles POST /api/exports
func (h *Handlers) CreateExport(c *gin.Context) {
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)

	batch, err := h.exportService.ExportApproved(c.Request.Context(), actorName(req.Actor))
	if err != nil {
		if errors.Is(err, service.ErrNothingToExport) {
			c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
			return
		}
		h.logger.Error("Export failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "export failed"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: batch})
}

// ListExports handles GET /api/exports
func (h *Handlers) ListExports(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "limit must be between 1 and 500"})
		return
	}

	batches, err := h.exportService.ListBatches(c.Request.Context(), query.Limit)
	if err != nil {
		h.logger.Error("Failed to list exports", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list exports"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: batches})
}

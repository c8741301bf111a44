package attempt

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/promptcraft/server/internal/shared/errors"
	"github.com/promptcraft/server/internal/utils/middleware"
)

// Handler handles HTTP requests for level attempts.
type Handler struct {
	service *Service
}

// NewHandler creates a new attempt handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the attempt routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	attempts := r.Group("/levels/:id/attempts")
	{
		attempts.POST("", h.Submit)
		attempts.POST("/record", h.Record)
		attempts.GET("", h.List)
	}
}

// Submit scores and records one level submission.
func (h *Handler) Submit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Submit(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Record persists an externally scored attempt.
func (h *Handler) Record(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recorded, err := h.service.Record(c.Request.Context(), userID, c.Param("id"), req.toPayload())
	if err != nil {
		handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recorded)
}

// List returns the caller's attempts for a level.
func (h *Handler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	attempts, err := h.service.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempts": attempts, "total": len(attempts)})
}

func handleAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidScore),
		errors.Is(err, ErrInvalidFeedback),
		errors.Is(err, ErrMissingArtifact):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUntrustedImageURL):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

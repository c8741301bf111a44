package hint

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/promptcraft/server/internal/shared/errors"
	"github.com/promptcraft/server/internal/utils/middleware"
)

// Handler handles HTTP requests for the hint session.
type Handler struct {
	service *Service
}

// NewHandler creates a new hint handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the hint routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	hints := r.Group("/levels/:id/hints")
	{
		hints.GET("", h.Preview)
		hints.POST("", h.Use)
		hints.DELETE("", h.Reset)
	}
}

// Use consumes one hint for the current level session.
func (h *Handler) Use(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	state, err := h.service.Use(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleHintError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// Preview shows the cost of the next hint without consuming it.
func (h *Handler) Preview(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	state, err := h.service.Preview(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleHintError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// Reset clears the hint counter when the user restarts the level.
func (h *Handler) Reset(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	h.service.Reset(userID, c.Param("id"))
	c.Status(http.StatusNoContent)
}

func handleHintError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoHintsRemaining):
		c.JSON(http.StatusConflict, gin.H{"error": "no_hints_remaining"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "level_not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

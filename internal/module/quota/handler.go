package quota

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promptcraft/server/internal/utils/middleware"
)

// Handler handles HTTP requests for quota metering.
type Handler struct {
	service *Service
}

// NewHandler creates a new quota handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the quota routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	q := r.Group("/quota")
	{
		q.POST("/check", h.CheckAndConsume)
		q.GET("/status", h.Status)
	}
}

// CheckAndConsume gates one metered call. A deny is a 200 with allowed=false.
func (h *Handler) CheckAndConsume(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req CheckQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, err := h.service.CheckAndConsume(c.Request.Context(), userID, req.AppID, req.QuotaType)
	if err != nil {
		handleQuotaError(c, err)
		return
	}

	c.JSON(http.StatusOK, decision)
}

// Status returns the per-counter usage view for the usage screen.
func (h *Handler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	appID := c.Query("app_id")
	status, err := h.service.Status(c.Request.Context(), userID, appID)
	if err != nil {
		handleQuotaError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func handleQuotaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAppNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "app_not_found"})
	case errors.Is(err, ErrInvalidQuotaType), errors.Is(err, ErrInvalidIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

package billing

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promptcraft/server/internal/utils/middleware"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for billing.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new billing handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the authenticated billing routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	b := r.Group("/billing")
	{
		b.POST("/checkout", h.CreateCheckout)
	}
}

// RegisterWebhookRoutes registers the unauthenticated webhook route.
func (h *Handler) RegisterWebhookRoutes(r *gin.RouterGroup) {
	r.POST("/stripe", h.StripeWebhook)
}

// CreateCheckout starts a pro-tier checkout for the caller.
func (h *Handler) CreateCheckout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	session, err := h.service.CreateCheckout(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to create checkout session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// StripeWebhook applies incoming Stripe events.
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	event, err := h.service.VerifyWebhookSignature(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("invalid webhook signature", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if err := h.service.HandleEvent(c.Request.Context(), event); err != nil {
		h.logger.Error("failed to handle webhook event",
			zap.String("event_id", event.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

package generation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promptcraft/server/internal/module/ai"
	"github.com/promptcraft/server/internal/module/quota"
	"github.com/promptcraft/server/internal/utils/middleware"
)

// GenerateTextRequest is the body of POST /generate/text.
type GenerateTextRequest struct {
	Prompt       string `json:"prompt" binding:"required"`
	SystemPrompt string `json:"systemPrompt"`
}

// GenerateImageRequest is the body of POST /generate/image.
type GenerateImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Handler handles HTTP requests for AI generation.
type Handler struct {
	service *Service
}

// NewHandler creates a new generation handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the generation routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/generate")
	{
		g.POST("/text", h.Text)
		g.POST("/image", h.Image)
	}
}

// Text generates text from a prompt.
func (h *Handler) Text(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req GenerateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.GenerateText(c.Request.Context(), userID, req.SystemPrompt, req.Prompt)
	if err != nil {
		handleGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Image generates an image from a prompt and returns its stored URL.
func (h *Handler) Image(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.GenerateImage(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		handleGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func handleGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ai.ErrProviderUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ai_unavailable"})
	case errors.Is(err, quota.ErrAppNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "app_not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

package level

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the level catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new level handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the level routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	levels := r.Group("/levels")
	{
		levels.GET("", h.List)
		levels.GET("/:id", h.Get)
	}
}

// List returns the level catalog, optionally filtered by type.
func (h *Handler) List(c *gin.Context) {
	levels, err := h.service.List(c.Request.Context(), LevelType(c.Query("type")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"levels": levels, "total": len(levels)})
}

// Get returns one level by id.
func (h *Handler) Get(c *gin.Context) {
	lvl, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrLevelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "level_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, lvl)
}

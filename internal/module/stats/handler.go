package stats

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/promptcraft/server/internal/utils/middleware"
)

const defaultLeaderboardSize = 50

// Handler handles HTTP requests for statistics and rankings.
type Handler struct {
	service     *Service
	leaderboard *LeaderboardCache
	aggregator  *Aggregator
}

// NewHandler creates a new stats handler.
func NewHandler(service *Service, leaderboard *LeaderboardCache, aggregator *Aggregator) *Handler {
	return &Handler{
		service:     service,
		leaderboard: leaderboard,
		aggregator:  aggregator,
	}
}

// RegisterRoutes registers the stats routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.Get)
	r.GET("/achievements", h.Achievements)
	r.GET("/leaderboard", h.Leaderboard)
}

// RegisterAdminRoutes registers operational routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/rankings/rebuild", h.Rebuild)
}

// Get returns the caller's statistics.
func (h *Handler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	stats, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Achievements returns the caller's unlocked achievements.
func (h *Handler) Achievements(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	achievements, err := h.service.Achievements(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements, "total": len(achievements)})
}

// Leaderboard returns the global leaderboard.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	entries, err := h.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "total": len(entries)})
}

// Rebuild triggers a full ranking recomputation.
func (h *Handler) Rebuild(c *gin.Context) {
	if err := h.aggregator.Rebuild(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rebuilt"})
}

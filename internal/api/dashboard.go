package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
)

// DashboardHandler serves the signed-in user's analytics and saved recipes.
type DashboardHandler struct {
	dashboard service.IDashboardService
	recipes   service.IRecipeService
}

func NewDashboardHandler(dashboard service.IDashboardService, recipes service.IRecipeService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, recipes: recipes}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	dashboard := router.Group("/dashboard", requireAuth)
	{
		dashboard.GET("/stats", h.Stats)
		dashboard.GET("/saved", h.Saved)
	}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Saved(c *gin.Context) {
	recipes, err := h.recipes.SavedBy(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

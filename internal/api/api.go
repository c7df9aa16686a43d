// Package api holds the gin handlers of the recipeshare HTTP API.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/model"
)

// currentUser returns the display snapshot of the authenticated user.
func currentUser(c *gin.Context) model.UserRef {
	user := middleware.Identity(c)
	if user == nil {
		return model.UserRef{}
	}
	return model.UserRef{ID: user.UserID, Name: user.DisplayName, PhotoURL: user.PhotoURL}
}

// bindJSON decodes the request body into v and records a 400 on failure.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		_ = c.Error(apperror.InvalidArgument("invalid request body: %v", err))
		return false
	}
	return true
}

// HealthHandler reports whether the store is reachable.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

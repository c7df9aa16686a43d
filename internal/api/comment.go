package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/service"
)

type CommentRequest struct {
	Text string `json:"text"`
}

type CommentHandler struct {
	comments service.ICommentService
}

func NewCommentHandler(comments service.ICommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	comments := router.Group("/recipes/:id/comments")
	{
		comments.GET("", h.ListComments)
		comments.POST("", requireAuth, h.AddComment)
		comments.DELETE("/:commentId", requireAuth, h.RemoveComment)
	}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	page, err := positiveQuery(c, "page", 1)
	if err != nil {
		_ = c.Error(err)
		return
	}
	perPage, err := positiveQuery(c, "perPage", model.DefaultCommentsPerPage)
	if err != nil {
		_ = c.Error(err)
		return
	}
	result, err := h.comments.Page(c.Request.Context(), c.Param("id"), page, perPage)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func positiveQuery(c *gin.Context, name string, fallback int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, apperror.InvalidArgument("%s must be a positive integer", name)
	}
	return n, nil
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Add(c.Request.Context(), c.Param("id"), currentUser(c), req.Text)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) RemoveComment(c *gin.Context) {
	err := h.comments.Remove(c.Request.Context(), c.Param("id"), c.Param("commentId"), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

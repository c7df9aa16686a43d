package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/model"
)

func TestListComments(t *testing.T) {
	s := setupTestServer(t)
	page := &model.CommentPage{
		Comments:   []model.Comment{{ID: "c5", UserID: "u2", Text: "yum"}},
		Page:       2,
		PerPage:    model.DefaultCommentsPerPage,
		Total:      5,
		TotalPages: 2,
	}
	s.comments.On("Page", mock.Anything, "r1", 2, model.DefaultCommentsPerPage).Return(page, nil)

	w := s.do(t, http.MethodGet, "/api/v1/recipes/r1/comments?page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.CommentPage](t, w)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, "c5", got.Comments[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/recipes/r1/comments?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddComment(t *testing.T) {
	s := setupTestServer(t)
	author := model.UserRef{ID: "u2", Name: "User u2"}
	s.comments.On("Add", mock.Anything, "r1", author, "tasty").
		Return(&model.Comment{ID: "c1", UserID: "u2", UserName: "User u2", Text: "tasty", CreatedAt: created}, nil)
	s.comments.On("Add", mock.Anything, "r1", author, "  ").
		Return(nil, apperror.InvalidArgument("comment text is required"))

	w := s.do(t, http.MethodPost, "/api/v1/recipes/r1/comments", "u2", CommentRequest{Text: "tasty"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "c1", decode[model.Comment](t, w).ID)

	w = s.do(t, http.MethodPost, "/api/v1/recipes/r1/comments", "u2", CommentRequest{Text: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveComment(t *testing.T) {
	s := setupTestServer(t)
	s.comments.On("Remove", mock.Anything, "r1", "c1", "stranger").
		Return(apperror.Forbidden("only the author or the recipe owner can remove this comment"))
	s.comments.On("Remove", mock.Anything, "r1", "c1", "u1").Return(nil)

	w := s.do(t, http.MethodDelete, "/api/v1/recipes/r1/comments/c1", "stranger", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/recipes/r1/comments/c1", "u1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

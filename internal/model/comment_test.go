package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

var commentTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func TestNewComment(t *testing.T) {
	c, err := NewComment(UserRef{ID: "u1", Name: "Ana"}, "  tasty!  ", commentTime)
	require.NoError(t, err)
	assert.Equal(t, "tasty!", c.Text)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "Ana", c.UserName)
	assert.True(t, strings.HasPrefix(c.ID, "1705314600000-"))
	assert.Equal(t, commentTime, c.CreatedAt)

	anon, err := NewComment(UserRef{ID: "u2"}, "hi", commentTime)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", anon.UserName)
	assert.NotEqual(t, c.ID, anon.ID)
}

func TestNewCommentRejectsBlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := NewComment(UserRef{ID: "u1"}, text, commentTime)
		assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	}
	_, err := NewComment(UserRef{ID: "u1"}, strings.Repeat("x", MaxCommentLength+1), commentTime)
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func recipeWithComments() *Recipe {
	r := &Recipe{ID: "r1", UserID: "owner"}
	r.AddComment(Comment{ID: "c1", UserID: "author", Text: "first"})
	r.AddComment(Comment{ID: "c2", UserID: "other", Text: "second"})
	return r
}

func TestAddCommentAppendsInOrder(t *testing.T) {
	r := recipeWithComments()
	require.Len(t, r.Comments, 2)
	assert.Equal(t, "c1", r.Comments[0].ID)
	assert.Equal(t, "c2", r.Comments[1].ID)
}

func TestRemoveComment(t *testing.T) {
	tests := []struct {
		name      string
		commentID string
		requester string
		wantErr   error
		remaining []string
	}{
		{"stranger is forbidden", "c1", "stranger", apperror.ErrForbidden, []string{"c1", "c2"}},
		{"anonymous is forbidden", "c1", "", apperror.ErrForbidden, []string{"c1", "c2"}},
		{"author removes own comment", "c1", "author", nil, []string{"c2"}},
		{"recipe owner removes any comment", "c2", "owner", nil, []string{"c1"}},
		{"unknown comment", "c9", "owner", apperror.ErrNotFound, []string{"c1", "c2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recipeWithComments()
			err := r.RemoveComment(tt.commentID, tt.requester)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			var ids []string
			for _, c := range r.Comments {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.remaining, ids)
		})
	}
}

func TestPageComments(t *testing.T) {
	var comments []Comment
	for i := 0; i < 10; i++ {
		comments = append(comments, Comment{ID: string(rune('a' + i))})
	}

	p := PageComments(comments, 1, 0)
	assert.Equal(t, DefaultCommentsPerPage, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 10, p.Total)
	assert.Len(t, p.Comments, 4)
	assert.Equal(t, "a", p.Comments[0].ID)

	last := PageComments(comments, 3, 4)
	assert.Len(t, last.Comments, 2)
	assert.Equal(t, "i", last.Comments[0].ID)

	clamped := PageComments(comments, 99, 4)
	assert.Equal(t, 3, clamped.Page)

	empty := PageComments(nil, 2, 4)
	assert.Equal(t, 1, empty.Page)
	assert.Empty(t, empty.Comments)
}

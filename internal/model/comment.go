package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

const (
	MaxCommentLength       = 2000
	DefaultCommentsPerPage = 4
)

type Comment struct {
	ID           string    `json:"id" firestore:"id"`
	UserID       string    `json:"userId" firestore:"userId"`
	UserName     string    `json:"userName" firestore:"userName"`
	UserPhotoURL string    `json:"userPhotoURL,omitempty" firestore:"userPhotoURL"`
	Text         string    `json:"text" firestore:"text"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

// NewComment builds a comment by author. The ID is derived from the creation time
// plus a random suffix.
func NewComment(author UserRef, text string, now time.Time) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, apperror.InvalidArgument("comment text must not be empty")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return Comment{}, apperror.InvalidArgument("comment text must be at most %d characters", MaxCommentLength)
	}
	return Comment{
		ID:           fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		UserID:       author.ID,
		UserName:     author.DisplayName(),
		UserPhotoURL: author.PhotoURL,
		Text:         text,
		CreatedAt:    now,
	}, nil
}

// AddComment appends c to the end of the comment list.
func (r *Recipe) AddComment(c Comment) {
	r.Comments = append(r.Comments, c)
}

// RemoveComment removes the comment with the given ID. Only the comment author or
// the recipe owner may remove a comment.
func (r *Recipe) RemoveComment(commentID, requesterID string) error {
	idx := -1
	for i, c := range r.Comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperror.NotFound("comment", commentID)
	}
	if requesterID == "" || (r.Comments[idx].UserID != requesterID && !r.IsOwner(requesterID)) {
		return apperror.Forbidden("only the comment author or the recipe owner can remove this comment")
	}
	out := make([]Comment, 0, len(r.Comments)-1)
	for _, c := range r.Comments {
		if c.ID != commentID {
			out = append(out, c)
		}
	}
	r.Comments = out
	return nil
}

// CommentPage is one display page of a recipe's comments.
type CommentPage struct {
	Comments   []Comment `json:"comments"`
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

// PageComments slices comments for display. Pages are 1-based; out of range pages
// are clamped.
func PageComments(comments []Comment, page, perPage int) CommentPage {
	if perPage <= 0 {
		perPage = DefaultCommentsPerPage
	}
	total := len(comments)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	items := make([]Comment, 0, end-start)
	items = append(items, comments[start:end]...)
	return CommentPage{
		Comments:   items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/metrics"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/storage"
)

// CommentService manages the comments embedded in recipe documents.
type CommentService struct {
	store   storage.RecipeStore
	clock   clock.Clock
	metrics *metrics.Collector
	log     *zap.Logger
}

var _ ICommentService = (*CommentService)(nil)

func NewCommentService(store storage.RecipeStore, clk clock.Clock, m *metrics.Collector, log *zap.Logger) *CommentService {
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CommentService{store: store, clock: clk, metrics: m, log: log}
}

// Add appends a comment by author and returns it.
func (s *CommentService) Add(ctx context.Context, recipeID string, author model.UserRef, text string) (*model.Comment, error) {
	if author.ID == "" {
		return nil, apperror.Unauthenticated("")
	}
	c, err := model.NewComment(author, text, s.clock.Now())
	if err != nil {
		return nil, err
	}
	_, err = s.store.UpdateRecipe(ctx, recipeID, func(r *model.Recipe) error {
		r.AddComment(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Interaction("comment")
	return &c, nil
}

// Remove deletes a comment. Only its author or the recipe owner may do so.
func (s *CommentService) Remove(ctx context.Context, recipeID, commentID, requesterID string) error {
	_, err := s.store.UpdateRecipe(ctx, recipeID, func(r *model.Recipe) error {
		return r.RemoveComment(commentID, requesterID)
	})
	if err != nil {
		return err
	}
	s.log.Info("comment removed",
		zap.String("recipe_id", recipeID),
		zap.String("comment_id", commentID),
		zap.String("user_id", requesterID),
	)
	return nil
}

// Page returns one page of a recipe's comments, oldest first. Reading comments
// does not count as a view.
func (s *CommentService) Page(ctx context.Context, recipeID string, page, perPage int) (*model.CommentPage, error) {
	r, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	p := model.PageComments(r.Comments, page, perPage)
	return &p, nil
}

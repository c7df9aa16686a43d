package service

import (
	"context"

	"github.com/pageza/recipeshare/backend/internal/model"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Validate(draft *model.RecipeDraft) error
	Create(ctx context.Context, draft *model.RecipeDraft, owner model.UserRef) (*model.Recipe, error)
	Update(ctx context.Context, id, ownerID string, patch *model.RecipePatch) (*model.Recipe, error)
	Delete(ctx context.Context, id, ownerID string) error
	Get(ctx context.Context, id string) (*model.Recipe, error)
	List(ctx context.Context, q model.ListQuery) (*model.Page, error)
	Similar(ctx context.Context, id string, limit int) ([]*model.Recipe, error)
	SavedBy(ctx context.Context, userID string) ([]*model.Recipe, error)
	SetFeatured(ctx context.Context, id string, featured bool) (*model.Recipe, error)
}

// IInteractionService defines the interface for likes, saves and ratings
type IInteractionService interface {
	ToggleLike(ctx context.Context, recipeID, userID string) (model.InteractionState, error)
	ToggleSave(ctx context.Context, recipeID, userID string) (model.InteractionState, error)
	Rate(ctx context.Context, recipeID, userID string, value int) (model.RatingState, error)
	State(ctx context.Context, recipeID, userID string) (model.ViewerState, error)
}

// ICommentService defines the interface for recipe comments
type ICommentService interface {
	Add(ctx context.Context, recipeID string, author model.UserRef, text string) (*model.Comment, error)
	Remove(ctx context.Context, recipeID, commentID, requesterID string) error
	Page(ctx context.Context, recipeID string, page, perPage int) (*model.CommentPage, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

// IDashboardService defines the interface for per-user analytics
type IDashboardService interface {
	Stats(ctx context.Context, userID string) (*Stats, error)
}

// IImageService defines the interface for recipe image uploads
type IImageService interface {
	UploadAll(ctx context.Context, ownerID string, files []ImageFile) ([]string, error)
}

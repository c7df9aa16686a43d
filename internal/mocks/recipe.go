package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipeshare/backend/internal/model"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// Validate mocks the Validate method
func (m *MockRecipeService) Validate(draft *model.RecipeDraft) error {
	args := m.Called(draft)
	return args.Error(0)
}

// Create mocks the Create method
func (m *MockRecipeService) Create(ctx context.Context, draft *model.RecipeDraft, owner model.UserRef) (*model.Recipe, error) {
	args := m.Called(ctx, draft, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// Update mocks the Update method
func (m *MockRecipeService) Update(ctx context.Context, id, ownerID string, patch *model.RecipePatch) (*model.Recipe, error) {
	args := m.Called(ctx, id, ownerID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockRecipeService) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// Get mocks the Get method
func (m *MockRecipeService) Get(ctx context.Context, id string) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// List mocks the List method
func (m *MockRecipeService) List(ctx context.Context, q model.ListQuery) (*model.Page, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page), args.Error(1)
}

// Similar mocks the Similar method
func (m *MockRecipeService) Similar(ctx context.Context, id string, limit int) ([]*model.Recipe, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

// SavedBy mocks the SavedBy method
func (m *MockRecipeService) SavedBy(ctx context.Context, userID string) ([]*model.Recipe, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

// SetFeatured mocks the SetFeatured method
func (m *MockRecipeService) SetFeatured(ctx context.Context, id string, featured bool) (*model.Recipe, error) {
	args := m.Called(ctx, id, featured)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// MockInteractionService is a mock implementation of the interaction service
type MockInteractionService struct {
	mock.Mock
}

func (m *MockInteractionService) ToggleLike(ctx context.Context, recipeID, userID string) (model.InteractionState, error) {
	args := m.Called(ctx, recipeID, userID)
	return args.Get(0).(model.InteractionState), args.Error(1)
}

func (m *MockInteractionService) ToggleSave(ctx context.Context, recipeID, userID string) (model.InteractionState, error) {
	args := m.Called(ctx, recipeID, userID)
	return args.Get(0).(model.InteractionState), args.Error(1)
}

func (m *MockInteractionService) Rate(ctx context.Context, recipeID, userID string, value int) (model.RatingState, error) {
	args := m.Called(ctx, recipeID, userID, value)
	return args.Get(0).(model.RatingState), args.Error(1)
}

func (m *MockInteractionService) State(ctx context.Context, recipeID, userID string) (model.ViewerState, error) {
	args := m.Called(ctx, recipeID, userID)
	return args.Get(0).(model.ViewerState), args.Error(1)
}

// MockCommentService is a mock implementation of the comment service
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Add(ctx context.Context, recipeID string, author model.UserRef, text string) (*model.Comment, error) {
	args := m.Called(ctx, recipeID, author, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) Remove(ctx context.Context, recipeID, commentID, requesterID string) error {
	args := m.Called(ctx, recipeID, commentID, requesterID)
	return args.Error(0)
}

func (m *MockCommentService) Page(ctx context.Context, recipeID string, page, perPage int) (*model.CommentPage, error) {
	args := m.Called(ctx, recipeID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentPage), args.Error(1)
}

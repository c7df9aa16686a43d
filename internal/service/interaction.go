package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/metrics"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/storage"
)

// InteractionService applies likes, saves and ratings. Every change runs in a
// store transaction so a set and its counter are always written together.
type InteractionService struct {
	store   storage.RecipeStore
	metrics *metrics.Collector
	log     *zap.Logger
}

var _ IInteractionService = (*InteractionService)(nil)

func NewInteractionService(store storage.RecipeStore, m *metrics.Collector, log *zap.Logger) *InteractionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InteractionService{store: store, metrics: m, log: log}
}

// ToggleLike flips the user's like and returns the new state.
func (s *InteractionService) ToggleLike(ctx context.Context, recipeID, userID string) (model.InteractionState, error) {
	if userID == "" {
		return model.InteractionState{}, apperror.Unauthenticated("")
	}
	var state model.InteractionState
	_, err := s.store.UpdateRecipe(ctx, recipeID, func(r *model.Recipe) error {
		state = r.ToggleLike(userID)
		return nil
	})
	if err != nil {
		return model.InteractionState{}, err
	}
	s.record("like", state.Active)
	return state, nil
}

// ToggleSave flips the user's save and mirrors it into their profile.
func (s *InteractionService) ToggleSave(ctx context.Context, recipeID, userID string) (model.InteractionState, error) {
	if userID == "" {
		return model.InteractionState{}, apperror.Unauthenticated("")
	}
	_, state, err := s.store.ToggleSave(ctx, recipeID, userID)
	if err != nil {
		return model.InteractionState{}, err
	}
	s.record("save", state.Active)
	return state, nil
}

// Rate sets the user's rating, replacing any previous one.
func (s *InteractionService) Rate(ctx context.Context, recipeID, userID string, value int) (model.RatingState, error) {
	if userID == "" {
		return model.RatingState{}, apperror.Unauthenticated("")
	}
	if err := model.ValidateRating(value); err != nil {
		return model.RatingState{}, err
	}
	var state model.RatingState
	_, err := s.store.UpdateRecipe(ctx, recipeID, func(r *model.Recipe) error {
		var err error
		state, err = r.Rate(userID, value)
		return err
	})
	if err != nil {
		return model.RatingState{}, err
	}
	s.metrics.Interaction("rate")
	return state, nil
}

// State returns the user's current like, save and rating on the recipe without
// counting a view.
func (s *InteractionService) State(ctx context.Context, recipeID, userID string) (model.ViewerState, error) {
	if userID == "" {
		return model.ViewerState{}, apperror.Unauthenticated("")
	}
	r, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return model.ViewerState{}, err
	}
	return r.ViewerState(userID), nil
}

// IncrementView adds one view with an atomic store increment. Views are not
// de-duplicated.
func (s *InteractionService) IncrementView(ctx context.Context, recipeID string) error {
	if err := s.store.IncrementViewCount(ctx, recipeID); err != nil {
		return err
	}
	s.metrics.RecipeViewed()
	return nil
}

func (s *InteractionService) record(kind string, active bool) {
	if !active {
		kind = "un" + kind
	}
	s.metrics.Interaction(kind)
}

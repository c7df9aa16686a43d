package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/metrics"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/storage"
	"github.com/pageza/recipeshare/backend/internal/util"
	"github.com/pageza/recipeshare/backend/internal/validation"
)

const DefaultSimilarLimit = 3

// readBackoff retries reads that failed because the store was unreachable.
// Writes are never retried.
var readBackoff = util.Backoff{
	MaxRetries: 2,
	Base:       100 * time.Millisecond,
	Retryable: func(err error) bool {
		return errors.Is(err, apperror.ErrUnavailable)
	},
}

// RecipeService handles recipe operations
type RecipeService struct {
	store    storage.Store
	clock    clock.Clock
	validate *validation.Validator
	views    *InteractionService
	metrics  *metrics.Collector
	log      *zap.Logger
	backoff  util.Backoff
}

// Ensure RecipeService implements IRecipeService
var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(store storage.Store, clk clock.Clock, m *metrics.Collector, log *zap.Logger) *RecipeService {
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeService{
		store:    store,
		clock:    clk,
		validate: validation.New(),
		views:    NewInteractionService(store, m, log),
		metrics:  m,
		log:      log,
		backoff:  readBackoff,
	}
}

// Validate cleans and validates a draft without saving it.
func (s *RecipeService) Validate(draft *model.RecipeDraft) error {
	draft.Clean()
	return s.validate.Struct(draft)
}

// Create validates the draft and stores it as a new recipe owned by owner.
func (s *RecipeService) Create(ctx context.Context, draft *model.RecipeDraft, owner model.UserRef) (*model.Recipe, error) {
	if owner.ID == "" {
		return nil, apperror.Unauthenticated("")
	}
	if err := s.Validate(draft); err != nil {
		return nil, err
	}
	r := draft.Recipe(owner, s.clock.Now())
	if err := s.store.CreateRecipe(ctx, r); err != nil {
		return nil, err
	}
	s.metrics.RecipeCreated()
	s.log.Info("recipe created", zap.String("recipe_id", r.ID), zap.String("user_id", owner.ID))
	return r, nil
}

// Update merges the provided patch fields into the recipe. Only the owner may
// update a recipe and aggregates are never touched. A missing recipe is
// reported before ownership, and ownership before the patch itself.
func (s *RecipeService) Update(ctx context.Context, id, ownerID string, patch *model.RecipePatch) (*model.Recipe, error) {
	patch.Clean()
	now := s.clock.Now()
	return s.store.UpdateRecipe(ctx, id, func(r *model.Recipe) error {
		if !r.IsOwner(ownerID) {
			return apperror.Forbidden("only the owner can edit this recipe")
		}
		if err := s.validatePatch(patch); err != nil {
			return err
		}
		patch.Apply(r, now)
		return nil
	})
}

func (s *RecipeService) validatePatch(patch *model.RecipePatch) error {
	if patch.IsEmpty() {
		return apperror.InvalidArgument("no fields to update")
	}
	if err := s.validate.Struct(patch); err != nil {
		return err
	}
	if empty := patch.EmptyLists(); len(empty) > 0 {
		fields := make(map[string]string, len(empty))
		for _, name := range empty {
			fields[name] = "must have at least 1 item(s)"
		}
		return apperror.Validation(fields)
	}
	return nil
}

// Delete removes the recipe, its comments and every saved reference to it.
func (s *RecipeService) Delete(ctx context.Context, id, ownerID string) error {
	err := s.store.DeleteRecipe(ctx, id, func(r *model.Recipe) error {
		if !r.IsOwner(ownerID) {
			return apperror.Forbidden("only the owner can delete this recipe")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("recipe deleted", zap.String("recipe_id", id), zap.String("user_id", ownerID))
	return nil
}

// Get returns the recipe and counts a view. A failed view increment is logged
// and does not fail the read.
func (s *RecipeService) Get(ctx context.Context, id string) (*model.Recipe, error) {
	r, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.views.IncrementView(ctx, id); err != nil {
		s.log.Warn("failed to record recipe view", zap.String("recipe_id", id), zap.Error(err))
		return r, nil
	}
	r.ViewCount++
	return r, nil
}

// fetch reads a recipe without counting a view.
func (s *RecipeService) fetch(ctx context.Context, id string) (*model.Recipe, error) {
	var r *model.Recipe
	err := util.RetryWithBackoff(ctx, s.backoff, func(int) error {
		var err error
		r, err = s.store.GetRecipe(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns one page of recipes.
func (s *RecipeService) List(ctx context.Context, q model.ListQuery) (*model.Page, error) {
	var page *model.Page
	err := util.RetryWithBackoff(ctx, s.backoff, func(int) error {
		var err error
		page, err = s.store.ListRecipes(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Similar returns up to limit other recipes from the same category, newest first.
func (s *RecipeService) Similar(ctx context.Context, id string, limit int) ([]*model.Recipe, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	r, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	page, err := s.List(ctx, model.ListQuery{Category: r.Category, PageSize: limit + 1})
	if err != nil {
		return nil, err
	}
	similar := make([]*model.Recipe, 0, limit)
	for _, candidate := range page.Items {
		if candidate.ID == id {
			continue
		}
		if len(similar) == limit {
			break
		}
		similar = append(similar, candidate)
	}
	return similar, nil
}

// SavedBy returns the recipes the user has saved, most recently saved first on
// SQL stores. Recipes deleted since are skipped.
func (s *RecipeService) SavedBy(ctx context.Context, userID string) ([]*model.Recipe, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return []*model.Recipe{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.RecipesByIDs(ctx, profile.SavedRecipes)
}

// SetFeatured marks a recipe as featured. It is an operator action with no
// ownership check and is not exposed over HTTP.
func (s *RecipeService) SetFeatured(ctx context.Context, id string, featured bool) (*model.Recipe, error) {
	return s.store.UpdateRecipe(ctx, id, func(r *model.Recipe) error {
		r.IsFeatured = featured
		return nil
	})
}

package storage_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/storage"
)

// storeFactory returns an empty store for one subtest.
type storeFactory func(t *testing.T, clk clock.Clock) storage.Store

var epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func sampleRecipe(owner, title, category string, createdAt time.Time, tags ...string) *model.Recipe {
	calories := 420.0
	r := &model.Recipe{
		Title:        title,
		Description:  title + " description",
		Category:     category,
		Difficulty:   model.DifficultyEasy,
		PrepTime:     10,
		CookTime:     30,
		Servings:     4,
		Tags:         tags,
		Ingredients:  []model.Ingredient{{Name: "flour", Amount: "2 cups"}},
		Instructions: []model.Instruction{{Step: "mix"}, {Step: "bake"}},
		Tips:         []string{"rest the dough"},
		Nutrition:    &model.Nutrition{Calories: &calories},
		Images:       []string{"https://cdn.example.com/" + title + ".png"},
		UserID:       owner,
		UserName:     "Owner " + owner,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	r.Normalize()
	return r
}

func runStoreContract(t *testing.T, newStore storeFactory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore) })
	t.Run("UpdateAppliesMutation", func(t *testing.T) { testUpdateAppliesMutation(t, newStore) })
	t.Run("UpdateAbortsOnError", func(t *testing.T) { testUpdateAbortsOnError(t, newStore) })
	t.Run("ConcurrentToggles", func(t *testing.T) { testConcurrentToggles(t, newStore) })
	t.Run("DeleteGuard", func(t *testing.T) { testDeleteGuard(t, newStore) })
	t.Run("DeleteRemovesSavedReferences", func(t *testing.T) { testDeleteRemovesSavedReferences(t, newStore) })
	t.Run("IncrementViewCount", func(t *testing.T) { testIncrementViewCount(t, newStore) })
	t.Run("ToggleSaveMirrorsProfile", func(t *testing.T) { testToggleSaveMirrorsProfile(t, newStore) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, newStore) })
	t.Run("ListPaginationVisitsEveryRecipeOnce", func(t *testing.T) { testListPagination(t, newStore) })
	t.Run("ListRejectsMalformedCursor", func(t *testing.T) { testListRejectsMalformedCursor(t, newStore) })
	t.Run("RecipesByIDs", func(t *testing.T) { testRecipesByIDs(t, newStore) })
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, newStore) })
	t.Run("UpsertProfileKeepsSavedRecipes", func(t *testing.T) { testUpsertProfile(t, newStore) })
}

func testCreateAndGet(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())

	r := sampleRecipe("owner", "Pancakes", "Breakfast", epoch, "sweet", "quick")
	require.NoError(t, s.CreateRecipe(ctx, r))
	require.NotEmpty(t, r.ID)

	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "Pancakes", got.Title)
	assert.Equal(t, []string{"sweet", "quick"}, got.Tags)
	assert.Equal(t, r.Ingredients, got.Ingredients)
	assert.Equal(t, r.Instructions, got.Instructions)
	require.NotNil(t, got.Nutrition)
	assert.InDelta(t, 420.0, *got.Nutrition.Calories, 0.001)
	assert.True(t, epoch.Equal(got.CreatedAt))
	assert.Zero(t, got.LikesCount)
	assert.Zero(t, got.ViewCount)
	assert.Empty(t, got.Comments)
	assert.NotNil(t, got.Ratings)
}

func testGetMissing(t *testing.T, newStore storeFactory) {
	s := newStore(t, clock.Fixed())
	_, err := s.GetRecipe(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func testUpdateAppliesMutation(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	r := sampleRecipe("owner", "Soup", "Dinner", epoch, "warm")
	require.NoError(t, s.CreateRecipe(ctx, r))

	updated, err := s.UpdateRecipe(ctx, r.ID, func(r *model.Recipe) error {
		r.Title = "Better Soup"
		r.Tags = []string{"cozy"}
		r.ToggleLike("u1")
		_, err := r.Rate("u1", 4)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "Better Soup", updated.Title)
	assert.Equal(t, 1, updated.LikesCount)

	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better Soup", got.Title)
	assert.Equal(t, []string{"u1"}, got.Likes)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 4, got.RatingSum)
	assert.Equal(t, 1, got.RatingCount)

	page, err := s.ListRecipes(ctx, model.ListQuery{Tag: "cozy"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	page, err = s.ListRecipes(ctx, model.ListQuery{Tag: "warm"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func testUpdateAbortsOnError(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	r := sampleRecipe("owner", "Salad", "Lunch", epoch)
	require.NoError(t, s.CreateRecipe(ctx, r))

	_, err := s.UpdateRecipe(ctx, r.ID, func(r *model.Recipe) error {
		r.Title = "Hijacked"
		return apperror.Forbidden("not yours")
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salad", got.Title)

	_, err = s.UpdateRecipe(ctx, "missing", func(r *model.Recipe) error { return nil })
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func testConcurrentToggles(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	r := sampleRecipe("owner", "Stew", "Dinner", epoch)
	require.NoError(t, s.CreateRecipe(ctx, r))

	const users = 12
	var wg sync.WaitGroup
	errs := make(chan error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.UpdateRecipe(ctx, r.ID, func(r *model.Recipe) error {
				r.ToggleLike(fmt.Sprintf("user-%d", i))
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, users)
	assert.Equal(t, users, got.LikesCount)
}

func testDeleteGuard(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	r := sampleRecipe("owner", "Cake", "Dessert", epoch, "sweet")
	r.AddComment(model.Comment{ID: "c1", UserID: "u2", Text: "yum"})
	require.NoError(t, s.CreateRecipe(ctx, r))

	err := s.DeleteRecipe(ctx, r.ID, func(r *model.Recipe) error {
		return apperror.Forbidden("not yours")
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecipe(ctx, r.ID, nil))
	_, err = s.GetRecipe(ctx, r.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	page, err := s.ListRecipes(ctx, model.ListQuery{Tag: "sweet"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	assert.ErrorIs(t, s.DeleteRecipe(ctx, r.ID, nil), apperror.ErrNotFound)
}

func testDeleteRemovesSavedReferences(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	require.NoError(t, s.UpsertProfile(ctx, &model.Profile{UserID: "fan", DisplayName: "Fan"}))
	r := sampleRecipe("owner", "Pie", "Dessert", epoch)
	require.NoError(t, s.CreateRecipe(ctx, r))

	_, state, err := s.ToggleSave(ctx, r.ID, "fan")
	require.NoError(t, err)
	require.True(t, state.Active)

	require.NoError(t, s.DeleteRecipe(ctx, r.ID, nil))
	p, err := s.GetProfile(ctx, "fan")
	require.NoError(t, err)
	assert.Empty(t, p.SavedRecipes)
}

func testIncrementViewCount(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	r := sampleRecipe("owner", "Tea", "Drinks", epoch)
	require.NoError(t, s.CreateRecipe(ctx, r))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.IncrementViewCount(ctx, r.ID))
	}
	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ViewCount)

	assert.ErrorIs(t, s.IncrementViewCount(ctx, "missing"), apperror.ErrNotFound)
}

func testToggleSaveMirrorsProfile(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	require.NoError(t, s.UpsertProfile(ctx, &model.Profile{UserID: "fan", DisplayName: "Fan"}))
	r := sampleRecipe("owner", "Bread", "Baking", epoch)
	require.NoError(t, s.CreateRecipe(ctx, r))

	updated, state, err := s.ToggleSave(ctx, r.ID, "fan")
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, 1, state.Count)
	assert.Equal(t, []string{"fan"}, updated.Saves)

	p, err := s.GetProfile(ctx, "fan")
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, p.SavedRecipes)

	_, state, err = s.ToggleSave(ctx, r.ID, "fan")
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Equal(t, 0, state.Count)

	p, err = s.GetProfile(ctx, "fan")
	require.NoError(t, err)
	assert.Empty(t, p.SavedRecipes)

	got, err := s.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, got.SavesCount)

	_, _, err = s.ToggleSave(ctx, "missing", "fan")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func testListFilters(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())

	a := sampleRecipe("alice", "Omelette", "Breakfast", epoch, "eggs", "quick")
	b := sampleRecipe("bob", "Waffles", "Breakfast", epoch.Add(time.Minute), "sweet")
	c := sampleRecipe("alice", "Curry", "Dinner", epoch.Add(2*time.Minute), "spicy", "quick")
	c.IsFeatured = true
	for _, r := range []*model.Recipe{a, b, c} {
		require.NoError(t, s.CreateRecipe(ctx, r))
	}

	titles := func(q model.ListQuery) []string {
		page, err := s.ListRecipes(ctx, q)
		require.NoError(t, err)
		var out []string
		for _, r := range page.Items {
			out = append(out, r.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Curry", "Waffles", "Omelette"}, titles(model.ListQuery{}))
	assert.Equal(t, []string{"Waffles", "Omelette"}, titles(model.ListQuery{Category: "Breakfast"}))
	assert.Equal(t, []string{"Curry", "Omelette"}, titles(model.ListQuery{OwnerID: "alice"}))
	assert.Equal(t, []string{"Curry", "Omelette"}, titles(model.ListQuery{Tag: "quick"}))
	assert.Equal(t, []string{"Curry"}, titles(model.ListQuery{FeaturedOnly: true}))
	assert.Equal(t, []string{"Omelette"}, titles(model.ListQuery{OwnerID: "alice", Category: "Breakfast"}))
	assert.Empty(t, titles(model.ListQuery{Category: "Snacks"}))
}

func testListPagination(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())

	const total = 11
	for i := 0; i < total; i++ {
		// Pairs of recipes share a creation time so ties are exercised.
		r := sampleRecipe("owner", fmt.Sprintf("Recipe %02d", i), "Dinner", epoch.Add(time.Duration(i/2)*time.Minute))
		for j := 0; j < i%3; j++ {
			r.ToggleLike(fmt.Sprintf("fan-%d", j))
		}
		r.ViewCount = int64(i % 4)
		require.NoError(t, s.CreateRecipe(ctx, r))
	}

	for _, sort := range []model.SortOrder{model.SortNewest, model.SortPopular, model.SortViews} {
		t.Run(string(sort), func(t *testing.T) {
			seen := map[string]bool{}
			var previous *model.Recipe
			cursor := ""
			pages := 0
			for {
				page, err := s.ListRecipes(ctx, model.ListQuery{Sort: sort, PageSize: 4, Cursor: cursor})
				require.NoError(t, err)
				pages++
				for _, r := range page.Items {
					require.False(t, seen[r.ID], "recipe %s returned twice", r.ID)
					seen[r.ID] = true
					if previous != nil {
						assertOrdered(t, sort, previous, r)
					}
					previous = r
				}
				if page.NextCursor == "" {
					break
				}
				cursor = page.NextCursor
				require.Less(t, pages, 10, "pagination does not terminate")
			}
			assert.Len(t, seen, total)
			assert.Equal(t, 3, pages)
		})
	}
}

func assertOrdered(t *testing.T, sort model.SortOrder, prev, next *model.Recipe) {
	t.Helper()
	switch sort {
	case model.SortPopular:
		require.GreaterOrEqual(t, prev.LikesCount, next.LikesCount)
		if prev.LikesCount == next.LikesCount {
			require.Greater(t, prev.ID, next.ID)
		}
	case model.SortViews:
		require.GreaterOrEqual(t, prev.ViewCount, next.ViewCount)
		if prev.ViewCount == next.ViewCount {
			require.Greater(t, prev.ID, next.ID)
		}
	default:
		require.False(t, prev.CreatedAt.Before(next.CreatedAt))
		if prev.CreatedAt.Equal(next.CreatedAt) {
			require.Greater(t, prev.ID, next.ID)
		}
	}
}

func testListRejectsMalformedCursor(t *testing.T, newStore storeFactory) {
	s := newStore(t, clock.Fixed())
	_, err := s.ListRecipes(context.Background(), model.ListQuery{Cursor: "%%%"})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func testRecipesByIDs(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	a := sampleRecipe("owner", "A", "Dinner", epoch)
	b := sampleRecipe("owner", "B", "Dinner", epoch)
	require.NoError(t, s.CreateRecipe(ctx, a))
	require.NoError(t, s.CreateRecipe(ctx, b))

	got, err := s.RecipesByIDs(ctx, []string{b.ID, "missing", a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	none, err := s.RecipesByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testAccounts(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())

	acct := &model.Account{Email: "Chef@Example.com", PasswordHash: "hash", DisplayName: "Chef", Provider: "password", CreatedAt: epoch}
	profile := &model.Profile{DisplayName: "Chef", Email: "chef@example.com", CreatedAt: epoch}
	require.NoError(t, s.CreateAccount(ctx, acct, profile))
	require.NotEmpty(t, acct.ID)
	assert.Equal(t, acct.ID, profile.UserID)

	byEmail, err := s.AccountByEmail(ctx, "CHEF@example.com")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	dup := &model.Account{Email: "chef@example.com", DisplayName: "Other", Provider: "password", CreatedAt: epoch}
	assert.ErrorIs(t, s.CreateAccount(ctx, dup, nil), apperror.ErrConflict)

	require.NoError(t, s.SetPasswordHash(ctx, acct.ID, "new-hash"))
	byID, err := s.AccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", byID.PasswordHash)

	p, err := s.GetProfile(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chef", p.DisplayName)
	assert.Empty(t, p.SavedRecipes)

	_, err = s.AccountByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func testUpsertProfile(t *testing.T, newStore storeFactory) {
	ctx := context.Background()
	s := newStore(t, clock.Fixed())
	require.NoError(t, s.UpsertProfile(ctx, &model.Profile{UserID: "u1", DisplayName: "First", Email: "u1@example.com"}))
	r := sampleRecipe("owner", "Toast", "Breakfast", epoch)
	require.NoError(t, s.CreateRecipe(ctx, r))
	_, _, err := s.ToggleSave(ctx, r.ID, "u1")
	require.NoError(t, err)

	require.NoError(t, s.UpsertProfile(ctx, &model.Profile{UserID: "u1", DisplayName: "Renamed", PhotoURL: "https://img/u1.png"}))
	p, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.DisplayName)
	assert.Equal(t, "https://img/u1.png", p.PhotoURL)
	assert.Equal(t, []string{r.ID}, p.SavedRecipes)

	_, err = s.GetProfile(ctx, "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

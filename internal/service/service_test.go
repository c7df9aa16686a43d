package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/storage"
	"github.com/pageza/recipeshare/backend/internal/testdb"
)

var (
	owner    = model.UserRef{ID: "owner", Name: "Olive", PhotoURL: "https://img/olive.png"}
	stranger = model.UserRef{ID: "stranger", Name: "Sam"}
)

func newStore(t *testing.T) (*storage.GormStore, *clock.Stub) {
	t.Helper()
	clk := clock.NewStub(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), time.Second)
	return storage.NewGormStore(testdb.SQLite(t), clk), clk
}

func validDraft() *model.RecipeDraft {
	return &model.RecipeDraft{
		Title:        "Pancakes",
		Description:  "Fluffy pancakes",
		Category:     "breakfast",
		PrepTime:     "10",
		CookTime:     "30",
		Servings:     "4",
		Ingredients:  []model.Ingredient{{Name: "flour", Amount: "2 cups"}},
		Instructions: []model.Instruction{{Step: "Mix and fry"}},
	}
}

func createRecipe(t *testing.T, svc *RecipeService, draft *model.RecipeDraft) *model.Recipe {
	t.Helper()
	r, err := svc.Create(context.Background(), draft, owner)
	require.NoError(t, err)
	return r
}

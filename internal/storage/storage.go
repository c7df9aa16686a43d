// Package storage persists recipe documents, user profiles and accounts. Every
// read-modify-write of a recipe runs inside a single backend transaction so the
// interaction sets and their counters never drift apart.
package storage

import (
	"context"

	"github.com/pageza/recipeshare/backend/internal/model"
)

// MutateFunc changes a recipe loaded inside a transaction. Returning an error
// aborts the transaction and nothing is written. Backends may call it more than
// once when a transaction is retried, so it must only depend on its argument.
type MutateFunc func(r *model.Recipe) error

// RecipeStore is the persistence contract for recipe documents.
type RecipeStore interface {
	// CreateRecipe assigns r.ID and stores r.
	CreateRecipe(ctx context.Context, r *model.Recipe) error
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	// UpdateRecipe loads the recipe, applies fn and stores the result atomically.
	UpdateRecipe(ctx context.Context, id string, fn MutateFunc) (*model.Recipe, error)
	// DeleteRecipe loads the recipe, lets guard veto the deletion and removes the
	// recipe with its comments and any profile back-references.
	DeleteRecipe(ctx context.Context, id string, guard MutateFunc) error
	ListRecipes(ctx context.Context, q model.ListQuery) (*model.Page, error)
	RecipesByIDs(ctx context.Context, ids []string) ([]*model.Recipe, error)
	// IncrementViewCount adds one view with a server-side atomic increment.
	IncrementViewCount(ctx context.Context, id string) error
	// ToggleSave flips userID in the save set and mirrors the change into the
	// user's profile in the same transaction.
	ToggleSave(ctx context.Context, recipeID, userID string) (*model.Recipe, model.InteractionState, error)
}

// ProfileStore persists user profile documents.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	// UpsertProfile creates the profile or merges the display fields into an
	// existing one. Saved recipes are never overwritten.
	UpsertProfile(ctx context.Context, p *model.Profile) error
}

// AccountStore persists login credentials.
type AccountStore interface {
	// CreateAccount stores the account and its profile together. It fails with
	// Conflict when the email is taken.
	CreateAccount(ctx context.Context, a *model.Account, p *model.Profile) error
	AccountByEmail(ctx context.Context, email string) (*model.Account, error)
	AccountByID(ctx context.Context, id string) (*model.Account, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// Store is implemented by every backend.
type Store interface {
	RecipeStore
	ProfileStore
	AccountStore
	Ping(ctx context.Context) error
	Close() error
}

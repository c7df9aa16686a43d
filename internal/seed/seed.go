// Package seed loads demo users and recipes from a TOML file into a store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/identity"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/service"
)

//go:embed default.toml
var defaultSeed string

// File is the seed file layout.
type File struct {
	Users   []User   `toml:"users"`
	Recipes []Recipe `toml:"recipes"`
}

type User struct {
	Email       string `toml:"email"`
	Password    string `toml:"password"`
	DisplayName string `toml:"display_name"`
}

type Ingredient struct {
	Name   string `toml:"name"`
	Amount string `toml:"amount"`
}

type Recipe struct {
	Owner        string       `toml:"owner"`
	Title        string       `toml:"title"`
	Description  string       `toml:"description"`
	Category     string       `toml:"category"`
	Difficulty   string       `toml:"difficulty"`
	PrepTime     int          `toml:"prep_time"`
	CookTime     int          `toml:"cook_time"`
	Servings     int          `toml:"servings"`
	Tags         []string     `toml:"tags"`
	Ingredients  []Ingredient `toml:"ingredients"`
	Instructions []string     `toml:"instructions"`
	Tips         []string     `toml:"tips"`
	Featured     bool         `toml:"featured"`
}

// Read decodes a seed file.
func Read(r io.Reader) (*File, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &f, nil
}

// Default returns the seed data bundled with the binary.
func Default() (*File, error) {
	var f File
	if _, err := toml.Decode(defaultSeed, &f); err != nil {
		return nil, fmt.Errorf("failed to decode bundled seed data: %w", err)
	}
	return &f, nil
}

// Result counts what a run created.
type Result struct {
	UsersCreated  int
	UsersExisting int
	Recipes       []*model.Recipe
}

// Seeder writes seed files through the regular services, so seeded data obeys
// the same validation as user input.
type Seeder struct {
	identity identity.Provider
	recipes  service.IRecipeService
	log      *zap.Logger
}

func New(provider identity.Provider, recipes service.IRecipeService, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{identity: provider, recipes: recipes, log: log}
}

// Run creates the users, signing in those that already exist, then the recipes.
func (s *Seeder) Run(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}
	owners := make(map[string]model.UserRef, len(f.Users))
	for _, u := range f.Users {
		auth, err := s.identity.SignUp(ctx, u.Email, u.Password, u.DisplayName)
		if errors.Is(err, apperror.ErrConflict) {
			auth, err = s.identity.SignIn(ctx, u.Email, u.Password)
			if err == nil {
				res.UsersExisting++
			}
		} else if err == nil {
			res.UsersCreated++
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		owners[u.Email] = model.UserRef{ID: auth.User.UserID, Name: auth.User.DisplayName, PhotoURL: auth.User.PhotoURL}
	}

	for _, r := range f.Recipes {
		owner, ok := owners[r.Owner]
		if !ok {
			return res, fmt.Errorf("seed recipe %q: unknown owner %q", r.Title, r.Owner)
		}
		created, err := s.recipes.Create(ctx, r.draft(), owner)
		if err != nil {
			return res, fmt.Errorf("seed recipe %q: %w", r.Title, err)
		}
		if r.Featured {
			if created, err = s.recipes.SetFeatured(ctx, created.ID, true); err != nil {
				return res, fmt.Errorf("feature recipe %q: %w", r.Title, err)
			}
		}
		s.log.Info("seeded recipe", zap.String("recipe_id", created.ID), zap.String("title", created.Title))
		res.Recipes = append(res.Recipes, created)
	}
	return res, nil
}

func (r Recipe) draft() *model.RecipeDraft {
	d := &model.RecipeDraft{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Difficulty:  model.Difficulty(r.Difficulty),
		PrepTime:    model.WholeNumber(strconv.Itoa(r.PrepTime)),
		CookTime:    model.WholeNumber(strconv.Itoa(r.CookTime)),
		Servings:    model.WholeNumber(strconv.Itoa(r.Servings)),
		Tags:        r.Tags,
		Tips:        r.Tips,
	}
	for _, ing := range r.Ingredients {
		d.Ingredients = append(d.Ingredients, model.Ingredient{Name: ing.Name, Amount: ing.Amount})
	}
	for _, step := range r.Instructions {
		d.Instructions = append(d.Instructions, model.Instruction{Step: step})
	}
	return d
}

package model

import "time"

// Difficulty is the preparation difficulty of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Ingredient struct {
	Name   string `json:"name" firestore:"name" validate:"notblank,max=200"`
	Amount string `json:"amount" firestore:"amount" validate:"notblank,max=100"`
}

type Instruction struct {
	Step string `json:"step" firestore:"step" validate:"notblank,max=2000"`
}

// Nutrition holds optional per-serving nutrition values.
type Nutrition struct {
	Calories *float64 `json:"calories,omitempty" firestore:"calories" validate:"omitempty,gte=0"`
	Protein  *float64 `json:"protein,omitempty" firestore:"protein" validate:"omitempty,gte=0"`
	Carbs    *float64 `json:"carbs,omitempty" firestore:"carbs" validate:"omitempty,gte=0"`
	Fat      *float64 `json:"fat,omitempty" firestore:"fat" validate:"omitempty,gte=0"`
	Fiber    *float64 `json:"fiber,omitempty" firestore:"fiber" validate:"omitempty,gte=0"`
}

// UserRef is the display snapshot of a user stored alongside the things they own.
type UserRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// DisplayName returns the name to show for the user, defaulting to "Anonymous".
func (u UserRef) DisplayName() string {
	if u.Name == "" {
		return "Anonymous"
	}
	return u.Name
}

// Recipe is the recipe document. The persisted document and the API payload share
// the same field names.
type Recipe struct {
	ID           string        `json:"id" firestore:"-"`
	Title        string        `json:"title" firestore:"title"`
	Description  string        `json:"description" firestore:"description"`
	Category     string        `json:"category" firestore:"category"`
	Difficulty   Difficulty    `json:"difficulty" firestore:"difficulty"`
	PrepTime     int           `json:"prepTime" firestore:"prepTime"`
	CookTime     int           `json:"cookTime" firestore:"cookTime"`
	Servings     int           `json:"servings" firestore:"servings"`
	Tags         []string      `json:"tags" firestore:"tags"`
	Ingredients  []Ingredient  `json:"ingredients" firestore:"ingredients"`
	Instructions []Instruction `json:"instructions" firestore:"instructions"`
	Tips         []string      `json:"tips" firestore:"tips"`
	Nutrition    *Nutrition    `json:"nutrition,omitempty" firestore:"nutrition"`
	Images       []string      `json:"images" firestore:"images"`

	UserID       string `json:"userId" firestore:"userId"`
	UserName     string `json:"userName" firestore:"userName"`
	UserPhotoURL string `json:"userPhotoURL,omitempty" firestore:"userPhotoURL"`

	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" firestore:"updatedAt"`
	IsFeatured bool      `json:"isFeatured" firestore:"isFeatured"`
	ViewCount  int64     `json:"viewCount" firestore:"viewCount"`

	Likes       []string       `json:"likes" firestore:"likes"`
	LikesCount  int            `json:"likesCount" firestore:"likesCount"`
	Saves       []string       `json:"saves" firestore:"saves"`
	SavesCount  int            `json:"savesCount" firestore:"savesCount"`
	Ratings     map[string]int `json:"ratings" firestore:"ratings"`
	RatingSum   int            `json:"ratingSum" firestore:"ratingSum"`
	RatingCount int            `json:"ratingCount" firestore:"ratingCount"`
	Comments    []Comment      `json:"comments" firestore:"comments"`

	AverageRating float64 `json:"averageRating" firestore:"-"`
}

// IsOwner reports whether userID owns the recipe.
func (r *Recipe) IsOwner(userID string) bool {
	return userID != "" && r.UserID == userID
}

// Normalize restores the aggregate invariants: the like and save sets hold each
// user at most once, every counter equals the cardinality or sum of its set, and
// collections are never nil. Every write path calls it before persisting.
func (r *Recipe) Normalize() {
	r.Likes = uniqueIDs(r.Likes)
	r.Saves = uniqueIDs(r.Saves)
	r.LikesCount = len(r.Likes)
	r.SavesCount = len(r.Saves)

	if r.Ratings == nil {
		r.Ratings = map[string]int{}
	}
	sum := 0
	for uid, v := range r.Ratings {
		if v < MinRating || v > MaxRating {
			delete(r.Ratings, uid)
			continue
		}
		sum += v
	}
	r.RatingSum = sum
	r.RatingCount = len(r.Ratings)
	r.AverageRating = r.Average()

	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.Instructions == nil {
		r.Instructions = []Instruction{}
	}
	if r.Tips == nil {
		r.Tips = []string{}
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	if r.Comments == nil {
		r.Comments = []Comment{}
	}
	if r.ViewCount < 0 {
		r.ViewCount = 0
	}
	if r.Difficulty == "" {
		r.Difficulty = DifficultyMedium
	}
}

// Average returns RatingSum / RatingCount, or 0 for an unrated recipe.
func (r *Recipe) Average() float64 {
	if r.RatingCount == 0 {
		return 0
	}
	return float64(r.RatingSum) / float64(r.RatingCount)
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

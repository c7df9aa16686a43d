package model

import "github.com/pageza/recipeshare/backend/internal/apperror"

const (
	MinRating = 1
	MaxRating = 5
)

// InteractionState is the confirmed state of a toggle after it was applied.
type InteractionState struct {
	RecipeID string `json:"recipeId"`
	Active   bool   `json:"active"`
	Count    int    `json:"count"`
}

// RatingState is the confirmed rating aggregate after a rating was applied.
type RatingState struct {
	RecipeID string  `json:"recipeId"`
	Value    int     `json:"value"`
	Sum      int     `json:"ratingSum"`
	Count    int     `json:"ratingCount"`
	Average  float64 `json:"averageRating"`
}

// ViewerState is one user's standing on a recipe.
type ViewerState struct {
	RecipeID string `json:"recipeId"`
	Liked    bool   `json:"liked"`
	Saved    bool   `json:"saved"`
	Rating   int    `json:"rating,omitempty"`
}

// ViewerState returns userID's like, save and rating on r.
func (r *Recipe) ViewerState(userID string) ViewerState {
	return ViewerState{
		RecipeID: r.ID,
		Liked:    r.HasLiked(userID),
		Saved:    r.HasSaved(userID),
		Rating:   r.Ratings[userID],
	}
}

// HasLiked reports whether userID is in the like set.
func (r *Recipe) HasLiked(userID string) bool {
	return contains(r.Likes, userID)
}

// HasSaved reports whether userID is in the save set.
func (r *Recipe) HasSaved(userID string) bool {
	return contains(r.Saves, userID)
}

// ToggleLike flips userID's membership in the like set and returns the new state.
func (r *Recipe) ToggleLike(userID string) InteractionState {
	var active bool
	r.Likes, active = toggle(r.Likes, userID)
	r.Normalize()
	return InteractionState{RecipeID: r.ID, Active: active, Count: r.LikesCount}
}

// ToggleSave flips userID's membership in the save set and returns the new state.
func (r *Recipe) ToggleSave(userID string) InteractionState {
	var active bool
	r.Saves, active = toggle(r.Saves, userID)
	r.Normalize()
	return InteractionState{RecipeID: r.ID, Active: active, Count: r.SavesCount}
}

// Rate records userID's rating, replacing any earlier rating by the same user.
func (r *Recipe) Rate(userID string, value int) (RatingState, error) {
	if err := ValidateRating(value); err != nil {
		return RatingState{}, err
	}
	if r.Ratings == nil {
		r.Ratings = map[string]int{}
	}
	r.Ratings[userID] = value
	r.Normalize()
	return RatingState{
		RecipeID: r.ID,
		Value:    value,
		Sum:      r.RatingSum,
		Count:    r.RatingCount,
		Average:  r.AverageRating,
	}, nil
}

// ValidateRating checks that value is within [MinRating, MaxRating].
func ValidateRating(value int) error {
	if value < MinRating || value > MaxRating {
		return apperror.InvalidArgument("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

func toggle(set []string, id string) ([]string, bool) {
	if !contains(set, id) {
		return append(set, id), true
	}
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out, false
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

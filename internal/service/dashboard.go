package service

import (
	"context"
	"errors"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/storage"
)

// Stats are the totals shown on a user's dashboard. Likes, Comments, Views and
// Saves are received on the user's own recipes; Saved counts the recipes the
// user has saved.
type Stats struct {
	Recipes  int   `json:"recipes"`
	Likes    int   `json:"likes"`
	Comments int   `json:"comments"`
	Views    int64 `json:"views"`
	Saves    int   `json:"saves"`
	Saved    int   `json:"saved"`
}

// DashboardService aggregates per-user analytics.
type DashboardService struct {
	store storage.Store
}

var _ IDashboardService = (*DashboardService)(nil)

func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Stats walks every recipe owned by userID.
func (s *DashboardService) Stats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{}
	q := model.ListQuery{OwnerID: userID, PageSize: model.MaxPageSize}
	for {
		page, err := s.store.ListRecipes(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, r := range page.Items {
			stats.Recipes++
			stats.Likes += r.LikesCount
			stats.Comments += len(r.Comments)
			stats.Views += r.ViewCount
			stats.Saves += r.SavesCount
		}
		if page.NextCursor == "" {
			break
		}
		q.Cursor = page.NextCursor
	}

	profile, err := s.store.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		stats.Saved = len(profile.SavedRecipes)
	}
	return stats, nil
}

package service

import (
	"context"

	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/storage"
)

// ProfileService handles user profile operations
type ProfileService struct {
	profiles storage.ProfileStore
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(profiles storage.ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.profiles.GetProfile(ctx, userID)
}

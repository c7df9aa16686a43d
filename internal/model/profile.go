package model

import "time"

// Profile is the user document. SavedRecipes mirrors the recipes whose save set
// contains the user.
type Profile struct {
	UserID       string    `json:"userId" firestore:"-"`
	DisplayName  string    `json:"displayName" firestore:"displayName"`
	Email        string    `json:"email" firestore:"email"`
	PhotoURL     string    `json:"photoURL,omitempty" firestore:"photoURL"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	SavedRecipes []string  `json:"savedRecipes" firestore:"savedRecipes"`
}

// Ref returns the display snapshot of the profile's user.
func (p *Profile) Ref() UserRef {
	return UserRef{ID: p.UserID, Name: p.DisplayName, PhotoURL: p.PhotoURL}
}

// Account holds the credentials of a locally registered or provider-linked user.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	PhotoURL     string
	Provider     string
	CreatedAt    time.Time
}

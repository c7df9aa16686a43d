// Package identity authenticates users: password accounts, federated sign-in,
// sign-out through token revocation and password reset.
package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserIdentity is the authenticated user behind a token.
type UserIdentity struct {
	UserID      string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// AuthResult is returned by every sign-in operation.
type AuthResult struct {
	Token     string       `json:"token" toml:"token"`
	ExpiresAt time.Time    `json:"expiresAt" toml:"expires_at"`
	User      UserIdentity `json:"user" toml:"user"`
}

// Provider is the identity contract used by the HTTP layer.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignInWithProvider(ctx context.Context, providerName, credential string) (*AuthResult, error)
	// SignOut revokes the token. Later calls to Verify with it fail.
	SignOut(ctx context.Context, token string) error
	// SendPasswordReset mails a reset link. Unknown addresses succeed silently.
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	Verify(ctx context.Context, token string) (*UserIdentity, error)
}

const purposeReset = "reset"

// Claims are the JWT claims issued for sessions and reset links.
type Claims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) identity() *UserIdentity {
	return &UserIdentity{
		UserID:      c.Subject,
		Email:       c.Email,
		DisplayName: c.Name,
		PhotoURL:    c.Picture,
	}
}

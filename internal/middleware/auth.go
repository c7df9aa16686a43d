package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/identity"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey   = "user_id"
	IdentityKey = "identity"
	TokenKey    = "token"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.UserIdentity, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperror.Unauthenticated("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abort(c, apperror.Unauthenticated("invalid authorization header format"))
			return
		}

		user, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			abort(c, err)
			return
		}

		// Store user info in context
		c.Set(UserIDKey, user.UserID)
		c.Set(IdentityKey, user)
		c.Set(TokenKey, parts[1])
		c.Next()
	}
}

// UserID returns the authenticated user's ID, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// Identity returns the authenticated user, or nil on public routes.
func Identity(c *gin.Context) *identity.UserIdentity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	user, _ := v.(*identity.UserIdentity)
	return user
}

// Token returns the bearer token of the request.
func Token(c *gin.Context) string {
	return c.GetString(TokenKey)
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

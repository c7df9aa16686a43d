package identity

import (
	"context"

	"google.golang.org/api/idtoken"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

// ExternalIdentity is a user asserted by a federated identity provider.
type ExternalIdentity struct {
	Subject  string
	Email    string
	Name     string
	PhotoURL string
}

// ProviderVerifier checks a credential issued by a federated provider.
type ProviderVerifier interface {
	VerifyCredential(ctx context.Context, credential string) (*ExternalIdentity, error)
}

// GoogleVerifier validates Google ID tokens issued for the configured client.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (g *GoogleVerifier) VerifyCredential(ctx context.Context, credential string) (*ExternalIdentity, error) {
	if credential == "" {
		return nil, apperror.InvalidArgument("credential is required")
	}
	payload, err := g.validate(ctx, credential, g.clientID)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid Google credential")
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, apperror.Unauthenticated("Google account has no email address")
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, apperror.Unauthenticated("Google email address is not verified")
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	return &ExternalIdentity{
		Subject:  payload.Subject,
		Email:    email,
		Name:     name,
		PhotoURL: picture,
	}, nil
}

package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

func TestGoogleVerifier(t *testing.T) {
	g := NewGoogleVerifier("client-id")
	var audience string
	g.validate = func(_ context.Context, token, aud string) (*idtoken.Payload, error) {
		audience = aud
		if token != "good" {
			return nil, errors.New("idtoken: invalid token")
		}
		return &idtoken.Payload{
			Subject: "1234",
			Claims: map[string]interface{}{
				"email":          "ana@gmail.com",
				"email_verified": true,
				"name":           "Ana",
				"picture":        "https://img/ana.png",
			},
		}, nil
	}

	ext, err := g.VerifyCredential(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "client-id", audience)
	assert.Equal(t, &ExternalIdentity{Subject: "1234", Email: "ana@gmail.com", Name: "Ana", PhotoURL: "https://img/ana.png"}, ext)

	_, err = g.VerifyCredential(context.Background(), "bad")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = g.VerifyCredential(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestGoogleVerifierRequiresVerifiedEmail(t *testing.T) {
	g := NewGoogleVerifier("client-id")
	g.validate = func(context.Context, string, string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Subject: "1", Claims: map[string]interface{}{
			"email":          "ana@gmail.com",
			"email_verified": false,
		}}, nil
	}
	_, err := g.VerifyCredential(context.Background(), "token")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

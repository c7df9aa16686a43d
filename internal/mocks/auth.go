package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipeshare/backend/internal/identity"
)

// MockIdentityProvider is a mock implementation of identity.Provider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) result(args mock.Arguments) (*identity.AuthResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AuthResult), args.Error(1)
}

// SignUp mocks the SignUp method
func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password, displayName string) (*identity.AuthResult, error) {
	return m.result(m.Called(ctx, email, password, displayName))
}

// SignIn mocks the SignIn method
func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.AuthResult, error) {
	return m.result(m.Called(ctx, email, password))
}

// SignInWithProvider mocks the SignInWithProvider method
func (m *MockIdentityProvider) SignInWithProvider(ctx context.Context, providerName, credential string) (*identity.AuthResult, error) {
	return m.result(m.Called(ctx, providerName, credential))
}

// SignOut mocks the SignOut method
func (m *MockIdentityProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// SendPasswordReset mocks the SendPasswordReset method
func (m *MockIdentityProvider) SendPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// ConfirmPasswordReset mocks the ConfirmPasswordReset method
func (m *MockIdentityProvider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

// Verify mocks the Verify method
func (m *MockIdentityProvider) Verify(ctx context.Context, token string) (*identity.UserIdentity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserIdentity), args.Error(1)
}

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSubscribeFiresImmediately(t *testing.T) {
	s := NewSession(nil)
	var got []*AuthResult
	unsubscribe := s.Subscribe(func(r *AuthResult) { got = append(got, r) })
	defer unsubscribe()

	require.Len(t, got, 1)
	assert.Nil(t, got[0])

	signedIn := &AuthResult{Token: "t", User: UserIdentity{UserID: "u1"}}
	s.SignedIn(signedIn)
	s.SignedOut()

	require.Len(t, got, 3)
	assert.Same(t, signedIn, got[1])
	assert.Nil(t, got[2])
	assert.Nil(t, s.Current())
}

func TestSessionUnsubscribe(t *testing.T) {
	initial := &AuthResult{Token: "t"}
	s := NewSession(initial)
	calls := 0
	unsubscribe := s.Subscribe(func(r *AuthResult) {
		calls++
		assert.Same(t, initial, r)
	})
	unsubscribe()
	unsubscribe()

	s.SignedOut()
	assert.Equal(t, 1, calls)
}

func TestSessionClose(t *testing.T) {
	s := NewSession(nil)
	calls := 0
	s.Subscribe(func(*AuthResult) { calls++ })
	s.Close()

	s.SignedIn(&AuthResult{Token: "t"})
	assert.Equal(t, 1, calls)
	assert.Nil(t, s.Current())

	s.Subscribe(func(*AuthResult) { calls++ })
	assert.Equal(t, 1, calls)
}

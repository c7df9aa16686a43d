package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/identity"
)

func TestSessionFileRoundTrip(t *testing.T) {
	f := NewSessionFile(filepath.Join(t.TempDir(), "recipeshare", "session.toml"))

	loaded, err := f.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	want := &identity.AuthResult{
		Token:     "tok",
		ExpiresAt: time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC),
		User:      identity.UserIdentity{UserID: "u1", Email: "ana@example.com", DisplayName: "Ana"},
	}
	require.NoError(t, f.Save(want))

	info, err := os.Stat(f.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err = f.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, want.Token, loaded.Token)
	assert.True(t, want.ExpiresAt.Equal(loaded.ExpiresAt))
	assert.Equal(t, want.User, loaded.User)

	require.NoError(t, f.Remove())
	require.NoError(t, f.Remove())
	loaded, err = f.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestAttachFollowsSession(t *testing.T) {
	f := NewSessionFile(filepath.Join(t.TempDir(), "session.toml"))
	s := identity.NewSession(nil)
	var errs []error
	detach := f.Attach(s, func(err error) { errs = append(errs, err) })

	s.SignedIn(&identity.AuthResult{Token: "tok", User: identity.UserIdentity{UserID: "u1"}})
	loaded, err := f.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "u1", loaded.User.UserID)

	s.SignedOut()
	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))

	detach()
	s.SignedIn(&identity.AuthResult{Token: "later"})
	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err), "detached file is not written")
	assert.Empty(t, errs)
}

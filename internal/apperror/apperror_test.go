package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := NotFound("recipe", "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))

	wrapped := fmt.Errorf("loading: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation(map[string]string{"title": "required"}), http.StatusBadRequest},
		{InvalidArgument("bad %s", "cursor"), http.StatusBadRequest},
		{Unauthenticated(""), http.StatusUnauthorized},
		{Forbidden(""), http.StatusForbidden},
		{NotFound("recipe", ""), http.StatusNotFound},
		{Conflict("exists"), http.StatusConflict},
		{Unavailable("read", errors.New("io")), http.StatusServiceUnavailable},
		{Internal("x", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestErrorMessageListsFieldsSorted(t *testing.T) {
	err := Validation(map[string]string{"title": "is required", "servings": "must be a whole number"})
	assert.Equal(t, "validation failed (servings: must be a whole number; title: is required)", err.Error())
}

func TestAsWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	e := As(cause)
	assert.Equal(t, KindInternal, e.Kind)
	assert.ErrorIs(t, e, cause)

	known := Forbidden("nope")
	assert.Same(t, known, As(fmt.Errorf("ctx: %w", known)))
}

func TestUnavailableUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("get recipe", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to get recipe: connection refused", err.Error())
}

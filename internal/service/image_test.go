package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/objectstore"
)

func newImageService(t *testing.T) *ImageService {
	t.Helper()
	store, err := objectstore.NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	return NewImageService(store, clock.Fixed(), nil, nil)
}

func TestUploadAllKeepsInputOrder(t *testing.T) {
	svc := newImageService(t)
	files := []ImageFile{
		{Name: "a.png", Size: 1, Body: strings.NewReader("a")},
		{Name: "b.jpg", Size: 2, Body: strings.NewReader("bb")},
		{Name: "a.png", Size: 3, Body: strings.NewReader("ccc")},
	}
	urls, err := svc.UploadAll(context.Background(), "owner", files)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://localhost:8080/uploads/recipes/owner/1705314600000_0_a.png",
		"http://localhost:8080/uploads/recipes/owner/1705314600000_1_b.jpg",
		"http://localhost:8080/uploads/recipes/owner/1705314600000_2_a.png",
	}, urls)
}

func TestUploadAllRejectsUnsupportedFiles(t *testing.T) {
	svc := newImageService(t)
	_, err := svc.UploadAll(context.Background(), "owner", []ImageFile{
		{Name: "notes.txt", Size: 1, Body: strings.NewReader("x")},
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	many := make([]ImageFile, MaxImagesPerRecipe+1)
	for i := range many {
		many[i] = ImageFile{Name: "a.png", Body: strings.NewReader("x")}
	}
	_, err = svc.UploadAll(context.Background(), "owner", many)
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestUploadAllReportsFailure(t *testing.T) {
	svc := newImageService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.UploadAll(ctx, "owner", []ImageFile{{Name: "a.png", Size: 1, Body: strings.NewReader("a")}})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}

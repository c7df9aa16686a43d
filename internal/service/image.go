package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/metrics"
	"github.com/pageza/recipeshare/backend/internal/objectstore"
)

const MaxImagesPerRecipe = 10

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageFile is an image waiting to be uploaded.
type ImageFile struct {
	Name string
	Size int64
	Body io.Reader
}

// ImageService uploads recipe images to object storage.
type ImageService struct {
	store   objectstore.Store
	clock   clock.Clock
	metrics *metrics.Collector
	log     *zap.Logger
}

var _ IImageService = (*ImageService)(nil)

// NewImageService creates a new ImageService instance
func NewImageService(store objectstore.Store, clk clock.Clock, m *metrics.Collector, log *zap.Logger) *ImageService {
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageService{store: store, clock: clk, metrics: m, log: log}
}

// UploadAll uploads the files concurrently and returns their URLs in input
// order. The first failure cancels the remaining uploads.
func (s *ImageService) UploadAll(ctx context.Context, ownerID string, files []ImageFile) ([]string, error) {
	if len(files) > MaxImagesPerRecipe {
		return nil, apperror.InvalidArgument("at most %d images are allowed", MaxImagesPerRecipe)
	}
	for _, f := range files {
		if !imageExtensions[strings.ToLower(path.Ext(f.Name))] {
			return nil, apperror.InvalidArgument("unsupported image type %q", f.Name)
		}
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			key := objectstore.ObjectPath(ownerID, fmt.Sprintf("%d_%s", i, f.Name), s.clock.Now())
			url, err := s.store.Upload(gctx, key, f.Body, f.Size).Wait()
			s.metrics.Upload(err == nil)
			if err != nil {
				s.log.Warn("image upload failed", zap.String("key", key), zap.Error(err))
				return apperror.Unavailable("upload image", err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

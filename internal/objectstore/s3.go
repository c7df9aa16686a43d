package objectstore

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configure an S3Store.
type S3Options struct {
	Bucket string
	Region string
	// Endpoint and PathStyle target S3-compatible servers such as MinIO.
	Endpoint  string
	PathStyle bool
	// PublicURL is the base URL objects are served from, e.g. a CDN.
	PublicURL string
}

// S3Store uploads to an S3 bucket with the multipart upload manager.
type S3Store struct {
	uploader *manager.Uploader
	opts     S3Options
}

func NewS3Store(client manager.UploadAPIClient, opts S3Options) *S3Store {
	return &S3Store{
		uploader: manager.NewUploader(client),
		opts:     opts,
	}
}

func (s *S3Store) Upload(ctx context.Context, objectPath string, body io.Reader, size int64) *Upload {
	return start(ctx, body, size, func(ctx context.Context, r io.Reader) (string, error) {
		input := &s3.PutObjectInput{
			Bucket: aws.String(s.opts.Bucket),
			Key:    aws.String(objectPath),
			Body:   r,
		}
		if ct := mime.TypeByExtension(path.Ext(objectPath)); ct != "" {
			input.ContentType = aws.String(ct)
		}
		if _, err := s.uploader.Upload(ctx, input); err != nil {
			return "", fmt.Errorf("failed to upload %s to S3: %w", objectPath, err)
		}
		return s.URL(objectPath), nil
	})
}

// URL returns the public URL of key.
func (s *S3Store) URL(key string) string {
	switch {
	case s.opts.PublicURL != "":
		return strings.TrimRight(s.opts.PublicURL, "/") + "/" + key
	case s.opts.Endpoint != "" && s.opts.PathStyle:
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.opts.Endpoint, "/"), s.opts.Bucket, key)
	case s.opts.Endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.opts.Endpoint, "/"), key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
	}
}

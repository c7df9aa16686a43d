// Package objectstore uploads binary objects and returns stable public URLs.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/pageza/recipeshare/backend/config"
)

// Store uploads objects. Upload returns immediately; the transfer runs in its
// own goroutine and is observed through the returned handle.
type Store interface {
	Upload(ctx context.Context, objectPath string, body io.Reader, size int64) *Upload
}

// Progress reports bytes sent so far. TotalBytes is zero when the size is unknown.
type Progress struct {
	BytesTransferred int64
	TotalBytes       int64
}

// Upload is an in-flight transfer.
type Upload struct {
	progress chan Progress
	done     chan struct{}
	cancel   context.CancelFunc

	mu  sync.Mutex
	url string
	err error
}

// Progress returns a channel of progress updates. Slow readers only miss
// intermediate updates; the latest one is always kept. The channel is closed
// when the transfer finishes.
func (u *Upload) Progress() <-chan Progress {
	return u.progress
}

// Wait blocks until the transfer finishes and returns the object URL.
func (u *Upload) Wait() (string, error) {
	<-u.done
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.url, u.err
}

// Cancel aborts the transfer. Wait then returns context.Canceled.
func (u *Upload) Cancel() {
	u.cancel()
}

type transferFunc func(ctx context.Context, body io.Reader) (string, error)

// start runs transfer in a goroutine, counting the bytes it reads from body.
func start(ctx context.Context, body io.Reader, size int64, transfer transferFunc) *Upload {
	ctx, cancel := context.WithCancel(ctx)
	u := &Upload{
		progress: make(chan Progress, 16),
		done:     make(chan struct{}),
		cancel:   cancel,
	}
	go func() {
		defer cancel()
		r := &progressReader{ctx: ctx, r: body, total: size, report: u.report}
		url, err := transfer(ctx, r)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil && errors.Is(ctx.Err(), context.Canceled) {
			err = context.Canceled
		}
		if err == nil {
			total := size
			if total <= 0 {
				total = r.n
			}
			u.report(Progress{BytesTransferred: r.n, TotalBytes: total})
		}
		u.mu.Lock()
		u.url, u.err = url, err
		u.mu.Unlock()
		close(u.progress)
		close(u.done)
	}()
	return u
}

// report never blocks the transfer. When the buffer is full the oldest update
// is dropped.
func (u *Upload) report(p Progress) {
	select {
	case u.progress <- p:
		return
	default:
	}
	select {
	case <-u.progress:
	default:
	}
	select {
	case u.progress <- p:
	default:
	}
}

type progressReader struct {
	ctx    context.Context
	r      io.Reader
	n      int64
	total  int64
	report func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.n += int64(n)
		p.report(Progress{BytesTransferred: p.n, TotalBytes: p.total})
	}
	return n, err
}

// ObjectPath returns the key for an image uploaded by ownerID:
// recipes/{owner}/{unix millis}_{filename}.
func ObjectPath(ownerID, filename string, now time.Time) string {
	return path.Join("recipes", sanitize(ownerID, "anonymous"),
		fmt.Sprintf("%d_%s", now.UnixMilli(), sanitize(path.Base(strings.ReplaceAll(filename, `\`, "/")), "image")))
}

func sanitize(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := strings.Trim(b.String(), ".")
	if s == "" || strings.Trim(s, "_") == "" {
		return fallback
	}
	return s
}

// New builds the object store selected by the configuration.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ObjectStore {
	case config.ObjectStoreS3:
		client, err := config.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		return NewS3Store(client, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
			PathStyle: cfg.S3UsePathStyle,
		}), nil
	case config.ObjectStoreLocal:
		return NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
	default:
		return nil, fmt.Errorf("unknown object store %q", cfg.ObjectStore)
	}
}

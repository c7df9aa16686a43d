package identity

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pageza/recipeshare/backend/internal/clock"
)

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	clk := clock.Fixed()
	r := NewMemoryRevoker(clk)

	require.NoError(t, r.Revoke(ctx, "a", clk.Now().Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "expired", clk.Now().Add(-time.Minute)))

	revoked, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = r.IsRevoked(ctx, "expired")
	assert.False(t, revoked)
	revoked, _ = r.IsRevoked(ctx, "unknown")
	assert.False(t, revoked)

	clk.Advance(2 * time.Hour)
	revoked, _ = r.IsRevoked(ctx, "a")
	assert.False(t, revoked, "revocations lapse when the token would have expired")
}

func TestMemoryRevokerClaim(t *testing.T) {
	ctx := context.Background()
	clk := clock.Fixed()
	r := NewMemoryRevoker(clk)
	until := clk.Now().Add(time.Hour)

	ok, err := r.Claim(ctx, "reset-1", until)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Claim(ctx, "reset-1", until)
	require.NoError(t, err)
	assert.False(t, ok, "a claimed token cannot be claimed again")

	revoked, _ := r.IsRevoked(ctx, "reset-1")
	assert.True(t, revoked)

	require.NoError(t, r.Revoke(ctx, "logged-out", until))
	ok, _ = r.Claim(ctx, "logged-out", until)
	assert.False(t, ok)

	ok, _ = r.Claim(ctx, "expired", clk.Now().Add(-time.Second))
	assert.False(t, ok)
}

func TestMemoryRevokerClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	clk := clock.Fixed()
	r := NewMemoryRevoker(clk)

	var wg sync.WaitGroup
	var claimed atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := r.Claim(ctx, "reset-1", clk.Now().Add(time.Hour)); err == nil && ok {
				claimed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), claimed.Load())
}

func TestRedisRevoker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { client.Close() })

	r := NewRedisRevoker(client, nil)
	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, revokedKeyPrefix+"jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	ok, err := r.Claim(ctx, "reset-1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Claim(ctx, "reset-1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = r.Claim(ctx, "jti-1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "revoked tokens cannot be claimed")
}

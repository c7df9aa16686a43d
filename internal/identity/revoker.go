package identity

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
)

// TokenRevoker remembers revoked token IDs until the tokens would have expired.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Claim revokes jti only if it is not revoked yet and reports whether this
	// call did it. Single-use tokens are spent with Claim.
	Claim(ctx context.Context, jti string, until time.Time) (bool, error)
}

const revokedKeyPrefix = "recipeshare:revoked:"

// RedisRevoker stores revocations as keys that expire with the token.
type RedisRevoker struct {
	client *redis.Client
	clock  clock.Clock
}

func NewRedisRevoker(client *redis.Client, clk clock.Clock) *RedisRevoker {
	if clk == nil {
		clk = clock.Real{}
	}
	return &RedisRevoker{client: client, clock: clk}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.clock.Now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return apperror.Unavailable("revoke token", err)
	}
	return nil
}

func (r *RedisRevoker) Claim(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := until.Sub(r.clock.Now())
	if ttl <= 0 {
		return false, nil
	}
	ok, err := r.client.SetNX(ctx, revokedKeyPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, apperror.Unavailable("claim token", err)
	}
	return ok, nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, apperror.Unavailable("check token", err)
	}
	return n > 0, nil
}

// MemoryRevoker keeps revocations in process. Used when Redis is not configured
// and in tests; revocations do not survive a restart.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	clock   clock.Clock
}

func NewMemoryRevoker(clk clock.Clock) *MemoryRevoker {
	if clk == nil {
		clk = clock.Real{}
	}
	return &MemoryRevoker{revoked: make(map[string]time.Time), clock: clk}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
		}
	}
	if until.After(now) {
		m.revoked[jti] = until
	}
	return nil
}

func (m *MemoryRevoker) Claim(_ context.Context, jti string, until time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	if !until.After(now) {
		return false, nil
	}
	if exp, ok := m.revoked[jti]; ok && exp.After(now) {
		return false, nil
	}
	m.revoked[jti] = until
	return true, nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[jti]
	return ok && exp.After(m.clock.Now()), nil
}

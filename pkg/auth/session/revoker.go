package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"

	redisclient "github.com/rednammadhavi/laptopcare-erp/pkg/redis"
)

// Revoker tracks access tokens that were logged out before their expiry.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevoker keeps revoked token IDs in an in-process expiring set.
// It is the default when no Redis endpoint is configured; restarts clear it,
// which is acceptable because tokens carry their own expiry.
type MemoryRevoker struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker constructs an empty in-process revocation set.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records the jti until the supplied TTL elapses.
func (m *MemoryRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return fmt.Errorf("jti is required")
	}
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.entries[jti] = m.now().Add(ttl)
	return nil
}

// IsRevoked reports whether the jti is currently denied.
func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(expiry) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

func (m *MemoryRevoker) sweepLocked() {
	now := m.now()
	for jti, expiry := range m.entries {
		if now.After(expiry) {
			delete(m.entries, jti)
		}
	}
}

type denylistStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	RevocationKey(jti string) string
}

// RedisRevoker stores revoked token IDs as Redis denylist keys so revocation
// survives restarts and is shared across instances.
type RedisRevoker struct {
	store denylistStore
}

// NewRedisRevoker constructs a revoker backed by the shared Redis client.
func NewRedisRevoker(client *redisclient.Client) (*RedisRevoker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisRevoker{store: client}, nil
}

// Revoke writes a denylist marker that expires with the token itself.
func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return fmt.Errorf("jti is required")
	}
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, r.store.RevocationKey(jti), "1", ttl)
}

// IsRevoked checks for a denylist marker.
func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := r.store.Get(ctx, r.store.RevocationKey(jti))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

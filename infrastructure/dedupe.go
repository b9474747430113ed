package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "escrowbot:post:"

// RedisDeduper remembers processed post IDs in Redis for a TTL
type RedisDeduper struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisDeduper creates a Redis-backed deduper
func NewRedisDeduper(client redis.Cmdable, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

// FirstSeen atomically marks postID and reports whether this is its first delivery
func (d *RedisDeduper) FirstSeen(ctx context.Context, postID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupeKeyPrefix+postID, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark post %s: %w", postID, err)
	}
	return ok, nil
}

// MemoryDeduper remembers processed post IDs in process memory for a TTL
type MemoryDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryDeduper creates an in-memory deduper
func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// FirstSeen marks postID and reports whether this is its first delivery
func (d *MemoryDeduper) FirstSeen(_ context.Context, postID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, expires := range d.seen {
		if now.After(expires) {
			delete(d.seen, id)
		}
	}

	if _, ok := d.seen[postID]; ok {
		return false, nil
	}
	d.seen[postID] = now.Add(d.ttl)
	return true, nil
}

package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func Exists(ctx context.Context, rdb redis.Cmdable, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Cache is a byte-slice cache over Redis. Lookup failures are reported as
// misses so callers fall back to the database.
type Cache struct {
	RDB redis.Cmdable
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.RDB.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.RDB.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	return c.RDB.Incr(ctx, key).Result()
}

// Denylist records revoked token ids until they would have expired anyway.
type Denylist struct {
	RDB redis.Cmdable
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.RDB.Set(ctx, keyf(KeyRevokedToken, tokenID), "1", ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return Exists(ctx, d.RDB, keyf(KeyRevokedToken, tokenID))
}

// Deduper claims an id once per TTL window. SETNX makes the claim atomic
// across consumer workers.
type Deduper struct {
	RDB     redis.Cmdable
	Service string
}

// Claim returns true the first time id is seen.
func (d *Deduper) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := d.RDB.SetNX(ctx, keyf(KeyDedup, d.Service, id), "1", TTLDedup).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return ok, nil
}

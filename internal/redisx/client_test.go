package redisx

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "catalog:premade:price", PremadeKey("price"))
	assert.Equal(t, "auth:revoked:abc", keyf(KeyRevokedToken, "abc"))
	assert.Equal(t, "dedup:notifier:e1", keyf(KeyDedup, "notifier", "e1"))
}

type counterCache struct{ data map[string][]byte }

func (c *counterCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, ok := c.data[key]
	return b, ok
}

func (c *counterCache) Incr(ctx context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func TestGeneration(t *testing.T) {
	ctx := context.Background()
	c := &counterCache{data: map[string][]byte{}}

	assert.Equal(t, int64(0), Generation(ctx, c, KeyBoard))
	assert.Equal(t, "pipeline:board:v0", VersionKey(KeyBoard, 0))

	require.NoError(t, Bump(ctx, c, KeyBoard))
	require.NoError(t, Bump(ctx, c, KeyBoard))
	assert.Equal(t, int64(2), Generation(ctx, c, KeyBoard))
	assert.Equal(t, int64(0), Generation(ctx, c, KeyPremadeGroup), "groups are independent")

	c.data["pipeline:board:gen"] = []byte("garbage")
	assert.Equal(t, int64(0), Generation(ctx, c, KeyBoard))
}

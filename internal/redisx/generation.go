package redisx

import (
	"context"
	"strconv"
)

// Generations is the cache method set needed for versioned entries.
type Generations interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Incr(ctx context.Context, key string) (int64, error)
}

// Generation returns the current generation of group. Entries are read and
// written under VersionKey(key, gen), so a snapshot taken before Bump is
// never served afterwards, even if it is stored late. A missing counter is
// generation 0.
func Generation(ctx context.Context, c Generations, group string) int64 {
	b, ok := c.Get(ctx, generationKey(group))
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Bump moves group to a new generation. Call it after the write committed.
func Bump(ctx context.Context, c Generations, group string) error {
	_, err := c.Incr(ctx, generationKey(group))
	return err
}

// Package cache stores rendered dashboard views in Redis.
//
// Each view path owns one hash ("page:<path>"). Every query/page variant
// of the view is a field of that hash, so revalidating a path is a single
// DEL no matter how many variants were cached.
//
// A path also owns a generation counter ("page-gen:<path>") that
// Revalidate increments. Readers take the generation before querying the
// store and Set only writes while it is unchanged, so a page computed
// before a write can never be cached after that write's revalidation.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "page:"
	generationPrefix = "page-gen:"
)

// setScript writes a variant only if the generation still matches.
//
// KEYS[1] page hash, KEYS[2] generation counter
// ARGV[1] expected generation, ARGV[2] variant, ARGV[3] value, ARGV[4] ttl ms
var setScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return 1
`)

// revalidateScript bumps the generation and drops every variant at once.
//
// KEYS[1] page hash, KEYS[2] generation counter
var revalidateScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
redis.call('DEL', KEYS[1])
return 1
`)

// Key returns the Redis key holding the variants of path.
func Key(path string) string {
	return keyPrefix + path
}

// GenerationKey returns the Redis key counting revalidations of path.
func GenerationKey(path string) string {
	return generationPrefix + path
}

// PageCache caches serialized views. A zero ttl keeps entries until the
// path is revalidated.
type PageCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewPageCache(client redis.Cmdable, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached variant of path. ok is false on a miss.
func (c *PageCache) Get(ctx context.Context, path, variant string) (value []byte, ok bool, err error) {
	value, err = c.client.HGet(ctx, Key(path), variant).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached page %s: %w", path, err)
	}
	return value, true, nil
}

// Generation returns how many times path has been revalidated. Take it
// before reading the data a page is built from and pass it to Set.
func (c *PageCache) Generation(ctx context.Context, path string) (int64, error) {
	generation, err := c.client.Get(ctx, GenerationKey(path)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading page %s generation: %w", path, err)
	}
	return generation, nil
}

// Set stores a variant of path computed at generation. stored is false,
// with no error, when path was revalidated since: the value is stale.
func (c *PageCache) Set(ctx context.Context, path, variant string, generation int64, value []byte) (stored bool, err error) {
	res, err := setScript.Run(ctx, c.client,
		[]string{Key(path), GenerationKey(path)},
		strconv.FormatInt(generation, 10), variant, value, c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("caching page %s: %w", path, err)
	}
	return res == 1, nil
}

// Revalidate drops every cached variant of path so the next read
// recomputes it from the store.
func (c *PageCache) Revalidate(ctx context.Context, path string) error {
	err := revalidateScript.Run(ctx, c.client, []string{Key(path), GenerationKey(path)}).Err()
	if err != nil {
		return fmt.Errorf("revalidating page %s: %w", path, err)
	}
	return nil
}

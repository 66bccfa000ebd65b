// Package cache provides a Redis-backed store for owned-resource lists.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	listPrefix = "notekeeper:list:"
	genPrefix  = "notekeeper:gen:"
)

// cmdable is the slice of the go-redis client the cache needs.
type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// ListCache stores JSON-encoded lists under one key per user, kind and
// generation. The generation counter has no expiry; list entries expire
// after ttl.
type ListCache struct {
	client cmdable
	ttl    time.Duration
}

func NewListCache(client cmdable, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func genKey(userID string) string {
	return genPrefix + userID
}

func listKey(kind models.Kind, userID string, gen int64) string {
	return listPrefix + string(kind) + ":" + userID + ":" + strconv.FormatInt(gen, 10)
}

// generation returns the user's current generation. A user that was never
// invalidated is at generation 0.
func (c *ListCache) generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Load decodes the list cached under the user's current generation into dst
// and returns that generation. A missing key is a miss, not an error.
func (c *ListCache) Load(ctx context.Context, kind models.Kind, userID string, dst any) (int64, bool, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return 0, false, err
	}

	b, err := c.client.Get(ctx, listKey(kind, userID, gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return gen, false, nil
		}
		return gen, false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return gen, false, err
	}
	return gen, true, nil
}

// Store caches v under gen. Readers only look under the current generation,
// so storing under an outdated one has no visible effect.
func (c *ListCache) Store(ctx context.Context, kind models.Kind, userID string, gen int64, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listKey(kind, userID, gen), b, c.ttl).Err()
}

// Invalidate moves the user to a new generation, dropping every cached list
// of both kinds. Deleting a folder also changes the user's notes, so kinds
// are not invalidated separately.
func (c *ListCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Incr(ctx, genKey(userID)).Err()
}

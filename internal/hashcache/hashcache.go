// Package hashcache remembers image content hashes across runs in Redis so
// known images skip the database lookup.
package hashcache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "pdfcorpus:image-hashes"

type Cache struct {
	client *redis.Client
	key    string
}

func New(addr, password string, db int) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		key:    DefaultKey,
	}
}

// Ping checks that the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Seen reports whether hash was added before.
func (c *Cache) Seen(ctx context.Context, hash string) (bool, error) {
	ok, err := c.client.SIsMember(ctx, c.key, hash).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember: %w", err)
	}
	return ok, nil
}

func (c *Cache) Add(ctx context.Context, hash string) error {
	return c.client.SAdd(ctx, c.key, hash).Err()
}

func (c *Cache) Close() error { return c.client.Close() }

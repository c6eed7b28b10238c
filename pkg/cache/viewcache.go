// Package cache provides a small JSON-over-Redis cache for read model
// projections.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache stores JSON projections of type T under string keys. A zero TTL
// keeps entries until they are overwritten.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewViewCache[T any](client *goredis.Client, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl}
}

// Get retrieves and unmarshals a value. Returns (zero, false) on any miss or
// deserialization error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var v T
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

// Set marshals value and stores it under key. Errors are logged rather than
// returned; a failed cache write is non-fatal.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("viewcache: marshal %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("viewcache: write %s: %v", key, err)
	}
}

// Delete removes a key.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("viewcache: delete %s: %v", key, err)
	}
}

package cache

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/turuapp/backend/pkg/account"
)

const profileKeyPrefix = "account:view:"

// ProfileCache adapts ViewCache to sanitized account views keyed by id.
// It satisfies account.ViewCache.
type ProfileCache struct {
	views *ViewCache[account.View]
}

func NewProfileCache(client *goredis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{views: NewViewCache[account.View](client, ttl)}
}

func (c *ProfileCache) Get(ctx context.Context, id int64) (account.View, bool) {
	return c.views.Get(ctx, profileKey(id))
}

func (c *ProfileCache) Set(ctx context.Context, id int64, v account.View) {
	c.views.Set(ctx, profileKey(id), v)
}

func profileKey(id int64) string {
	return profileKeyPrefix + strconv.FormatInt(id, 10)
}

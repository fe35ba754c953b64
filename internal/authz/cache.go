// AngelaMos | 2026
// cache.go

package authz

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

const cacheKeyPrefix = "authz:permissions:"

type cachedPermissions struct {
	UserID string    `json:"user_id"`
	Role   role.Role `json:"role"`
}

// RedisCache stores resolved permissions per external id for a short TTL.
// Every failure degrades to a miss so the directory stays authoritative.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(
	client redis.Cmdable,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) Get(
	ctx context.Context,
	externalID string,
) (*role.Permissions, bool) {
	data, err := c.client.Get(ctx, cacheKey(externalID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "authz cache read failed",
				"external_id", externalID,
				"error", err,
			)
		}
		return nil, false
	}

	var cached cachedPermissions
	if err := json.Unmarshal(data, &cached); err != nil || !cached.Role.Valid() {
		return nil, false
	}

	return role.NewPermissions(cached.UserID, cached.Role), true
}

func (c *RedisCache) Set(
	ctx context.Context,
	externalID string,
	perms *role.Permissions,
) {
	if perms == nil {
		return
	}

	data, err := json.Marshal(cachedPermissions{
		UserID: perms.UserID,
		Role:   perms.Role,
	})
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(externalID), data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "authz cache write failed",
			"external_id", externalID,
			"error", err,
		)
	}
}

// Invalidate drops the entry so the next request reads the directory.
func (c *RedisCache) Invalidate(ctx context.Context, externalID string) {
	if err := c.client.Del(ctx, cacheKey(externalID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "authz cache invalidate failed",
			"external_id", externalID,
			"error", err,
		)
	}
}

func cacheKey(externalID string) string {
	return cacheKeyPrefix + externalID
}

package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:jti:"

type kv interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Exists(ctx context.Context, keys ...string) *goredis.IntCmd
}

// Denylist stores revoked token ids with a TTL matching the token expiry,
// so entries vanish once the token could no longer be used anyway.
type Denylist struct {
	c kv
}

func NewDenylist(c kv) *Denylist {
	return &Denylist{c: c}
}

func (d *Denylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.c.Set(ctx, denylistPrefix+jti, "1", ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.c.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

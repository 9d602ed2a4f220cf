// Package directory resolves caller-supplied raw identity tokens to
// canonical user ids. Resolution is best-effort: any id the directory
// does not know passes through unchanged and is treated as a guest
// identity, never rejected.
package directory

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/auramusic/syncroom/internal/domain"
)

type Directory interface {
	Resolve(ctx context.Context, raw string) domain.UserID
}

// RedisDirectory maps external-auth ids (recognized by prefix) to
// canonical ids through a redis hash maintained by the user service.
type RedisDirectory struct {
	rdb    *redis.Client
	prefix string
}

const identitiesKey = "identities"

func NewRedisDirectory(rdb *redis.Client, prefix string) *RedisDirectory {
	return &RedisDirectory{rdb: rdb, prefix: prefix}
}

func (d *RedisDirectory) Resolve(ctx context.Context, raw string) domain.UserID {
	if d.prefix == "" || !strings.HasPrefix(raw, d.prefix) {
		return domain.UserID(raw)
	}
	canonical, err := d.rdb.HGet(ctx, identitiesKey, raw).Result()
	if err == redis.Nil {
		return domain.UserID(raw)
	}
	if err != nil {
		// Lookup failure degrades to guest identity rather than
		// failing the event.
		log.Warn().Err(err).Str("module", "directory").Str("raw", raw).Msg("identity lookup failed")
		return domain.UserID(raw)
	}
	return domain.UserID(canonical)
}

// Static is a fixed mapping for tests and offline mode.
type Static map[string]domain.UserID

func (s Static) Resolve(_ context.Context, raw string) domain.UserID {
	if id, ok := s[raw]; ok {
		return id
	}
	return domain.UserID(raw)
}

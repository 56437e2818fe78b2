package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes.
const (
	CatalogKeyPrefix        = "catalog:%s"
	RevokedSessionKeyPrefix = "session_revoked:%s"
	RSVPCountKeyPrefix      = "event:%s:rsvps"
)

// TTLs.
const (
	CatalogTTL   = 5 * time.Minute
	RSVPCountTTL = time.Minute
)

// CatalogKey is the cache key of a resolved event catalog for a given source.
func CatalogKey(source string) string {
	return fmt.Sprintf(CatalogKeyPrefix, source)
}

// RevokedSessionKey marks a session token id as signed out.
func RevokedSessionKey(jti string) string {
	return fmt.Sprintf(RevokedSessionKeyPrefix, jti)
}

// RSVPCountKey caches the attendee count of an event.
func RSVPCountKey(eventID string) string {
	return fmt.Sprintf(RSVPCountKeyPrefix, eventID)
}

// GetJSON reads key and unmarshals it into dest.
// Returns (true, nil) if found, (false, nil) on a miss or when rdb is nil.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	s, err := rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl. A nil client is a no-op.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first and on a miss calls fetch, which must populate dest,
// then stores dest with ttl. Cache read and write failures fall through to fetch;
// only fetch errors are returned. hit reports whether dest came from Redis.
func Aside(ctx context.Context, rdb *redis.Client, key string, dest any, ttl time.Duration, fetch func(context.Context) error) (hit bool, err error) {
	found, err := GetJSON(ctx, rdb, key, dest)
	if err == nil && found {
		return true, nil
	}

	if err := fetch(ctx); err != nil {
		return false, err
	}

	_ = SetJSON(ctx, rdb, key, dest, ttl)
	return false, nil
}

// Invalidate deletes key. A nil client is a no-op.
func Invalidate(ctx context.Context, rdb *redis.Client, key string) {
	if rdb != nil {
		rdb.Del(ctx, key)
	}
}

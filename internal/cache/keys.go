package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"archives/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	PostKeyPrefix      = "post:%d"
	PostsListKeyPrefix = "posts:list:%s"
)

// Audiences for the cached post list.
const (
	AudiencePublished = "published"
	AudienceAll       = "all"
)

const (
	PostTTL = 10 * time.Minute
	ListTTL = 30 * time.Second
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// PostsListKey names the cached list for an audience: anonymous visitors see
// published posts only, a signed-in admin sees drafts too.
func PostsListKey(audience string) string {
	return fmt.Sprintf(PostsListKeyPrefix, audience)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePosts drops every cached post list plus the given single-post entries.
func InvalidatePosts(ctx context.Context, postIDs ...uint) {
	keys := []string{PostsListKey(AudiencePublished), PostsListKey(AudienceAll)}
	for _, id := range postIDs {
		keys = append(keys, PostKey(id))
	}
	Invalidate(ctx, keys...)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside serves dest from Redis when present, otherwise calls fetch (which must
// fill dest) and stores the result for ttl. A Redis failure degrades to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ProfileCache puts Redis in front of the signal extractor so a burst
// of candidate requests does not recompute every profile from raw mood
// history each time. Entries are small and short-lived; staleness up to
// the TTL is acceptable for scoring.
type ProfileCache struct {
	inner  ProfileProvider
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(inner ProfileProvider, client *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ProfileCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}
}

func (c *ProfileCache) Extract(ctx context.Context, userID int64) (*UserSignalProfile, error) {
	// No Redis configured: pass straight through.
	if c.client == nil {
		return c.inner.Extract(ctx, userID)
	}

	key := profileCacheKey(userID)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var profile UserSignalProfile
		if err := json.Unmarshal(data, &profile); err == nil {
			RecordProfileCacheHit()
			return &profile, nil
		}
	}

	profile, err := c.inner.Extract(ctx, userID)
	if err != nil {
		return nil, err
	}
	RecordProfileCacheMiss()

	if data, err := json.Marshal(profile); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Printf("matching: profile cache write failed for user %d: %v", userID, err)
		}
	}

	return profile, nil
}

// Invalidate drops a cached profile, e.g. after the user records a new
// mood entry or flips the opt-in flag.
func (c *ProfileCache) Invalidate(ctx context.Context, userID int64) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, profileCacheKey(userID)).Err(); err != nil {
		log.Printf("matching: profile cache invalidation failed for user %d: %v", userID, err)
	}
}

func profileCacheKey(userID int64) string {
	return fmt.Sprintf("matching:profile:%d", userID)
}

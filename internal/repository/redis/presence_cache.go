// Package redis is an optional Redis-backed mirror of participant
// presence, for deployments that run the engine across more than one
// process and want last-seen timestamps visible without a database round
// trip. It is not required: the engine reads presence from
// Participation.LastSeenAt via the primary repository in every
// configuration; this cache, when wired, is an additional write path that
// Engine.Heartbeat writes on every heartbeat, and LastSeen offers a cheaper
// liveness check than a full repository read. Grounded on the reference repo's
// internal/repository/redis/cache_repo.go.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// PresenceCache mirrors per-participant last-seen timestamps in Redis.
type PresenceCache struct {
	client redis.UniversalClient
}

// NewPresenceCache wraps an existing client; the cache does not own the
// client's lifecycle.
func NewPresenceCache(client redis.UniversalClient) *PresenceCache {
	return &PresenceCache{client: client}
}

func presenceKey(triviaID, userID uuid.UUID) string {
	return "presence:" + triviaID.String() + ":" + userID.String()
}

// Touch records that (triviaID, userID) was seen at seenAt, expiring after
// ttl so an abandoned key doesn't linger past any plausible presence
// window.
func (c *PresenceCache) Touch(ctx context.Context, triviaID, userID uuid.UUID, seenAt time.Time, ttl time.Duration) error {
	return c.client.Set(ctx, presenceKey(triviaID, userID), seenAt.Format(time.RFC3339Nano), ttl).Err()
}

// LastSeen returns the most recently recorded heartbeat for (triviaID,
// userID). apperrors.ErrNotFound means no heartbeat has been recorded (or
// it expired), matching cache_repo.go's redis.Nil-to-ErrNotFound
// translation.
func (c *PresenceCache) LastSeen(ctx context.Context, triviaID, userID uuid.UUID) (time.Time, error) {
	val, err := c.client.Get(ctx, presenceKey(triviaID, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, apperrors.ErrNotFound
		}
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, val)
}

// Forget removes any recorded heartbeat for (triviaID, userID), used when
// a participant disconnects cleanly.
func (c *PresenceCache) Forget(ctx context.Context, triviaID, userID uuid.UUID) error {
	return c.client.Del(ctx, presenceKey(triviaID, userID)).Err()
}

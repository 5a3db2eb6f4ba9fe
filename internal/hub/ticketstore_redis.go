package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisTicketStore is a TicketStore backed by Redis, for deployments where
// the transport layer runs across more than one process and a ticket
// minted on one instance must be redeemable on another. Grounded on the
// reference repo's internal/repository/redis/cache_repo.go SetJSON/GetJSON
// pattern, with expiry delegated to Redis's own TTL instead of a sweeper.
type RedisTicketStore struct {
	client redis.UniversalClient
}

// NewRedisTicketStore wraps an existing client. It does not own the
// client's lifecycle.
func NewRedisTicketStore(client redis.UniversalClient) *RedisTicketStore {
	return &RedisTicketStore{client: client}
}

type redisTicketClaims struct {
	TriviaID uuid.UUID `json:"trivia_id"`
	UserID   uuid.UUID `json:"user_id"`
	IsAdmin  bool      `json:"is_admin"`
}

func ticketRedisKey(tok string) string { return "event-ticket:" + tok }

func (s *RedisTicketStore) Issue(ctx context.Context, triviaID, userID uuid.UUID, isAdmin bool, ttl time.Duration) (string, error) {
	tok, err := newTicketToken()
	if err != nil {
		return "", err
	}
	claims := redisTicketClaims{TriviaID: triviaID, UserID: userID, IsAdmin: isAdmin}
	data, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, ticketRedisKey(tok), data, ttl).Err(); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *RedisTicketStore) Redeem(ctx context.Context, ticket string) (uuid.UUID, uuid.UUID, bool, bool) {
	key := ticketRedisKey(ticket)

	// GETDEL would be a single round trip but isn't exposed by every
	// UniversalClient mode this store runs under, so redemption is a
	// get-then-delete pair. Only the caller whose delete actually removes
	// the key redeems the ticket; a racing caller that also read it finds
	// it already gone and fails.
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return uuid.Nil, uuid.Nil, false, false
	}
	if n, err := s.client.Del(ctx, key).Result(); err != nil || n == 0 {
		return uuid.Nil, uuid.Nil, false, false
	}

	var claims redisTicketClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return uuid.Nil, uuid.Nil, false, false
	}
	return claims.TriviaID, claims.UserID, claims.IsAdmin, true
}

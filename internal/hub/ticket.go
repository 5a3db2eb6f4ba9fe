package hub

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ticketClaims is what a ticket resolves to: which trivia the bearer may
// subscribe to, as whom, and with what privilege.
type ticketClaims struct {
	TriviaID uuid.UUID
	UserID   uuid.UUID
	IsAdmin  bool
	expireAt time.Time
}

// TicketStore issues and redeems short-lived, single-purpose event
// tickets. A ticket authorizes exactly one subscribe call; it is deliberately
// not a reusable credential (SPEC_FULL.md §4.6), unlike the reference repo's
// long-lived JWT connections.
type TicketStore interface {
	// Issue mints a new ticket valid for ttl, bound to the given trivia,
	// user, and admin flag.
	Issue(ctx context.Context, triviaID, userID uuid.UUID, isAdmin bool, ttl time.Duration) (string, error)
	// Redeem consumes a ticket. A ticket can be redeemed at most once;
	// redeeming an unknown, expired, or already-redeemed ticket reports
	// ok=false.
	Redeem(ctx context.Context, ticket string) (triviaID, userID uuid.UUID, isAdmin bool, ok bool)
}

// newTicketToken returns a 256-bit, hex-encoded random token. This
// intentionally departs from the reference repo's time.Now().UnixNano()
// seeded randomString() helper: tickets gate live event delivery and must
// not be guessable.
func newTicketToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// MemoryTicketStore is the in-process TicketStore: a map guarded by a
// mutex, with an optional background sweep of expired entries. Suitable for
// a single-process deployment; RedisTicketStore, which cmd/api wires, is
// the multi-process alternative.
type MemoryTicketStore struct {
	mu      sync.Mutex
	tickets map[string]ticketClaims
}

// NewMemoryTicketStore returns an empty store. Callers that want periodic
// expiry sweeping should call RunSweeper in a goroutine.
func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{tickets: make(map[string]ticketClaims)}
}

func (s *MemoryTicketStore) Issue(ctx context.Context, triviaID, userID uuid.UUID, isAdmin bool, ttl time.Duration) (string, error) {
	tok, err := newTicketToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tickets[tok] = ticketClaims{
		TriviaID: triviaID,
		UserID:   userID,
		IsAdmin:  isAdmin,
		expireAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()
	return tok, nil
}

func (s *MemoryTicketStore) Redeem(ctx context.Context, ticket string) (uuid.UUID, uuid.UUID, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claims, ok := s.tickets[ticket]
	if !ok {
		return uuid.Nil, uuid.Nil, false, false
	}
	delete(s.tickets, ticket)
	if time.Now().After(claims.expireAt) {
		return uuid.Nil, uuid.Nil, false, false
	}
	return claims.TriviaID, claims.UserID, claims.IsAdmin, true
}

// RunSweeper periodically removes expired-but-unredeemed tickets so the
// map doesn't grow unbounded from abandoned subscribe attempts. It blocks
// until ctx is done.
func (s *MemoryTicketStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for tok, claims := range s.tickets {
				if now.After(claims.expireAt) {
					delete(s.tickets, tok)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Package hub implements the event fan-out hub: a single in-process
// pub/sub registry that broadcasts trivia lifecycle events to subscribed
// connections. It is grounded on the reference repo's
// internal/websocket/shard.go, simplified from a sharded/cluster-aware
// design down to one registry per process (SPEC_FULL.md §4.6).
package hub

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// EventType names one of the events the hub fans out (SPEC_FULL.md §6).
type EventType string

const (
	EventStatusUpdated          EventType = "status_updated"
	EventLobbyUpdated           EventType = "lobby_updated"
	EventAdminLobbyUpdated      EventType = "admin_lobby_updated"
	EventCurrentQuestionUpdated EventType = "current_question_updated"
	EventRankingUpdated         EventType = "ranking_updated"
)

// Event is one message delivered to subscribers of a trivia.
type Event struct {
	Type     EventType   `json:"type"`
	TriviaID uuid.UUID   `json:"trivia_id"`
	Payload  interface{} `json:"payload"`
}

// subscriberBuffer bounds how many undelivered events a slow subscriber
// can accumulate before the oldest is dropped to make room for the
// newest. Mirrors shard.go's buffer-then-warn discipline, minus the
// disconnect-after-N-warnings step: a dropped event here is not fatal to
// the connection, since every Event type is a full snapshot, not a delta.
const subscriberBuffer = 16

// Subscriber is a live fan-out destination: a buffered channel the holder
// drains (typically forwarding to a websocket or SSE connection) and an
// admin flag gating admin-only events.
type Subscriber struct {
	id       uuid.UUID
	triviaID uuid.UUID
	isAdmin  bool
	ch       chan Event

	mu     sync.Mutex
	closed bool
}

// Events returns the channel to range over for delivery.
func (s *Subscriber) Events() <-chan Event { return s.ch }

func (s *Subscriber) send(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- evt:
		return
	default:
	}
	// Buffer full: drop the oldest queued event and retry once, same as
	// shard.go's non-blocking send with a fallback instead of a hard
	// disconnect.
	select {
	case old := <-s.ch:
		log.Printf("[hub] dropping oldest event type=%s trivia=%s subscriber=%s: buffer full", old.Type, s.triviaID, s.id)
	default:
	}
	select {
	case s.ch <- evt:
	default:
		log.Printf("[hub] dropping event type=%s trivia=%s subscriber=%s: buffer full", evt.Type, s.triviaID, s.id)
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Hub is the process-wide fan-out registry, keyed by trivia id.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[uuid.UUID]*Subscriber // triviaID -> subscriberID -> sub
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[uuid.UUID]*Subscriber)}
}

// Subscribe registers a new subscriber for triviaID and returns it. The
// caller must call Unsubscribe when the underlying connection closes.
func (h *Hub) Subscribe(triviaID uuid.UUID, isAdmin bool) *Subscriber {
	sub := &Subscriber{
		id:       uuid.New(),
		triviaID: triviaID,
		isAdmin:  isAdmin,
		ch:       make(chan Event, subscriberBuffer),
	}
	h.mu.Lock()
	if h.subs[triviaID] == nil {
		h.subs[triviaID] = make(map[uuid.UUID]*Subscriber)
	}
	h.subs[triviaID][sub.id] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes and closes sub.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[sub.triviaID]; ok {
		delete(set, sub.id)
		if len(set) == 0 {
			delete(h.subs, sub.triviaID)
		}
	}
	h.mu.Unlock()
	sub.close()
}

// Broadcast delivers evt to every subscriber of evt.TriviaID. adminOnly
// restricts delivery to admin subscribers (used for admin_lobby_updated).
// The subscriber set is snapshotted under the lock and released before any
// channel send, so a blocked or slow subscriber never holds up Subscribe,
// Unsubscribe, or concurrent Broadcast calls for other trivias.
func (h *Hub) Broadcast(evt Event, adminOnly bool) {
	h.mu.RLock()
	set := h.subs[evt.TriviaID]
	targets := make([]*Subscriber, 0, len(set))
	for _, sub := range set {
		if adminOnly && !sub.isAdmin {
			continue
		}
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		sub.send(evt)
	}
}

// SubscriberCount reports how many live subscribers a trivia currently has,
// for diagnostics.
func (h *Hub) SubscriberCount(triviaID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[triviaID])
}

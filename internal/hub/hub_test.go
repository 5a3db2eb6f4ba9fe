package hub

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastDeliversToSubscribersOfSameTrivia(t *testing.T) {
	h := New()
	triviaID := uuid.New()
	other := uuid.New()

	sub := h.Subscribe(triviaID, false)
	defer h.Unsubscribe(sub)
	unrelated := h.Subscribe(other, false)
	defer h.Unsubscribe(unrelated)

	h.Broadcast(Event{Type: EventStatusUpdated, TriviaID: triviaID, Payload: "x"}, false)

	select {
	case evt := <-sub.Events():
		assert.Equal(t, EventStatusUpdated, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	select {
	case <-unrelated.Events():
		t.Fatal("unrelated trivia should not receive event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastAdminOnlySkipsNonAdminSubscribers(t *testing.T) {
	h := New()
	triviaID := uuid.New()

	player := h.Subscribe(triviaID, false)
	defer h.Unsubscribe(player)
	admin := h.Subscribe(triviaID, true)
	defer h.Unsubscribe(admin)

	h.Broadcast(Event{Type: EventAdminLobbyUpdated, TriviaID: triviaID}, true)

	select {
	case <-admin.Events():
	case <-time.After(time.Second):
		t.Fatal("admin should receive admin-only event")
	}
	select {
	case <-player.Events():
		t.Fatal("non-admin should not receive admin-only event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastDoesNotBlockOnFullBuffer(t *testing.T) {
	h := New()
	triviaID := uuid.New()
	sub := h.Subscribe(triviaID, false)
	defer h.Unsubscribe(sub)

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Broadcast(Event{Type: EventRankingUpdated, TriviaID: triviaID, Payload: i}, false)
	}
	// Must not have blocked or deadlocked; drain what's available.
	drained := 0
	for {
		select {
		case <-sub.Events():
			drained++
		default:
			assert.LessOrEqual(t, drained, subscriberBuffer)
			return
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := New()
	triviaID := uuid.New()
	sub := h.Subscribe(triviaID, false)
	h.Unsubscribe(sub)

	_, open := <-sub.Events()
	assert.False(t, open)
	assert.Equal(t, 0, h.SubscriberCount(triviaID))
}

func TestMemoryTicketStoreIssueThenRedeemOnce(t *testing.T) {
	s := NewMemoryTicketStore()
	triviaID, userID := uuid.New(), uuid.New()

	tok, err := s.Issue(context.Background(), triviaID, userID, true, time.Minute)
	require.NoError(t, err)

	gotTrivia, gotUser, isAdmin, ok := s.Redeem(context.Background(), tok)
	require.True(t, ok)
	assert.Equal(t, triviaID, gotTrivia)
	assert.Equal(t, userID, gotUser)
	assert.True(t, isAdmin)

	_, _, _, ok = s.Redeem(context.Background(), tok)
	assert.False(t, ok, "a ticket must not be redeemable twice")
}

func TestMemoryTicketStoreRedeemExpiredFails(t *testing.T) {
	s := NewMemoryTicketStore()
	tok, err := s.Issue(context.Background(), uuid.New(), uuid.New(), false, -time.Second)
	require.NoError(t, err)

	_, _, _, ok := s.Redeem(context.Background(), tok)
	assert.False(t, ok)
}

func TestMemoryTicketStoreRedeemUnknownFails(t *testing.T) {
	s := NewMemoryTicketStore()
	_, _, _, ok := s.Redeem(context.Background(), "does-not-exist")
	assert.False(t, ok)
}

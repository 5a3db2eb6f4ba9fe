package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
)

func TestLobbySnapshotSortedByNameThenUserID(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	bob := h.createUser("bob")
	alice := h.createUser("alice")

	triviaID, _ := h.createTrivia(creator, 30, fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"))
	_, err := h.eng.Join(ctx, triviaID, bob)
	require.NoError(t, err)
	_, err = h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)

	snap, err := h.eng.GetLobby(ctx, triviaID)
	require.NoError(t, err)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "alice", snap.Players[0].Name)
	assert.Equal(t, "bob", snap.Players[1].Name)
	assert.True(t, snap.Players[0].Present)
	assert.True(t, snap.Players[0].Ready)
}

func TestAdminLobbySnapshotCounts(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")
	bob := h.createUser("bob")

	triviaID, _ := h.createTrivia(creator, 30, fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"))
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.Join(ctx, triviaID, bob)
	require.NoError(t, err)

	snap, err := h.eng.GetAdminLobby(ctx, triviaID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.AssignedCount)
	assert.Equal(t, 2, snap.PresentCount)
	assert.Equal(t, 2, snap.ReadyCount)
}

func TestHeartbeatUpdatesPresence(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, _ := h.createTrivia(creator, 30, fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"))
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)

	require.NoError(t, h.eng.Heartbeat(ctx, triviaID, alice))

	snap, err := h.eng.GetLobby(ctx, triviaID)
	require.NoError(t, err)
	require.Len(t, snap.Players, 1)
	assert.True(t, snap.Players[0].Present)
}

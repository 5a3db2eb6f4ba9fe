package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Heartbeat records that userID is still present in triviaID, refreshing
// the presence TTL window. It emits lobby_updated / admin_lobby_updated
// only when presence state actually flips (SPEC_FULL.md §9), not on every
// call, to avoid flooding subscribers at heartbeat frequency.
func (e *Engine) Heartbeat(ctx context.Context, triviaID, userID uuid.UUID) error {
	var pending []pendingEvent
	var seenAt time.Time
	err := e.deps.UnitOfWork.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := e.deps.Participations.GetByTriviaAndUser(ctx, triviaID, userID)
		if err != nil {
			return err
		}
		wasPresent := p.IsPresent(now(), e.deps.Config.PresenceTTL)
		t := now()
		seenAt = t
		p.LastSeenAt = &t
		if err := e.deps.Participations.Update(ctx, p); err != nil {
			return err
		}
		if !wasPresent {
			if pe, ok := e.buildLobbyUpdatedEvent(ctx, triviaID); ok {
				pending = append(pending, pe)
			}
			if pe, ok := e.buildAdminLobbyUpdatedEvent(ctx, triviaID); ok {
				pending = append(pending, pe)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if e.deps.PresenceCache != nil {
		if err := e.deps.PresenceCache.Touch(ctx, triviaID, userID, seenAt, e.deps.Config.PresenceTTL); err != nil {
			log.Printf("[engine] presence cache touch for trivia=%s user=%s: %v", triviaID, userID, err)
		}
	}
	e.flush(pending)
	return nil
}

func (e *Engine) lobbyPlayerViews(ctx context.Context, triviaID uuid.UUID) ([]LobbyPlayerView, error) {
	participations, err := e.deps.Participations.ListByTrivia(ctx, triviaID)
	if err != nil {
		return nil, err
	}
	nowTime := now()
	views := make([]LobbyPlayerView, 0, len(participations))
	for _, p := range participations {
		user, err := e.deps.Users.GetByID(ctx, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolving display name for user %s: %w", p.UserID, err)
		}
		views = append(views, LobbyPlayerView{
			UserID:  p.UserID,
			Name:    user.DisplayName,
			Present: p.IsPresent(nowTime, e.deps.Config.PresenceTTL),
			Ready:   p.IsReady(),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Name != views[j].Name {
			return views[i].Name < views[j].Name
		}
		return views[i].UserID.String() < views[j].UserID.String()
	})
	return views, nil
}

func (e *Engine) buildLobbySnapshot(ctx context.Context, triviaID uuid.UUID) (*LobbySnapshot, error) {
	views, err := e.lobbyPlayerViews(ctx, triviaID)
	if err != nil {
		return nil, err
	}
	return &LobbySnapshot{Players: views}, nil
}

func (e *Engine) buildAdminLobbySnapshot(ctx context.Context, triviaID uuid.UUID) (*AdminLobbySnapshot, error) {
	views, err := e.lobbyPlayerViews(ctx, triviaID)
	if err != nil {
		return nil, err
	}
	snap := &AdminLobbySnapshot{Players: views, AssignedCount: len(views)}
	for _, v := range views {
		if v.Present {
			snap.PresentCount++
		}
		if v.Ready {
			snap.ReadyCount++
		}
	}
	return snap, nil
}

// GetLobby returns the player-facing lobby view for triviaID.
func (e *Engine) GetLobby(ctx context.Context, triviaID uuid.UUID) (*LobbySnapshot, error) {
	if _, err := e.deps.Trivias.GetByID(ctx, triviaID); err != nil {
		return nil, err
	}
	return e.buildLobbySnapshot(ctx, triviaID)
}

// GetAdminLobby returns the creator-facing lobby view for triviaID. Access
// control for the admin-only view is a transport-layer concern; the
// command surface itself carries no caller identity (SPEC_FULL.md §6).
func (e *Engine) GetAdminLobby(ctx context.Context, triviaID uuid.UUID) (*AdminLobbySnapshot, error) {
	if _, err := e.deps.Trivias.GetByID(ctx, triviaID); err != nil {
		return nil, err
	}
	return e.buildAdminLobbySnapshot(ctx, triviaID)
}

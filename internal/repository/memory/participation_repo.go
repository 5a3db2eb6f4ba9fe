package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// ParticipationRepo implements repository.ParticipationRepository over a
// shared Store.
type ParticipationRepo struct{ s *Store }

func NewParticipationRepo(s *Store) *ParticipationRepo { return &ParticipationRepo{s: s} }

func (r *ParticipationRepo) Create(ctx context.Context, p *entity.Participation) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for _, existing := range r.s.participations {
		if existing.TriviaID == p.TriviaID && existing.UserID == p.UserID {
			return fmt.Errorf("user %s already has a participation in trivia %s: %w", p.UserID, p.TriviaID, apperrors.ErrConflict)
		}
	}
	r.s.participations[p.ID] = *p
	return nil
}

func (r *ParticipationRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Participation, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	p, ok := r.s.participations[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *ParticipationRepo) GetByTriviaAndUser(ctx context.Context, triviaID, userID uuid.UUID) (*entity.Participation, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	for _, p := range r.s.participations {
		if p.TriviaID == triviaID && p.UserID == userID {
			cp := p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *ParticipationRepo) Update(ctx context.Context, p *entity.Participation) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if _, ok := r.s.participations[p.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.s.participations[p.ID] = *p
	return nil
}

func (r *ParticipationRepo) ListByTrivia(ctx context.Context, triviaID uuid.UUID) ([]entity.Participation, error) {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	var out []entity.Participation
	for _, p := range r.s.participations {
		if p.TriviaID == triviaID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ParticipationRepo) RecomputeScore(ctx context.Context, participationID uuid.UUID) (int, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	p, ok := r.s.participations[participationID]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	total := 0
	for _, a := range r.s.answers {
		if a.ParticipationID == participationID {
			total += a.EarnedPoints
		}
	}
	p.Score = total
	r.s.participations[participationID] = p
	return total, nil
}

func (r *ParticipationRepo) RecomputeScoresForTrivia(ctx context.Context, triviaID uuid.UUID) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	totals := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for id, p := range r.s.participations {
		if p.TriviaID == triviaID {
			ids = append(ids, id)
			totals[id] = 0
		}
	}
	for _, a := range r.s.answers {
		if _, tracked := totals[a.ParticipationID]; tracked {
			totals[a.ParticipationID] += a.EarnedPoints
		}
	}
	for _, id := range ids {
		p := r.s.participations[id]
		p.Score = totals[id]
		r.s.participations[id] = p
	}
	return nil
}

func (r *ParticipationRepo) ListByTriviaRanked(ctx context.Context, triviaID uuid.UUID) ([]entity.Participation, error) {
	r.s.dataMu.RLock()
	type indexed struct {
		p   entity.Participation
		seq int
	}
	var out []indexed
	seq := 0
	for _, p := range r.s.participations {
		if p.TriviaID == triviaID {
			out = append(out, indexed{p, seq})
			seq++
		}
	}
	r.s.dataMu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].p.Score != out[j].p.Score {
			return out[i].p.Score > out[j].p.Score
		}
		return out[i].seq < out[j].seq
	})
	result := make([]entity.Participation, len(out))
	for i, v := range out {
		result[i] = v.p
	}
	return result, nil
}

func (r *ParticipationRepo) ClearForReset(ctx context.Context, triviaID uuid.UUID) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	for id, p := range r.s.participations {
		if p.TriviaID == triviaID {
			p.Score = 0
			p.FiftyFiftyUsed = false
			p.FiftyFiftyQuestion = nil
			r.s.participations[id] = p
		}
	}
	return nil
}

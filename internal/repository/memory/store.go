// Package memory is an in-process, in-memory implementation of the
// repository interfaces, used by the engine's own test suite and suitable
// for embedding by callers that don't need durability (SPEC_FULL.md §9: "a
// SQL-backed [adapter], an in-memory one for tests").
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
)

// Store holds the shared tables behind every per-aggregate repo in this
// package. txMu linearizes whole transactions (so concurrent Start attempts
// can't both win); dataMu guards individual map access, including from
// inside a transaction's callback. A failed transaction is rolled back by
// restoring a snapshot taken before the callback ran.
type Store struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex

	trivias         map[uuid.UUID]entity.Trivia
	questions       map[uuid.UUID]entity.Question
	triviaQuestions map[uuid.UUID]entity.TriviaQuestion
	participations  map[uuid.UUID]entity.Participation
	answers         map[uuid.UUID]entity.Answer
	users           map[uuid.UUID]entity.User
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		trivias:         make(map[uuid.UUID]entity.Trivia),
		questions:       make(map[uuid.UUID]entity.Question),
		triviaQuestions: make(map[uuid.UUID]entity.TriviaQuestion),
		participations:  make(map[uuid.UUID]entity.Participation),
		answers:         make(map[uuid.UUID]entity.Answer),
		users:           make(map[uuid.UUID]entity.User),
	}
}

// PutUser seeds a user directly; user creation is an external collaborator
// concern and has no command-surface equivalent in this engine.
func (s *Store) PutUser(u entity.User) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.users[u.ID] = u
}

type tableSnapshot struct {
	trivias         map[uuid.UUID]entity.Trivia
	questions       map[uuid.UUID]entity.Question
	triviaQuestions map[uuid.UUID]entity.TriviaQuestion
	participations  map[uuid.UUID]entity.Participation
	answers         map[uuid.UUID]entity.Answer
	users           map[uuid.UUID]entity.User
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() tableSnapshot {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return tableSnapshot{
		trivias:         cloneMap(s.trivias),
		questions:       cloneMap(s.questions),
		triviaQuestions: cloneMap(s.triviaQuestions),
		participations:  cloneMap(s.participations),
		answers:         cloneMap(s.answers),
		users:           cloneMap(s.users),
	}
}

func (s *Store) restore(snap tableSnapshot) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.trivias = snap.trivias
	s.questions = snap.questions
	s.triviaQuestions = snap.triviaQuestions
	s.participations = snap.participations
	s.answers = snap.answers
	s.users = snap.users
}

// WithinTransaction implements repository.UnitOfWork.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

package engine_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/engine"
	"github.com/triviaengine/sessionengine/internal/hub"
	"github.com/triviaengine/sessionengine/internal/repository/memory"
	"github.com/triviaengine/sessionengine/internal/scorepolicy"
)

const presenceTTL = 15 * time.Second

// harness bundles a fresh in-memory store and Engine for one test, plus
// convenience builders for seeding a trivia/questions/roster.
type harness struct {
	store *memory.Store
	users *memory.UserRepo
	eng   *engine.Engine
}

func newHarness() *harness {
	store := memory.NewStore()
	h := &harness{
		store: store,
		users: memory.NewUserRepo(store),
	}
	h.eng = engine.New(engine.Dependencies{
		UnitOfWork:      store,
		Trivias:         memory.NewTriviaRepo(store),
		Questions:       memory.NewQuestionRepo(store),
		TriviaQuestions: memory.NewTriviaQuestionRepo(store),
		Participations:  memory.NewParticipationRepo(store),
		Answers:         memory.NewAnswerRepo(store),
		Users:           h.users,
		Hub:             hub.New(),
		ScorePolicy:     scorepolicy.Default(),
		Config:          engine.Config{PresenceTTL: presenceTTL, DefaultQuestionTimeLimit: 30 * time.Second},
	})
	return h
}

func (h *harness) createUser(name string) uuid.UUID {
	u := entity.User{ID: uuid.New(), DisplayName: name, Email: name + "@example.com", PasswordDigest: "x", Role: entity.UserRolePlayer, CreatedAt: time.Now()}
	h.store.PutUser(u)
	return u.ID
}

// createTrivia seeds a DRAFT trivia owned by creatorID with the given
// questions bound at increasing positions, each with timeLimitSec seconds.
// It returns the trivia id and the created questions (with IDs and options
// filled in, in binding order) so tests can reference specific option ids.
func (h *harness) createTrivia(creatorID uuid.UUID, timeLimitSec int, qs ...seedQuestion) (uuid.UUID, []entity.Question) {
	triviaID := uuid.New()
	trivia := &entity.Trivia{
		ID:            triviaID,
		Title:         "test trivia",
		CreatorUserID: creatorID,
		Status:        entity.TriviaStatusDraft,
		CreatedAt:     time.Now(),
	}
	triviaRepo := memory.NewTriviaRepo(h.store)
	if err := triviaRepo.Create(context.Background(), trivia); err != nil {
		panic(err)
	}

	questionRepo := memory.NewQuestionRepo(h.store)
	tqRepo := memory.NewTriviaQuestionRepo(h.store)
	created := make([]entity.Question, 0, len(qs))
	for i, sq := range qs {
		q := &entity.Question{
			ID:            uuid.New(),
			Text:          sq.text,
			Difficulty:    sq.difficulty,
			CreatorUserID: creatorID,
			Options:       sq.options,
		}
		if err := questionRepo.Create(context.Background(), q); err != nil {
			panic(err)
		}
		tq := &entity.TriviaQuestion{
			ID:           uuid.New(),
			TriviaID:     triviaID,
			QuestionID:   q.ID,
			Position:     i,
			TimeLimitSec: timeLimitSec,
		}
		if err := tqRepo.Create(context.Background(), tq); err != nil {
			panic(err)
		}
		created = append(created, *q)
	}
	return triviaID, created
}

type seedQuestion struct {
	text       string
	difficulty string
	options    []entity.Option
}

func twoOptionQuestion(text, difficulty string, correctText, wrongText string) seedQuestion {
	return seedQuestion{
		text:       text,
		difficulty: difficulty,
		options: []entity.Option{
			{ID: uuid.New(), Text: correctText, IsCorrect: true},
			{ID: uuid.New(), Text: wrongText, IsCorrect: false},
		},
	}
}

func fourOptionQuestion(text, difficulty string, correctText string, wrongTexts ...string) seedQuestion {
	opts := []entity.Option{{ID: uuid.New(), Text: correctText, IsCorrect: true}}
	for _, w := range wrongTexts {
		opts = append(opts, entity.Option{ID: uuid.New(), Text: w, IsCorrect: false})
	}
	return seedQuestion{text: text, difficulty: difficulty, options: opts}
}

func correctOptionID(options []entity.Option) uuid.UUID {
	for _, o := range options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return uuid.Nil
}

func firstIncorrectOptionID(options []entity.Option) uuid.UUID {
	for _, o := range options {
		if !o.IsCorrect {
			return o.ID
		}
	}
	return uuid.Nil
}

func newParticipationRepoFor(h *harness) *memory.ParticipationRepo {
	return memory.NewParticipationRepo(h.store)
}

func uuidNew() uuid.UUID { return uuid.New() }

func recentTimestamp() time.Time { return time.Now() }

func veryOldTimestamp() time.Time { return time.Now().Add(-time.Hour) }

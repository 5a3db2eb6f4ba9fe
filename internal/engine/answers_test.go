package engine_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

func TestGetCurrentQuestionReflectsFiftyFiftyAvailability(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, questions := h.createTrivia(creator, 30,
		fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"),
	)
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)

	before, err := h.eng.GetCurrentQuestion(ctx, triviaID, alice)
	require.NoError(t, err)
	assert.True(t, before.FiftyFiftyAvailable)
	assert.Len(t, before.Options, 4)

	_, err = h.eng.UseFiftyFifty(ctx, triviaID, questions[0].ID, alice)
	require.NoError(t, err)

	after, err := h.eng.GetCurrentQuestion(ctx, triviaID, alice)
	require.NoError(t, err)
	assert.False(t, after.FiftyFiftyAvailable)
	assert.Len(t, after.Options, 2)
}

func TestSubmitAnswerRejectsOptionFromAnotherQuestion(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, _ := h.createTrivia(creator, 30,
		fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"),
	)
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)

	_, err = h.eng.SubmitAnswer(ctx, triviaID, alice, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.Classify(err))
}

func TestSubmitAnswerRejectsWhenTriviaNotInProgress(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, questions := h.createTrivia(creator, 30,
		fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"),
	)
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)

	_, err = h.eng.SubmitAnswer(ctx, triviaID, alice, correctOptionID(questions[0].Options))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.Classify(err))
}

func TestUseFiftyFiftyRejectsQuestionNotCurrent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, _ := h.createTrivia(creator, 30,
		fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"),
		fourOptionQuestion("q2", entity.DifficultyEasy, "c", "w1", "w2", "w3"),
	)
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)

	_, err = h.eng.UseFiftyFifty(ctx, triviaID, uuid.New(), alice)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.Classify(err))
}

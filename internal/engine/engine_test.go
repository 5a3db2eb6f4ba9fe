package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triviaengine/sessionengine/internal/domain/entity"
	"github.com/triviaengine/sessionengine/internal/pkg/apperrors"
)

// Scenario: two players, three questions, happy path to FINISHED with a
// correctly accumulated ranking.
func TestScenarioTwoPlayersThreeQuestionsHappyPath(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")
	bob := h.createUser("bob")

	triviaID, questions := h.createTrivia(creator, 30,
		fourOptionQuestion("q1", entity.DifficultyEasy, "A-correct", "A-wrong1", "A-wrong2", "A-wrong3"),
		fourOptionQuestion("q2", entity.DifficultyMedium, "B-correct", "B-wrong1", "B-wrong2", "B-wrong3"),
		fourOptionQuestion("q3", entity.DifficultyHard, "C-correct", "C-wrong1", "C-wrong2", "C-wrong3"),
	)

	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.Join(ctx, triviaID, bob)
	require.NoError(t, err)

	start, err := h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)
	assert.Equal(t, entity.TriviaStatusInProgress, start.TriviaStatus)

	// Q1: alice correct, bob wrong.
	_, err = h.eng.SubmitAnswer(ctx, triviaID, alice, correctOptionID(questions[0].Options))
	require.NoError(t, err)
	_, err = h.eng.SubmitAnswer(ctx, triviaID, bob, firstIncorrectOptionID(questions[0].Options))
	require.NoError(t, err)
	_, err = h.eng.AdvanceQuestion(ctx, triviaID, creator)
	require.NoError(t, err)

	// Q2: both correct.
	_, err = h.eng.SubmitAnswer(ctx, triviaID, alice, correctOptionID(questions[1].Options))
	require.NoError(t, err)
	_, err = h.eng.SubmitAnswer(ctx, triviaID, bob, correctOptionID(questions[1].Options))
	require.NoError(t, err)
	_, err = h.eng.AdvanceQuestion(ctx, triviaID, creator)
	require.NoError(t, err)

	// Q3: alice wrong, bob correct.
	_, err = h.eng.SubmitAnswer(ctx, triviaID, alice, firstIncorrectOptionID(questions[2].Options))
	require.NoError(t, err)
	_, err = h.eng.SubmitAnswer(ctx, triviaID, bob, correctOptionID(questions[2].Options))
	require.NoError(t, err)
	advance, err := h.eng.AdvanceQuestion(ctx, triviaID, creator)
	require.NoError(t, err)
	assert.Equal(t, entity.TriviaStatusFinished, advance.Status)

	ranking, err := h.eng.GetRanking(ctx, triviaID)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 2)
	// alice: 1(easy) + 2(medium) + 0 = 3; bob: 0 + 2(medium) + 3(hard) = 5.
	assert.Equal(t, bob, ranking.Entries[0].UserID)
	assert.Equal(t, 5, ranking.Entries[0].Score)
	assert.Equal(t, 1, ranking.Entries[0].Position)
	assert.Equal(t, alice, ranking.Entries[1].UserID)
	assert.Equal(t, 3, ranking.Entries[1].Score)
	assert.Equal(t, 2, ranking.Entries[1].Position)
}

// Scenario: duplicate submission is idempotent and doesn't change score.
func TestScenarioDuplicateSubmissionIsIdempotent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, questions := h.createTrivia(creator, 30,
		fourOptionQuestion("q1", entity.DifficultyEasy, "correct", "w1", "w2", "w3"),
	)
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)

	correct := correctOptionID(questions[0].Options)
	first, err := h.eng.SubmitAnswer(ctx, triviaID, alice, correct)
	require.NoError(t, err)
	assert.True(t, first.IsCorrect)
	assert.Equal(t, 1, first.EarnedPoints)

	// Resubmitting with a different (wrong) option must not overwrite the
	// stored outcome or double the score.
	second, err := h.eng.SubmitAnswer(ctx, triviaID, alice, firstIncorrectOptionID(questions[0].Options))
	require.NoError(t, err)
	assert.True(t, second.IsCorrect)
	assert.Equal(t, 1, second.EarnedPoints)
	assert.Equal(t, 1, second.TotalScore)
	assert.Equal(t, 0, second.TimeRemainingSeconds)
	assert.Equal(t, correct, second.SelectedOptionID)
}

// Scenario: a submission past the question's time limit earns zero,
// regardless of correctness.
func TestScenarioTimeoutEarnsZeroCredit(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, questions := h.createTrivia(creator, 0, // zero-second time limit: instantly expired
		fourOptionQuestion("q1", entity.DifficultyHard, "correct", "w1", "w2", "w3"),
	)
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)

	result, err := h.eng.SubmitAnswer(ctx, triviaID, alice, correctOptionID(questions[0].Options))
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 0, result.EarnedPoints)
	assert.Equal(t, 0, result.TotalScore)
}

// Scenario: Start is blocked when an assigned participation isn't ready.
// Join always resolves straight to READY (SPEC_FULL.md §9), so the
// not-ready case is reached via a participation seeded directly in
// JOINED status, bypassing Join's own resolution.
func TestScenarioStartBlockedByMissingReady(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")
	bob := h.createUser("bob")

	triviaID, _ := h.createTrivia(creator, 30, fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"))
	// bob's Join moves the trivia to LOBBY, so Start reaches the readiness
	// guard instead of failing on the LOBBY status guard.
	_, err := h.eng.Join(ctx, triviaID, bob)
	require.NoError(t, err)
	participationRepo := newParticipationRepoFor(h)
	seedTime := recentTimestamp()
	require.NoError(t, participationRepo.Create(ctx, &entity.Participation{
		ID:         uuidNew(),
		TriviaID:   triviaID,
		UserID:     alice,
		Status:     entity.ParticipationStatusJoined,
		JoinedAt:   &seedTime,
		LastSeenAt: &seedTime,
	}))

	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.Classify(err))
}

// TestStartRejectsWhenParticipationNotPresent drives the presence half of
// the present-and-ready guard: a participation whose last-seen-at has fallen outside
// PRESENCE_TTL blocks Start with Conflict.
func TestStartRejectsWhenParticipationNotPresent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, _ := h.createTrivia(creator, 30, fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"))
	joinResult, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)

	participationRepo := newParticipationRepoFor(h)
	p, err := participationRepo.GetByID(ctx, joinResult.ParticipationID)
	require.NoError(t, err)
	past := veryOldTimestamp()
	p.LastSeenAt = &past
	require.NoError(t, participationRepo.Update(ctx, p))

	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.Classify(err))
}

// Scenario: using 50/50 then submitting applies the scoring rule over the
// narrowed option set and still records the originally selected option.
func TestScenarioFiftyFiftyThenSubmit(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, questions := h.createTrivia(creator, 30,
		fourOptionQuestion("q1", entity.DifficultyMedium, "correct", "w1", "w2", "w3"),
	)
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)

	ff, err := h.eng.UseFiftyFifty(ctx, triviaID, questions[0].ID, alice)
	require.NoError(t, err)
	require.Len(t, ff.AllowedOptions, 2)
	assert.True(t, ff.FiftyFiftyUsed)

	var correctSurvived bool
	correct := correctOptionID(questions[0].Options)
	for _, o := range ff.AllowedOptions {
		if o.ID == correct {
			correctSurvived = true
		}
	}
	assert.True(t, correctSurvived, "the correct option must always survive 50/50")

	// Using it again must fail (Conflict).
	_, err = h.eng.UseFiftyFifty(ctx, triviaID, questions[0].ID, alice)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.Classify(err))

	result, err := h.eng.SubmitAnswer(ctx, triviaID, alice, correct)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 2, result.EarnedPoints)
}

// Scenario: Reset clears answers, scores, and lifeline flags and returns
// the trivia to LOBBY.
func TestScenarioResetClearsAnswers(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")

	triviaID, questions := h.createTrivia(creator, 30,
		fourOptionQuestion("q1", entity.DifficultyEasy, "correct", "w1", "w2", "w3"),
	)
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)
	_, err = h.eng.SubmitAnswer(ctx, triviaID, alice, correctOptionID(questions[0].Options))
	require.NoError(t, err)

	require.NoError(t, h.eng.ResetTrivia(ctx, triviaID))

	ranking, err := h.eng.GetRanking(ctx, triviaID)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 1)
	assert.Equal(t, 0, ranking.Entries[0].Score)

	// A second submission of the same answer must be accepted fresh (no
	// leftover Answer row from before the reset).
	_, err = h.eng.Join(ctx, triviaID, alice) // re-affirm roster membership, now in LOBBY
	require.NoError(t, err)
	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.NoError(t, err)
	result, err := h.eng.SubmitAnswer(ctx, triviaID, alice, correctOptionID(questions[0].Options))
	require.NoError(t, err)
	assert.Equal(t, 1, result.EarnedPoints)
}

func TestJoinIsIdempotent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")
	triviaID, _ := h.createTrivia(creator, 30, fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"))

	first, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	second, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)
	assert.Equal(t, first.ParticipationID, second.ParticipationID)
}

func TestStartRejectsNonCreator(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")
	triviaID, _ := h.createTrivia(creator, 30, fourOptionQuestion("q1", entity.DifficultyEasy, "c", "w1", "w2", "w3"))
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)

	_, err = h.eng.StartTrivia(ctx, triviaID, alice)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.Classify(err))
}

func TestStartRejectsEmptyQuestionSet(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	creator := h.createUser("creator")
	alice := h.createUser("alice")
	triviaID, _ := h.createTrivia(creator, 30)
	// alice's Join moves the trivia to LOBBY, so Start reaches the
	// question-count guard instead of failing on the LOBBY status guard.
	_, err := h.eng.Join(ctx, triviaID, alice)
	require.NoError(t, err)

	_, err = h.eng.StartTrivia(ctx, triviaID, creator)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.Classify(err))
}

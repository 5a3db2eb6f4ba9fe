// Package scorepolicy implements the pure difficulty-to-points mapping used
// by the answer pipeline to credit a correct, on-time answer.
package scorepolicy

import "github.com/triviaengine/sessionengine/internal/domain/entity"

// Table maps difficulty to points-per-correct-answer. The zero value is not
// usable; callers should construct via Default or a config-loaded table.
type Table map[string]int

// Default returns the policy's default payout: EASY=1, MEDIUM=2, HARD=3.
func Default() Table {
	return Table{
		entity.DifficultyEasy:   1,
		entity.DifficultyMedium: 2,
		entity.DifficultyHard:   3,
	}
}

// FromPoints builds a Table from explicit per-difficulty payouts, used to
// construct the policy from configuration instead of Default.
func FromPoints(easy, medium, hard int) Table {
	return Table{
		entity.DifficultyEasy:   easy,
		entity.DifficultyMedium: medium,
		entity.DifficultyHard:   hard,
	}
}

// PointsFor returns the points awarded for a correct answer at the given
// difficulty, or 0 if the difficulty is unrecognized.
func (t Table) PointsFor(difficulty string) int {
	return t[difficulty]
}

// Outcome is the result of scoring a single submission against the question
// clock. See SPEC_FULL.md §4.3 for the exact rule.
type Outcome struct {
	IsCorrect    bool
	EarnedPoints int
}

// Score applies the timeout/correctness rule: a submission past the time
// limit always earns zero, regardless of which option was chosen; otherwise
// a correct option earns PointsFor(difficulty) and an incorrect one earns
// zero.
func (t Table) Score(selectedIsCorrect bool, difficulty string, remainingSeconds int) Outcome {
	if remainingSeconds <= 0 {
		return Outcome{IsCorrect: false, EarnedPoints: 0}
	}
	if selectedIsCorrect {
		return Outcome{IsCorrect: true, EarnedPoints: t.PointsFor(difficulty)}
	}
	return Outcome{IsCorrect: false, EarnedPoints: 0}
}

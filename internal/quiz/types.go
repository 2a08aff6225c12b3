// internal/quiz/types.go
//
// Core type definitions for the quiz engine.
// Defines:
//   - OutcomeCode: how a target left play (first/second/third try, failed, skipped).
//   - Difficulty: closed set of modes mapping to a round time limit + multiplier.
//   - Feedback: transient message shown to the player after each action.
//   - State: the full observable session state snapshot.
//   - Result: the finished-session record handed to the stats layer.

package quiz

import "time"

// OutcomeCode classifies how a target was resolved. Exactly one code is
// recorded per target per session.
type OutcomeCode int

const (
	OutcomeFirstTry  OutcomeCode = 1 // correct on the first attempt
	OutcomeSecondTry OutcomeCode = 2 // correct on the second attempt
	OutcomeThirdTry  OutcomeCode = 3 // correct on the third attempt
	OutcomeFailed    OutcomeCode = 4 // three incorrect attempts (or countdown expiry)
	OutcomeSkipped   OutcomeCode = 5 // player skipped the target
)

// NoTargetAvailable is the sentinel active target when the pool is empty.
// Callers must check for it before acting on State.ActiveTarget.
const NoTargetAvailable = "no-target-available"

// maxAttempts is the per-round attempt ceiling; the third incorrect guess
// forces the round to advance with OutcomeFailed.
const maxAttempts = 3

// FeedbackKind tags a feedback message for presentation.
type FeedbackKind string

const (
	FeedbackCorrect   FeedbackKind = "correct"
	FeedbackIncorrect FeedbackKind = "incorrect"
	FeedbackNone      FeedbackKind = ""
)

// Feedback is the transient message shown after each player action. It clears
// itself after a fixed delay unless the round advances first.
type Feedback struct {
	Message string       `json:"message"`
	Kind    FeedbackKind `json:"kind"`
}

// Difficulty selects the per-round time limit and the end-of-session score
// multiplier. Unknown values behave like DifficultyUntimed.
type Difficulty string

const (
	DifficultyUntimed Difficulty = "untimed"
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
)

// DifficultyConfig is the read-only lookup row for one mode.
type DifficultyConfig struct {
	TimeLimit  time.Duration // 0 means untimed
	Multiplier float64       // applied once at session end
}

var difficultyTable = map[Difficulty]DifficultyConfig{
	DifficultyUntimed: {TimeLimit: 0, Multiplier: 1.0},
	DifficultyEasy:    {TimeLimit: 30 * time.Second, Multiplier: 1.0},
	DifficultyMedium:  {TimeLimit: 15 * time.Second, Multiplier: 1.25},
	DifficultyHard:    {TimeLimit: 8 * time.Second, Multiplier: 1.5},
}

// Config returns the lookup row for d, falling back to untimed (no countdown,
// multiplier 1) when d is unknown or malformed.
func (d Difficulty) Config() DifficultyConfig {
	if c, ok := difficultyTable[d]; ok {
		return c
	}
	return difficultyTable[DifficultyUntimed]
}

// State is a snapshot of the observable session state. The presentation layer
// reads it after every operation call.
type State struct {
	CurrentRound    int                    `json:"currentRound"` // 1-based
	TotalRounds     int                    `json:"totalRounds"`
	CurrentAttempts int                    `json:"currentAttempts"` // 0..3 on the active target
	ActiveTarget    string                 `json:"activeTarget"`
	Score           int                    `json:"score"` // count of first-try successes
	Ledger          map[string]OutcomeCode `json:"ledger"`
	Ended           bool                   `json:"ended"`
	Feedback        Feedback               `json:"feedback"`
}

// Result is the opaque finished-session record handed to the stats layer.
// Score keeps the un-multiplied weighted score so results stay comparable
// across difficulties; FinalScore has the difficulty multiplier applied.
type Result struct {
	Score              int     `json:"score"` // floor(RawScorePercentage)
	RawScorePercentage float64 `json:"rawScorePercentage"`
	FinalScore         int     `json:"finalScore"`
	TimeInSeconds      int     `json:"timeInSeconds"`
	TotalRounds        int     `json:"totalRounds"`
	CorrectAnswers     int     `json:"correctAnswers"` // first-try successes
}

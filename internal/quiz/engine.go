// internal/quiz/engine.go
//
// Round session engine: the state machine driving one quiz session.
// Responsibilities:
//   - Advance rounds over a target pool with no-repeat sampling.
//   - Enforce the three-attempt ceiling and record outcome codes.
//   - Run the session stopwatch and the per-round countdown for timed modes.
//   - Emit feedback with a cancellable self-clear delay.
//
// Notes:
//   - Operations after the session has ended are no-ops (restart with
//     StartNewGame).
//   - Timer callbacks fire on their own goroutines, so all state is guarded
//     by a mutex; generation counters keep stale callbacks from acting on a
//     round they no longer belong to.
//   - An empty pool is not an error: the active target becomes the
//     NoTargetAvailable sentinel and a warning is logged.

package quiz

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mapquiz/go-server/internal/rng"
)

// feedbackTTL is how long a feedback message stays visible unless a newer
// message replaces it first.
const feedbackTTL = 2500 * time.Millisecond

// Engine drives one session of totalRounds rounds over a target pool.
type Engine struct {
	mu sync.Mutex

	selector   *Selector
	difficulty Difficulty
	multiplier MultiplierFunc
	clock      Clock
	observers  []func(State)

	state     State
	stopwatch *Stopwatch

	countdown     TimerHandle
	deadline      time.Time
	feedbackClear TimerHandle
	roundGen      uint64 // bumped on every round transition
	feedbackGen   uint64 // bumped on every feedback change

	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDifficulty selects a difficulty mode (default untimed).
func WithDifficulty(d Difficulty) Option {
	return func(e *Engine) { e.difficulty = d }
}

// WithSource sets the random source used for target sampling. Pass a seeded
// rng.LCG for deterministic (challenge) sessions; defaults to ambient random.
func WithSource(src rng.Source) Option {
	return func(e *Engine) { e.selector.src = src }
}

// WithClock overrides the scheduling clock (tests).
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
		e.stopwatch = NewStopwatch(c)
	}
}

// WithMultiplier overrides the end-of-session multiplier function.
func WithMultiplier(f MultiplierFunc) Option {
	return func(e *Engine) { e.multiplier = f }
}

// WithObserver registers a callback invoked with a state snapshot after every
// mutation. May be given more than once.
func WithObserver(f func(State)) Option {
	return func(e *Engine) { e.observers = append(e.observers, f) }
}

// NewEngine constructs an engine over pool. The session is not started; call
// StartNewGame.
func NewEngine(pool []string, totalRounds int, opts ...Option) *Engine {
	e := &Engine{
		selector:   NewSelector(pool, rng.NewAmbient()),
		difficulty: DifficultyUntimed,
		multiplier: DefaultMultiplier,
		clock:      SystemClock(),
	}
	e.stopwatch = NewStopwatch(e.clock)
	for _, opt := range opts {
		opt(e)
	}
	e.state = State{TotalRounds: totalRounds}
	return e
}

// StartNewGame resets all counters and timers, starts the stopwatch, and
// draws the first target. Safe to call on an ended engine to begin a fresh
// session over the same pool.
func (e *Engine) StartNewGame() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.stopCountdownLocked()
	e.stopFeedbackClearLocked()

	e.selector.Reset()
	e.state = State{
		CurrentRound: 1,
		TotalRounds:  e.state.TotalRounds,
		Ledger:       make(map[string]OutcomeCode),
	}
	e.stopwatch.Start()

	target, ok := e.selector.Next()
	if !ok {
		// Degrade gracefully: the session stays "started" but can produce no
		// meaningful rounds. Callers check for the sentinel.
		e.state.ActiveTarget = NoTargetAvailable
		log.Warn().Msg("quiz: empty target pool, session has no targets")
	} else {
		e.state.ActiveTarget = target
		e.startCountdownLocked()
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// HandleCorrectGuess records a correct identification of the active target
// and advances the round. Ignored once the session has ended or before the
// first StartNewGame.
func (e *Engine) HandleCorrectGuess(target string) {
	e.mu.Lock()
	if e.closed || e.state.Ended || e.state.CurrentRound == 0 || e.state.ActiveTarget == NoTargetAvailable {
		e.mu.Unlock()
		return
	}
	e.state.CurrentAttempts++
	if e.state.CurrentAttempts == 1 {
		e.state.Score++
	}
	e.state.Ledger[target] = OutcomeCode(e.state.CurrentAttempts)
	e.setFeedbackLocked(Feedback{Message: "Correct!", Kind: FeedbackCorrect})
	e.advanceRoundLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// HandleIncorrectGuess records a wrong attempt on the active target. The
// third wrong attempt records OutcomeFailed and force-advances; the return
// value reports whether the round ended. Ignored after the session ends.
func (e *Engine) HandleIncorrectGuess() bool {
	e.mu.Lock()
	if e.closed || e.state.Ended || e.state.CurrentRound == 0 || e.state.ActiveTarget == NoTargetAvailable {
		e.mu.Unlock()
		return false
	}
	e.state.CurrentAttempts++
	roundEnded := e.state.CurrentAttempts >= maxAttempts
	if roundEnded {
		e.state.Ledger[e.state.ActiveTarget] = OutcomeFailed
		e.setFeedbackLocked(Feedback{Message: "Out of attempts: " + e.state.ActiveTarget, Kind: FeedbackIncorrect})
		e.advanceRoundLocked()
	} else {
		e.setFeedbackLocked(Feedback{Message: "Incorrect, try again", Kind: FeedbackIncorrect})
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return roundEnded
}

// SkipEntity gives up on the active target, records OutcomeSkipped, and
// force-advances. Returns the skipped target's identifier, or "" if the
// session has ended or holds no target.
func (e *Engine) SkipEntity() string {
	e.mu.Lock()
	if e.closed || e.state.Ended || e.state.CurrentRound == 0 || e.state.ActiveTarget == NoTargetAvailable {
		e.mu.Unlock()
		return ""
	}
	skipped := e.state.ActiveTarget
	e.state.CurrentAttempts = maxAttempts
	e.state.Ledger[skipped] = OutcomeSkipped
	e.setFeedbackLocked(Feedback{Message: "Skipped: " + skipped, Kind: FeedbackIncorrect})
	e.advanceRoundLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return skipped
}

// State returns a copy of the observable session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Elapsed returns the session stopwatch reading.
func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopwatch.Elapsed()
}

// RoundTimeLeft returns the remaining countdown for the active round, or 0
// when the mode is untimed or no round is running.
func (e *Engine) RoundTimeLeft() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.countdown == nil || e.state.Ended {
		return 0
	}
	left := e.deadline.Sub(e.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Result computes the finished-session record. Valid once State().Ended is
// true; before that it reflects the rounds resolved so far.
func (e *Engine) Result() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	raw := RawScorePercentage(e.state.Ledger, e.state.TotalRounds)
	base := int(math.Floor(raw))
	return Result{
		Score:              base,
		RawScorePercentage: raw,
		FinalScore:         e.multiplier(base, e.difficulty),
		TimeInSeconds:      int(e.stopwatch.Elapsed().Seconds()),
		TotalRounds:        e.state.TotalRounds,
		CorrectAnswers:     e.state.Score,
	}
}

// Difficulty returns the mode the engine was built with.
func (e *Engine) Difficulty() Difficulty { return e.difficulty }

// Close disposes the engine: all pending timers are stopped and every later
// operation or timer callback is a no-op.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.stopCountdownLocked()
	e.stopFeedbackClearLocked()
	e.stopwatch.Stop()
}

// ----------------------------- internals -----------------------------------

// advanceRoundLocked moves to the next round or ends the session. Cancels the
// countdown belonging to the round just ended on every path.
func (e *Engine) advanceRoundLocked() {
	e.stopCountdownLocked()
	if e.state.CurrentRound >= e.state.TotalRounds {
		e.state.Ended = true
		e.stopwatch.Stop()
		return
	}
	e.state.CurrentRound++
	e.state.CurrentAttempts = 0
	target, ok := e.selector.Next()
	if !ok {
		e.state.ActiveTarget = NoTargetAvailable
		log.Warn().Int("round", e.state.CurrentRound).Msg("quiz: target pool exhausted mid-session")
		return
	}
	e.state.ActiveTarget = target
	e.startCountdownLocked()
}

// startCountdownLocked arms the per-round countdown for timed modes. The
// captured generation lets the expiry callback detect that its round is over.
func (e *Engine) startCountdownLocked() {
	limit := e.difficulty.Config().TimeLimit
	if limit <= 0 || e.closed {
		return
	}
	e.roundGen++
	gen := e.roundGen
	e.deadline = e.clock.Now().Add(limit)
	e.countdown = e.clock.AfterFunc(limit, func() { e.countdownExpired(gen) })
}

func (e *Engine) stopCountdownLocked() {
	e.roundGen++ // invalidate any in-flight expiry callback
	if e.countdown != nil {
		e.countdown.Stop()
		e.countdown = nil
	}
}

// countdownExpired handles a round timer reaching zero: same outcome as three
// failed attempts, with feedback naming the expired target.
func (e *Engine) countdownExpired(gen uint64) {
	e.mu.Lock()
	if e.closed || e.state.Ended || gen != e.roundGen {
		e.mu.Unlock()
		return
	}
	expired := e.state.ActiveTarget
	e.state.CurrentAttempts = maxAttempts
	e.state.Ledger[expired] = OutcomeFailed
	e.setFeedbackLocked(Feedback{Message: "Time's up: " + expired, Kind: FeedbackIncorrect})
	e.advanceRoundLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// setFeedbackLocked replaces the current feedback and schedules its clear.
// Bumping the generation cancels the pending clear from the previous message,
// so an old timer can never erase feedback belonging to a newer round.
func (e *Engine) setFeedbackLocked(f Feedback) {
	e.stopFeedbackClearLocked()
	gen := e.feedbackGen
	e.state.Feedback = f
	if e.closed {
		return
	}
	e.feedbackClear = e.clock.AfterFunc(feedbackTTL, func() { e.clearFeedback(gen) })
}

func (e *Engine) stopFeedbackClearLocked() {
	e.feedbackGen++ // invalidate any in-flight clear callback
	if e.feedbackClear != nil {
		e.feedbackClear.Stop()
		e.feedbackClear = nil
	}
}

func (e *Engine) clearFeedback(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.feedbackGen {
		e.mu.Unlock()
		return
	}
	e.state.Feedback = Feedback{}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// snapshotLocked copies the state, including the ledger map, so callers can
// hold it without racing the engine.
func (e *Engine) snapshotLocked() State {
	snap := e.state
	snap.Ledger = make(map[string]OutcomeCode, len(e.state.Ledger))
	for k, v := range e.state.Ledger {
		snap.Ledger[k] = v
	}
	return snap
}

func (e *Engine) notify(snap State) {
	for _, f := range e.observers {
		f(snap)
	}
}

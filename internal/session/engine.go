package session

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/dhwanit3747/learnersai/internal/models"
)

// Status is the engine's position in its lifecycle. Terminal is
// absorbing; the only way out is destroying the session.
type Status string

const (
	StatusActive   Status = "active"
	StatusRevealed Status = "revealed"
	StatusTerminal Status = "terminal"
)

// Outcome records what happened to one item.
type Outcome string

const (
	OutcomeUnanswered Outcome = "unanswered"
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeKnown      Outcome = "known"
	OutcomeLearning   Outcome = "learning"
	OutcomeRead       Outcome = "read"
)

// GameItemSeconds is the per-challenge countdown in game sessions.
const GameItemSeconds = 15

var (
	ErrEmptyContent    = errors.New("session: payload has no items")
	ErrIllegalState    = errors.New("session: transition not legal in current state")
	ErrNotSupported    = errors.New("session: transition not defined for this mode")
	ErrInvalidAnswer   = errors.New("session: answer does not match the current item")
	ErrPointsUnread    = errors.New("session: all key points must be read before completing")
	ErrIndexOutOfRange = errors.New("session: item index out of range")
)

// Answer carries the user's input for submitAnswer. Which field is
// read depends on the session's mode.
type Answer struct {
	SelectedIndex int    `json:"selected_index"` // quiz: chosen option
	Rating        string `json:"rating"`         // flashcards: "known" | "learning"
	Text          string `json:"text"`           // games: typed or chosen answer
	TimedOut      bool   `json:"timed_out"`      // games: countdown expired
}

// Result is emitted exactly once, when the session reaches Terminal.
type Result struct {
	Topic           string              `json:"topic"`
	Mode            models.LearningMode `json:"mode"`
	ActivityType    string              `json:"activity_type"`
	Points          int                 `json:"points"`
	Score           int                 `json:"score"`
	Total           int                 `json:"total"`
	MaxStreak       int                 `json:"max_streak"`
	AccuracyPercent int                 `json:"accuracy_percent"`
	Known           int                 `json:"known"`
	Learning        int                 `json:"learning"`
}

// Engine is the generic state machine driving one learning session
// through an ordered item sequence. It is owned by exactly one user,
// who has at most one active session and drives it synchronously, so
// it carries no lock of its own.
type Engine struct {
	topic    string
	mode     models.LearningMode
	payload  *models.ContentPayload
	strategy strategy
	now      func() time.Time

	status    Status
	index     int
	outcomes  []Outcome
	score     int
	streak    int
	maxStreak int
	known     int
	learning  int
	flipped   bool
	readCount int
	deadline  time.Time
	result    *Result
}

// New builds an engine over a validated payload. An empty item
// sequence is rejected here: it never enters Active.
func New(topic string, payload *models.ContentPayload) (*Engine, error) {
	return NewWithClock(topic, payload, time.Now)
}

func NewWithClock(topic string, payload *models.ContentPayload, now func() time.Time) (*Engine, error) {
	strat, err := strategyFor(payload.Mode)
	if err != nil {
		return nil, err
	}

	total := payload.ItemCount()
	if total == 0 {
		return nil, ErrEmptyContent
	}

	outcomes := make([]Outcome, total)
	for i := range outcomes {
		outcomes[i] = OutcomeUnanswered
	}

	e := &Engine{
		topic:    strings.TrimSpace(topic),
		mode:     payload.Mode,
		payload:  payload,
		strategy: strat,
		now:      now,
		status:   StatusActive,
		outcomes: outcomes,
	}
	if strat.timed {
		e.deadline = now().Add(GameItemSeconds * time.Second)
	}
	return e, nil
}

func (e *Engine) Topic() string             { return e.topic }
func (e *Engine) Mode() models.LearningMode { return e.mode }
func (e *Engine) Status() Status            { return e.status }
func (e *Engine) Index() int                { return e.index }
func (e *Engine) Total() int                { return len(e.outcomes) }
func (e *Engine) Score() int                { return e.score }
func (e *Engine) Streak() int               { return e.streak }

func (e *Engine) Payload() *models.ContentPayload { return e.payload }

// Outcome returns the recorded outcome for one item.
func (e *Engine) Outcome(i int) Outcome {
	if i < 0 || i >= len(e.outcomes) {
		return OutcomeUnanswered
	}
	return e.outcomes[i]
}

// TimeLeft reports whole seconds remaining on the current game item.
func (e *Engine) TimeLeft() int {
	if !e.strategy.timed || e.status != StatusActive {
		return 0
	}
	left := int(e.deadline.Sub(e.now()).Seconds())
	if left < 0 {
		return 0
	}
	return left
}

// SubmitAnswer evaluates the user's input against the current item and
// moves the session to Revealed. Only legal while Active; a second
// submission for the same item is rejected.
func (e *Engine) SubmitAnswer(ans Answer) error {
	if !e.strategy.answerable {
		return ErrNotSupported
	}
	if e.status != StatusActive {
		return ErrIllegalState
	}

	outcome, points, err := e.strategy.evaluate(e, ans)
	if err != nil {
		return err
	}

	e.outcomes[e.index] = outcome
	e.score += points

	switch outcome {
	case OutcomeKnown:
		e.known++
	case OutcomeLearning:
		e.learning++
	}

	if e.strategy.timed {
		if outcome == OutcomeCorrect {
			e.streak++
			if e.streak > e.maxStreak {
				e.maxStreak = e.streak
			}
		} else {
			e.streak = 0
		}
	}

	e.status = StatusRevealed

	if e.strategy.autoAdvance {
		return e.Advance()
	}
	return nil
}

// Advance moves to the next item, or to Terminal from the last one.
// Legal from Revealed, or directly from Active for pure-navigation
// modes. Once Terminal, further calls are no-ops.
func (e *Engine) Advance() error {
	if e.status == StatusTerminal {
		return nil
	}
	if e.status == StatusActive {
		if !e.strategy.freeAdvance {
			return ErrIllegalState
		}
		// Reaching a panel by advancing through it counts as reading it.
		if e.outcomes[e.index] == OutcomeUnanswered {
			e.outcomes[e.index] = OutcomeRead
			e.readCount++
		}
	}

	if e.index+1 < len(e.outcomes) {
		e.index++
		e.status = StatusActive
		e.flipped = false
		if e.strategy.timed {
			e.deadline = e.now().Add(GameItemSeconds * time.Second)
		}
		return nil
	}

	e.finish()
	return nil
}

// Flip toggles the flashcard face. Pure display state: it is never
// required before self-reporting and resets front-facing on advance.
func (e *Engine) Flip() error {
	if e.mode != models.ModeFlashcards {
		return ErrNotSupported
	}
	if e.status != StatusActive {
		return ErrIllegalState
	}
	e.flipped = !e.flipped
	return nil
}

func (e *Engine) Flipped() bool { return e.flipped }

// Jump moves directly to an arbitrary panel. It does not mark the
// panels skipped over (or landed on) as read; only advancing off the
// final panel terminates the session.
func (e *Engine) Jump(i int) error {
	if e.mode != models.ModeComic {
		return ErrNotSupported
	}
	if e.status != StatusActive {
		return ErrIllegalState
	}
	if i < 0 || i >= len(e.outcomes) {
		return ErrIndexOutOfRange
	}
	e.index = i
	return nil
}

// ExpandPoint marks a brief key point read. Sticky and idempotent:
// collapsing or re-expanding never unsets or double-counts it.
func (e *Engine) ExpandPoint(i int) error {
	if e.mode != models.ModeBrief {
		return ErrNotSupported
	}
	if e.status != StatusActive {
		return ErrIllegalState
	}
	if i < 0 || i >= len(e.outcomes) {
		return ErrIndexOutOfRange
	}
	if e.outcomes[i] != OutcomeRead {
		e.outcomes[i] = OutcomeRead
		e.readCount++
	}
	return nil
}

func (e *Engine) ReadCount() int { return e.readCount }

// Complete finishes a brief session. Gated on every key point having
// been read at least once; this is eligibility, not scoring.
func (e *Engine) Complete() error {
	if e.mode != models.ModeBrief {
		return ErrNotSupported
	}
	if e.status != StatusActive {
		return ErrIllegalState
	}
	if e.readCount < len(e.outcomes) {
		return ErrPointsUnread
	}
	e.finish()
	return nil
}

// Timeout reports that the countdown for item index expired with no
// submission. A stale timer (index no longer current, or the session
// already Revealed/Terminal) is discarded as a no-op.
func (e *Engine) Timeout(index int) error {
	if !e.strategy.timed {
		return ErrNotSupported
	}
	if e.status != StatusActive || index != e.index {
		return nil
	}
	return e.SubmitAnswer(Answer{TimedOut: true})
}

// Result returns the completion result once the session is Terminal.
func (e *Engine) Result() (*Result, bool) {
	if e.result == nil {
		return nil, false
	}
	return e.result, true
}

func (e *Engine) finish() {
	e.status = StatusTerminal
	total := len(e.outcomes)

	r := &Result{
		Topic:        e.topic,
		Mode:         e.mode,
		ActivityType: e.strategy.activityType,
		Points:       e.strategy.reward(e),
		Score:        e.score,
		Total:        total,
		MaxStreak:    e.maxStreak,
		Known:        e.known,
		Learning:     e.learning,
	}
	if e.strategy.timed {
		// Reward-weighted display figure, not a literal correctness ratio.
		r.AccuracyPercent = int(math.Round(100 * float64(e.score) / float64(total*15)))
	}
	e.result = r
}

package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dhwanit3747/learnersai/internal/models"
)

// ─── Payload fixtures ───

func quizPayload(n int) *models.ContentPayload {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			Question:     fmt.Sprintf("Question %d?", i),
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
			Explanation:  "because",
		}
	}
	return &models.ContentPayload{Mode: models.ModeQuiz, Questions: questions}
}

func cardsPayload(n int) *models.ContentPayload {
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{Front: fmt.Sprintf("front %d", i), Back: fmt.Sprintf("back %d", i)}
	}
	return &models.ContentPayload{Mode: models.ModeFlashcards, Cards: cards}
}

func comicPayload(n int) *models.ContentPayload {
	panels := make([]models.Panel, n)
	for i := range panels {
		panels[i] = models.Panel{Title: fmt.Sprintf("Panel %d", i), Content: "...", Character: "professor", Emotion: "excited"}
	}
	return &models.ContentPayload{Mode: models.ModeComic, Panels: panels}
}

func briefPayload(points int) *models.ContentPayload {
	keyPoints := make([]string, points)
	for i := range keyPoints {
		keyPoints[i] = fmt.Sprintf("Key point %d.", i)
	}
	return &models.ContentPayload{Mode: models.ModeBrief, Brief: &models.Brief{
		Title:      "Topic",
		Summary:    "Summary.",
		KeyPoints:  keyPoints,
		FunFact:    "Fact.",
		Difficulty: "beginner",
	}}
}

func gamesPayload(n int) *models.ContentPayload {
	games := make([]models.Challenge, n)
	for i := range games {
		games[i] = models.Challenge{Type: "fill_blank", Question: fmt.Sprintf("Q%d", i), Answer: fmt.Sprintf("answer%d", i)}
	}
	return &models.ContentPayload{Mode: models.ModeGames, Games: games}
}

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// ─── Construction ───

func TestNewRejectsEmptyContent(t *testing.T) {
	payloads := []*models.ContentPayload{
		{Mode: models.ModeQuiz},
		{Mode: models.ModeFlashcards},
		{Mode: models.ModeComic},
		{Mode: models.ModeBrief, Brief: &models.Brief{Title: "t"}},
		{Mode: models.ModeGames},
	}
	for _, p := range payloads {
		if _, err := New("topic", p); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("mode %s: expected ErrEmptyContent, got %v", p.Mode, err)
		}
	}
}

func TestNewTrimsTopic(t *testing.T) {
	e, err := New("  photosynthesis  ", quizPayload(3))
	if err != nil {
		t.Fatal(err)
	}
	if e.Topic() != "photosynthesis" {
		t.Errorf("expected trimmed topic, got %q", e.Topic())
	}
}

// ─── Quiz ───

func TestQuizPerfectRun(t *testing.T) {
	e, _ := New("t", quizPayload(5))

	for i := 0; i < 5; i++ {
		if err := e.SubmitAnswer(Answer{SelectedIndex: 1}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if e.Status() != StatusRevealed {
			t.Fatalf("submit %d: expected Revealed, got %s", i, e.Status())
		}
		if err := e.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	if e.Status() != StatusTerminal {
		t.Fatalf("expected Terminal, got %s", e.Status())
	}
	res, ok := e.Result()
	if !ok {
		t.Fatal("expected result")
	}
	if res.Score != 5 || res.Total != 5 {
		t.Errorf("score %d/%d, want 5/5", res.Score, res.Total)
	}
	if res.Points != 15 {
		t.Errorf("perfect quiz points = %d, want 15", res.Points)
	}
	if res.ActivityType != models.ActivityQuizCompleted {
		t.Errorf("activity type = %q", res.ActivityType)
	}
}

func TestQuizImperfectRunScoresBasePoints(t *testing.T) {
	e, _ := New("t", quizPayload(5))

	for i := 0; i < 5; i++ {
		selected := 1
		if i == 0 {
			selected = 0 // one wrong answer
		}
		if err := e.SubmitAnswer(Answer{SelectedIndex: selected}); err != nil {
			t.Fatal(err)
		}
		if err := e.Advance(); err != nil {
			t.Fatal(err)
		}
	}

	res, _ := e.Result()
	if res.Score != 4 {
		t.Errorf("score = %d, want 4", res.Score)
	}
	if res.Points != 10 {
		t.Errorf("points = %d, want 10", res.Points)
	}
}

func TestQuizDoubleSubmitRejected(t *testing.T) {
	e, _ := New("t", quizPayload(3))

	if err := e.SubmitAnswer(Answer{SelectedIndex: 1}); err != nil {
		t.Fatal(err)
	}
	if err := e.SubmitAnswer(Answer{SelectedIndex: 2}); !errors.Is(err, ErrIllegalState) {
		t.Errorf("expected ErrIllegalState, got %v", err)
	}
	if e.Score() != 1 {
		t.Errorf("score changed on rejected submit: %d", e.Score())
	}
}

func TestQuizAdvanceBeforeAnswerRejected(t *testing.T) {
	e, _ := New("t", quizPayload(3))
	if err := e.Advance(); !errors.Is(err, ErrIllegalState) {
		t.Errorf("expected ErrIllegalState, got %v", err)
	}
}

func TestQuizAnswerIndexOutOfRange(t *testing.T) {
	e, _ := New("t", quizPayload(3))
	for _, idx := range []int{-1, 4, 99} {
		if err := e.SubmitAnswer(Answer{SelectedIndex: idx}); !errors.Is(err, ErrInvalidAnswer) {
			t.Errorf("index %d: expected ErrInvalidAnswer, got %v", idx, err)
		}
	}
	if e.Status() != StatusActive {
		t.Errorf("rejected answers must leave session Active, got %s", e.Status())
	}
}

func TestQuizUnsupportedTransitions(t *testing.T) {
	e, _ := New("t", quizPayload(3))
	if err := e.Flip(); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Flip: expected ErrNotSupported, got %v", err)
	}
	if err := e.Jump(1); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Jump: expected ErrNotSupported, got %v", err)
	}
	if err := e.Complete(); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Complete: expected ErrNotSupported, got %v", err)
	}
	if err := e.Timeout(0); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Timeout: expected ErrNotSupported, got %v", err)
	}
}

// ─── Flashcards ───

func TestFlashcardsAutoAdvanceAndReward(t *testing.T) {
	e, _ := New("t", cardsPayload(4))

	ratings := []string{"known", "learning", "known", "known"}
	for i, rating := range ratings {
		if e.Index() != i {
			t.Fatalf("expected index %d, got %d", i, e.Index())
		}
		if err := e.SubmitAnswer(Answer{Rating: rating}); err != nil {
			t.Fatal(err)
		}
	}

	if e.Status() != StatusTerminal {
		t.Fatalf("expected Terminal after rating last card, got %s", e.Status())
	}
	res, _ := e.Result()
	if res.Known != 3 || res.Learning != 1 {
		t.Errorf("known/learning = %d/%d, want 3/1", res.Known, res.Learning)
	}
	if res.Points != 5 {
		t.Errorf("points = %d, want 5", res.Points)
	}
}

func TestFlashcardsInvalidRating(t *testing.T) {
	e, _ := New("t", cardsPayload(2))
	if err := e.SubmitAnswer(Answer{Rating: "maybe"}); !errors.Is(err, ErrInvalidAnswer) {
		t.Errorf("expected ErrInvalidAnswer, got %v", err)
	}
}

func TestFlipTogglesAndResetsOnAdvance(t *testing.T) {
	e, _ := New("t", cardsPayload(3))

	if e.Flipped() {
		t.Fatal("new card must start front-facing")
	}
	e.Flip()
	if !e.Flipped() {
		t.Fatal("expected flipped after Flip")
	}
	e.Flip()
	if e.Flipped() {
		t.Fatal("expected front-facing after second Flip")
	}

	e.Flip()
	if err := e.SubmitAnswer(Answer{Rating: "known"}); err != nil {
		t.Fatal(err)
	}
	if e.Flipped() {
		t.Error("next card must start front-facing")
	}
}

// ─── Comic ───

func TestComicAdvancesFreelyAndFinishes(t *testing.T) {
	e, _ := New("t", comicPayload(3))

	for i := 0; i < 3; i++ {
		if err := e.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	if e.Status() != StatusTerminal {
		t.Fatalf("expected Terminal, got %s", e.Status())
	}
	res, _ := e.Result()
	if res.Points != 15 {
		t.Errorf("points = %d, want 15", res.Points)
	}
	if res.ActivityType != models.ActivityComicRead {
		t.Errorf("activity type = %q", res.ActivityType)
	}
}

func TestComicJump(t *testing.T) {
	e, _ := New("t", comicPayload(5))

	if err := e.Jump(3); err != nil {
		t.Fatal(err)
	}
	if e.Index() != 3 {
		t.Errorf("index = %d, want 3", e.Index())
	}
	if e.Status() != StatusActive {
		t.Errorf("jump must not change status, got %s", e.Status())
	}

	// Jumping to the last panel does not finish the session.
	if err := e.Jump(4); err != nil {
		t.Fatal(err)
	}
	if e.Status() != StatusActive {
		t.Errorf("landing on last panel must not terminate, got %s", e.Status())
	}

	for _, idx := range []int{-1, 5} {
		if err := e.Jump(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("jump %d: expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
}

// ─── Brief ───

func TestBriefCompleteGatedOnReadPoints(t *testing.T) {
	e, _ := New("t", briefPayload(3))

	if err := e.Complete(); !errors.Is(err, ErrPointsUnread) {
		t.Fatalf("expected ErrPointsUnread, got %v", err)
	}

	e.ExpandPoint(0)
	e.ExpandPoint(1)
	if err := e.Complete(); !errors.Is(err, ErrPointsUnread) {
		t.Fatalf("expected ErrPointsUnread with one point unread, got %v", err)
	}

	e.ExpandPoint(2)
	if err := e.Complete(); err != nil {
		t.Fatal(err)
	}
	res, _ := e.Result()
	if res.Points != 8 {
		t.Errorf("points = %d, want 8", res.Points)
	}
}

func TestBriefExpandIsIdempotent(t *testing.T) {
	e, _ := New("t", briefPayload(3))

	e.ExpandPoint(1)
	e.ExpandPoint(1)
	e.ExpandPoint(1)
	if e.ReadCount() != 1 {
		t.Errorf("read count = %d, want 1", e.ReadCount())
	}

	if err := e.ExpandPoint(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

// ─── Games ───

func TestGameScoringWithTimeAndStreak(t *testing.T) {
	clock := newFakeClock()
	e, _ := NewWithClock("t", gamesPayload(3), clock.now)

	// Each answer lands with 6 seconds elapsed: timeLeft 9, bonus 3.
	expected := []int{13, 14, 15} // 10 + 3 + min(streakBefore, 5)
	total := 0
	for i, want := range expected {
		clock.advance(6 * time.Second)
		if err := e.SubmitAnswer(Answer{Text: fmt.Sprintf("answer%d", i)}); err != nil {
			t.Fatal(err)
		}
		total += want
		if e.Score() != total {
			t.Fatalf("item %d: score = %d, want %d", i, e.Score(), total)
		}
		e.Advance()
	}

	res, _ := e.Result()
	if res.Points != total {
		t.Errorf("points = %d, want score %d", res.Points, total)
	}
	if res.MaxStreak != 3 {
		t.Errorf("max streak = %d, want 3", res.MaxStreak)
	}
	// round(100 * 42 / 45)
	if res.AccuracyPercent != 93 {
		t.Errorf("accuracy = %d, want 93", res.AccuracyPercent)
	}
}

func TestGameStreakBonusCapsAtFive(t *testing.T) {
	clock := newFakeClock()
	e, _ := NewWithClock("t", gamesPayload(8), clock.now)

	for i := 0; i < 8; i++ {
		// Answer instantly: timeLeft 15, time bonus 5.
		if err := e.SubmitAnswer(Answer{Text: fmt.Sprintf("answer%d", i)}); err != nil {
			t.Fatal(err)
		}
		e.Advance()
	}

	// Streak bonuses: 0,1,2,3,4,5,5,5 on top of 15 base+time each.
	res, _ := e.Result()
	want := 8*15 + (0 + 1 + 2 + 3 + 4 + 5 + 5 + 5)
	if res.Points != want {
		t.Errorf("points = %d, want %d", res.Points, want)
	}
}

func TestGameAnswerMatchingIsNormalized(t *testing.T) {
	clock := newFakeClock()
	e, _ := NewWithClock("t", gamesPayload(2), clock.now)

	if err := e.SubmitAnswer(Answer{Text: "  ANSWER0  "}); err != nil {
		t.Fatal(err)
	}
	if e.Outcome(0) != OutcomeCorrect {
		t.Errorf("normalized answer should match, got %s", e.Outcome(0))
	}

	e.Advance()
	if err := e.SubmitAnswer(Answer{Text: "answer 1"}); err != nil {
		t.Fatal(err)
	}
	if e.Outcome(1) != OutcomeIncorrect {
		t.Errorf("inner whitespace must not match, got %s", e.Outcome(1))
	}
}

func TestGameWrongAnswerResetsStreak(t *testing.T) {
	clock := newFakeClock()
	e, _ := NewWithClock("t", gamesPayload(3), clock.now)

	e.SubmitAnswer(Answer{Text: "answer0"})
	e.Advance()
	e.SubmitAnswer(Answer{Text: "wrong"})
	if e.Streak() != 0 {
		t.Errorf("streak = %d, want 0 after miss", e.Streak())
	}
	e.Advance()
	e.SubmitAnswer(Answer{Text: "answer2"})

	res, ok := func() (*Result, bool) { e.Advance(); return e.Result() }()
	if !ok {
		t.Fatal("expected result")
	}
	if res.MaxStreak != 1 {
		t.Errorf("max streak = %d, want 1", res.MaxStreak)
	}
}

func TestGameTimeoutCountsAsIncorrect(t *testing.T) {
	clock := newFakeClock()
	e, _ := NewWithClock("t", gamesPayload(2), clock.now)

	clock.advance(16 * time.Second)
	if err := e.Timeout(0); err != nil {
		t.Fatal(err)
	}
	if e.Outcome(0) != OutcomeIncorrect {
		t.Errorf("timeout outcome = %s, want incorrect", e.Outcome(0))
	}
	if e.Status() != StatusRevealed {
		t.Errorf("timeout must reveal, got %s", e.Status())
	}
	if e.Score() != 0 {
		t.Errorf("timeout must award nothing, got %d", e.Score())
	}
}

func TestGameLateSubmissionScoresZero(t *testing.T) {
	clock := newFakeClock()
	e, _ := NewWithClock("t", gamesPayload(1), clock.now)

	clock.advance(20 * time.Second)
	// Correct text, but past the deadline.
	if err := e.SubmitAnswer(Answer{Text: "answer0"}); err != nil {
		t.Fatal(err)
	}
	if e.Outcome(0) != OutcomeIncorrect {
		t.Errorf("late submission outcome = %s, want incorrect", e.Outcome(0))
	}
}

func TestGameStaleTimeoutIsNoOp(t *testing.T) {
	clock := newFakeClock()
	e, _ := NewWithClock("t", gamesPayload(3), clock.now)

	e.SubmitAnswer(Answer{Text: "answer0"})
	e.Advance()

	// Timer fired for item 0 after the session moved on.
	if err := e.Timeout(0); err != nil {
		t.Fatal(err)
	}
	if e.Index() != 1 || e.Status() != StatusActive {
		t.Errorf("stale timeout must not disturb item 1 (index %d, status %s)", e.Index(), e.Status())
	}

	// Timer fired while the current item is already revealed.
	e.SubmitAnswer(Answer{Text: "wrong"})
	if err := e.Timeout(1); err != nil {
		t.Fatal(err)
	}
	if e.Outcome(1) != OutcomeIncorrect {
		t.Errorf("revealed outcome must stand, got %s", e.Outcome(1))
	}
}

func TestGameDeadlineResetsPerItem(t *testing.T) {
	clock := newFakeClock()
	e, _ := NewWithClock("t", gamesPayload(2), clock.now)

	clock.advance(10 * time.Second)
	e.SubmitAnswer(Answer{Text: "answer0"})
	e.Advance()

	if e.TimeLeft() != GameItemSeconds {
		t.Errorf("fresh item time left = %d, want %d", e.TimeLeft(), GameItemSeconds)
	}
}

// ─── Terminal behavior ───

func TestTerminalIsAbsorbing(t *testing.T) {
	e, _ := New("t", comicPayload(2))
	e.Advance()
	e.Advance()

	if e.Status() != StatusTerminal {
		t.Fatal("expected Terminal")
	}

	res1, _ := e.Result()
	if err := e.Advance(); err != nil {
		t.Errorf("advance on terminal must be a no-op, got %v", err)
	}
	res2, _ := e.Result()
	if res1 != res2 {
		t.Error("result must be computed once")
	}

	if err := e.SubmitAnswer(Answer{}); !errors.Is(err, ErrNotSupported) {
		t.Errorf("expected ErrNotSupported, got %v", err)
	}
}

func TestResultAbsentBeforeTerminal(t *testing.T) {
	e, _ := New("t", quizPayload(2))
	if _, ok := e.Result(); ok {
		t.Error("result must not exist before Terminal")
	}
	e.SubmitAnswer(Answer{SelectedIndex: 1})
	if _, ok := e.Result(); ok {
		t.Error("result must not exist while Revealed")
	}
}

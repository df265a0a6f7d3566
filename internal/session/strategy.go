package session

import (
	"fmt"
	"strings"

	"github.com/dhwanit3747/learnersai/internal/models"
)

// strategy captures the per-mode specialization of the engine: the
// correctness predicate, the reward function, and the navigation rules.
type strategy struct {
	activityType string
	answerable   bool // submitAnswer is a legal transition
	freeAdvance  bool // advance is legal straight from Active
	autoAdvance  bool // submitAnswer implies advance
	timed        bool // per-item countdown and answer streak
	evaluate     func(e *Engine, ans Answer) (Outcome, int, error)
	reward       func(e *Engine) int
}

func strategyFor(mode models.LearningMode) (strategy, error) {
	switch mode {
	case models.ModeQuiz:
		return strategy{
			activityType: models.ActivityQuizCompleted,
			answerable:   true,
			evaluate:     evaluateQuiz,
			reward:       rewardQuiz,
		}, nil
	case models.ModeFlashcards:
		return strategy{
			activityType: models.ActivityFlashcardsReviewed,
			answerable:   true,
			autoAdvance:  true,
			evaluate:     evaluateFlashcard,
			reward:       func(*Engine) int { return 5 },
		}, nil
	case models.ModeComic:
		return strategy{
			activityType: models.ActivityComicRead,
			freeAdvance:  true,
			reward:       func(*Engine) int { return 15 },
		}, nil
	case models.ModeBrief:
		return strategy{
			activityType: models.ActivityBriefCompleted,
			reward:       func(*Engine) int { return 8 },
		}, nil
	case models.ModeGames:
		return strategy{
			activityType: models.ActivityGameCompleted,
			answerable:   true,
			timed:        true,
			evaluate:     evaluateGame,
			reward:       func(e *Engine) int { return e.score },
		}, nil
	}
	return strategy{}, fmt.Errorf("session: unknown mode %q", mode)
}

// evaluateQuiz: selected option must equal the stored correct index.
// No partial credit; the quiz score counts correct answers.
func evaluateQuiz(e *Engine, ans Answer) (Outcome, int, error) {
	q := e.payload.Questions[e.index]
	if ans.SelectedIndex < 0 || ans.SelectedIndex >= len(q.Options) {
		return "", 0, ErrInvalidAnswer
	}
	if ans.SelectedIndex == q.CorrectIndex {
		return OutcomeCorrect, 1, nil
	}
	return OutcomeIncorrect, 0, nil
}

// rewardQuiz: 10 base, +5 for a perfect run.
func rewardQuiz(e *Engine) int {
	points := 10
	if e.score == len(e.outcomes) {
		points += 5
	}
	return points
}

// evaluateFlashcard: no correctness, the user self-reports. The flip
// state plays no part.
func evaluateFlashcard(e *Engine, ans Answer) (Outcome, int, error) {
	switch ans.Rating {
	case "known":
		return OutcomeKnown, 0, nil
	case "learning":
		return OutcomeLearning, 0, nil
	}
	return "", 0, ErrInvalidAnswer
}

// evaluateGame: timeout counts as an incorrect submission with an
// empty value. A correct answer earns 10 plus a time bonus plus a
// streak bonus computed from the streak before this item.
func evaluateGame(e *Engine, ans Answer) (Outcome, int, error) {
	g := e.payload.Games[e.index]
	timeLeft := e.TimeLeft()
	if ans.TimedOut || timeLeft <= 0 {
		return OutcomeIncorrect, 0, nil
	}
	if normalizeAnswer(ans.Text) != normalizeAnswer(g.Answer) {
		return OutcomeIncorrect, 0, nil
	}

	streakBonus := e.streak
	if streakBonus > 5 {
		streakBonus = 5
	}
	return OutcomeCorrect, 10 + timeLeft/3 + streakBonus, nil
}

// normalizeAnswer implements the case- and whitespace-insensitive
// exact match used for game answers. No fuzzy matching.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

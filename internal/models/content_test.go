package models

import "testing"

func TestLearningModeValid(t *testing.T) {
	for _, mode := range []LearningMode{ModeQuiz, ModeFlashcards, ModeComic, ModeBrief, ModeGames} {
		if !mode.Valid() {
			t.Errorf("%s should be valid", mode)
		}
	}
	for _, mode := range []LearningMode{"", "podcast", "Quiz"} {
		if mode.Valid() {
			t.Errorf("%q should be invalid", mode)
		}
	}
}

func TestItemCount(t *testing.T) {
	tests := []struct {
		name    string
		payload ContentPayload
		want    int
	}{
		{"quiz", ContentPayload{Mode: ModeQuiz, Questions: make([]Question, 5)}, 5},
		{"flashcards", ContentPayload{Mode: ModeFlashcards, Cards: make([]Card, 8)}, 8},
		{"comic", ContentPayload{Mode: ModeComic, Panels: make([]Panel, 6)}, 6},
		{"brief counts key points", ContentPayload{Mode: ModeBrief, Brief: &Brief{KeyPoints: make([]string, 4)}}, 4},
		{"brief without body", ContentPayload{Mode: ModeBrief}, 0},
		{"games", ContentPayload{Mode: ModeGames, Games: make([]Challenge, 6)}, 6},
		{"unknown mode", ContentPayload{Mode: "podcast"}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.payload.ItemCount(); got != tc.want {
				t.Errorf("ItemCount() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEmotionGlyph(t *testing.T) {
	tests := []struct {
		character string
		emotion   string
		want      string
	}{
		{"professor", "thinking", "🤔"},
		{"Professor", "THINKING", "🤔"}, // case-insensitive
		{"student", "amazed", "😮"},
		{"narrator", "important", "⚡"},
		{"narrator", "whatever", "📖"},  // falls back to narrator default
		{"wizard", "conclusion", "🎯"},  // unknown character uses narrator set
		{"professor", "mysterious", "🎭"}, // no default in the professor set
	}

	for _, tc := range tests {
		if got := EmotionGlyph(tc.character, tc.emotion); got != tc.want {
			t.Errorf("EmotionGlyph(%q, %q) = %q, want %q", tc.character, tc.emotion, got, tc.want)
		}
	}
}

package models

// LearningMode selects which kind of study content is generated and
// which session rules apply.
type LearningMode string

const (
	ModeQuiz       LearningMode = "quiz"
	ModeFlashcards LearningMode = "flashcards"
	ModeComic      LearningMode = "comic"
	ModeBrief      LearningMode = "brief"
	ModeGames      LearningMode = "games"
)

func (m LearningMode) Valid() bool {
	switch m {
	case ModeQuiz, ModeFlashcards, ModeComic, ModeBrief, ModeGames:
		return true
	}
	return false
}

type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type Panel struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Character string `json:"character"` // professor | student | narrator
	Emotion   string `json:"emotion"`
}

type Brief struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"keyPoints"`
	FunFact    string   `json:"funFact"`
	Difficulty string   `json:"difficulty"` // beginner | intermediate | advanced
}

type Challenge struct {
	Type     string   `json:"type"` // fill_blank | true_false | word_scramble | speed_match
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Options  []string `json:"options,omitempty"`
	Hint     string   `json:"hint,omitempty"`
}

// ContentPayload is the mode-tagged union produced by content
// generation. Exactly one variant is populated, matching Mode. Item
// sequences are never empty and never reordered for the session's
// lifetime.
type ContentPayload struct {
	Mode      LearningMode `json:"mode"`
	Questions []Question   `json:"questions,omitempty"`
	Cards     []Card       `json:"cards,omitempty"`
	Panels    []Panel      `json:"panels,omitempty"`
	Brief     *Brief       `json:"brief,omitempty"`
	Games     []Challenge  `json:"games,omitempty"`
}

// ItemCount returns the number of session items the payload drives.
// Brief sessions progress through key points rather than a top-level
// sequence.
func (p *ContentPayload) ItemCount() int {
	switch p.Mode {
	case ModeQuiz:
		return len(p.Questions)
	case ModeFlashcards:
		return len(p.Cards)
	case ModeComic:
		return len(p.Panels)
	case ModeBrief:
		if p.Brief == nil {
			return 0
		}
		return len(p.Brief.KeyPoints)
	case ModeGames:
		return len(p.Games)
	}
	return 0
}

var characterGlyphs = map[string]map[string]string{
	"professor": {
		"happy":      "🧑‍🏫",
		"thinking":   "🤔",
		"excited":    "🤩",
		"explaining": "👨‍🔬",
	},
	"student": {
		"confused":      "😕",
		"curious":       "🧐",
		"understanding": "😊",
		"amazed":        "😮",
	},
	"narrator": {
		"default":    "📖",
		"important":  "⚡",
		"conclusion": "🎯",
	},
}

// EmotionGlyph maps a panel's character and free-form emotion to a
// display glyph. Unknown characters fall back to the narrator set,
// unknown emotions to that character's default, then to a generic mask.
func EmotionGlyph(character, emotion string) string {
	set, ok := characterGlyphs[normalizeKey(character)]
	if !ok {
		set = characterGlyphs["narrator"]
	}
	if g, ok := set[normalizeKey(emotion)]; ok {
		return g
	}
	if g, ok := set["default"]; ok {
		return g
	}
	return "🎭"
}

func normalizeKey(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' || c == '\t' {
			continue
		}
		b = append(b, c)
	}
	return string(b)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dhwanit3747/learnersai/internal/models"
)

// GeneratorService asks Gemini for mode-shaped learning content and
// validates the response into a typed payload. It performs no retries;
// retry policy belongs to the caller.
type GeneratorService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewGeneratorService(apiKey string, concurrentReqs int) (*GeneratorService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.5-flash")
	model.SetTemperature(0.7)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeneratorService{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (s *GeneratorService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeneratorService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeneratorService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Generate produces a validated ContentPayload for the topic and mode.
// A blank topic fails fast before any network call.
func (s *GeneratorService) Generate(ctx context.Context, topic string, mode models.LearningMode) (*models.ContentPayload, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &GenerationError{Kind: GenerationValidation, Message: "Topic must not be empty"}
	}
	if !mode.Valid() {
		return nil, &GenerationError{Kind: GenerationValidation, Message: "Invalid learning mode"}
	}

	if err := s.acquireRate(ctx); err != nil {
		return nil, &GenerationError{Kind: GenerationTransport, Message: "Content service unavailable", Err: err}
	}
	defer s.releaseRate()

	prompt := buildContentPrompt(topic, mode)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, classifyGenerationError(err)
	}

	raw := extractText(resp)
	if raw == "" {
		return nil, &GenerationError{Kind: GenerationMalformed, Message: "No content received from AI"}
	}

	return ParsePayload(raw, mode)
}

// classifyGenerationError maps transport-level failures onto the
// generation taxonomy: 429 is retryable after a cooldown, 402 means
// credits are gone, anything else is a transport fault.
func classifyGenerationError(err error) *GenerationError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &GenerationError{Kind: GenerationRateLimited, Message: "Rate limit exceeded. Please try again later.", Err: err}
		case 402:
			return &GenerationError{Kind: GenerationQuotaExhausted, Message: "AI credits exhausted. Please add funds.", Err: err}
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "quota") {
		return &GenerationError{Kind: GenerationQuotaExhausted, Message: "AI credits exhausted. Please add funds.", Err: err}
	}
	return &GenerationError{Kind: GenerationTransport, Message: "Failed to generate content", Err: err}
}

// ParsePayload extracts the JSON object from the model's raw text and
// validates it structurally for the mode. Any contract violation
// yields a Malformed error rather than a partially-typed payload; no
// silent coercion.
func ParsePayload(raw string, mode models.LearningMode) (*models.ContentPayload, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	// The model occasionally wraps the object in prose; take the
	// outermost braces.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, &GenerationError{Kind: GenerationMalformed, Message: "No JSON found in response"}
	}
	raw = raw[start : end+1]

	payload := &models.ContentPayload{Mode: mode}

	switch mode {
	case models.ModeQuiz:
		var body struct {
			Questions []models.Question `json:"questions"`
		}
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			return nil, malformed("Failed to parse AI response", err)
		}
		if err := validateQuestions(body.Questions); err != nil {
			return nil, malformed(err.Error(), nil)
		}
		payload.Questions = body.Questions

	case models.ModeFlashcards:
		var body struct {
			Cards []models.Card `json:"cards"`
		}
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			return nil, malformed("Failed to parse AI response", err)
		}
		if err := validateCards(body.Cards); err != nil {
			return nil, malformed(err.Error(), nil)
		}
		payload.Cards = body.Cards

	case models.ModeComic:
		var body struct {
			Panels []models.Panel `json:"panels"`
		}
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			return nil, malformed("Failed to parse AI response", err)
		}
		if err := validatePanels(body.Panels); err != nil {
			return nil, malformed(err.Error(), nil)
		}
		payload.Panels = body.Panels

	case models.ModeBrief:
		var body models.Brief
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			return nil, malformed("Failed to parse AI response", err)
		}
		if err := validateBrief(&body); err != nil {
			return nil, malformed(err.Error(), nil)
		}
		payload.Brief = &body

	case models.ModeGames:
		var body struct {
			Games []models.Challenge `json:"games"`
		}
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			return nil, malformed("Failed to parse AI response", err)
		}
		if err := validateChallenges(body.Games); err != nil {
			return nil, malformed(err.Error(), nil)
		}
		payload.Games = body.Games
	}

	return payload, nil
}

func malformed(message string, err error) *GenerationError {
	return &GenerationError{Kind: GenerationMalformed, Message: message, Err: err}
}

func validateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("quiz has no questions")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d has no text", i)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
		seen := make(map[string]bool, 4)
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("question %d has an empty option", i)
			}
			if seen[opt] {
				return fmt.Errorf("question %d has duplicate options", i)
			}
			seen[opt] = true
		}
		if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
			return fmt.Errorf("question %d correctIndex %d out of range", i, q.CorrectIndex)
		}
	}
	return nil
}

func validateCards(cards []models.Card) error {
	if len(cards) == 0 {
		return fmt.Errorf("deck has no cards")
	}
	for i, c := range cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			return fmt.Errorf("card %d is missing a face", i)
		}
	}
	return nil
}

func validatePanels(panels []models.Panel) error {
	if len(panels) == 0 {
		return fmt.Errorf("comic has no panels")
	}
	for i, p := range panels {
		if strings.TrimSpace(p.Content) == "" {
			return fmt.Errorf("panel %d has no content", i)
		}
		switch strings.ToLower(strings.TrimSpace(p.Character)) {
		case "professor", "student", "narrator":
		default:
			return fmt.Errorf("panel %d has unknown character %q", i, p.Character)
		}
	}
	return nil
}

func validateBrief(b *models.Brief) error {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Summary) == "" {
		return fmt.Errorf("brief is missing title or summary")
	}
	if len(b.KeyPoints) == 0 {
		return fmt.Errorf("brief has no key points")
	}
	for i, p := range b.KeyPoints {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("key point %d is empty", i)
		}
	}
	switch b.Difficulty {
	case "beginner", "intermediate", "advanced":
	default:
		return fmt.Errorf("brief has unknown difficulty %q", b.Difficulty)
	}
	return nil
}

func validateChallenges(games []models.Challenge) error {
	if len(games) == 0 {
		return fmt.Errorf("game has no challenges")
	}
	for i, g := range games {
		if strings.TrimSpace(g.Question) == "" || strings.TrimSpace(g.Answer) == "" {
			return fmt.Errorf("challenge %d is missing question or answer", i)
		}
		switch g.Type {
		case "fill_blank", "word_scramble", "speed_match":
		case "true_false":
			switch strings.ToLower(strings.TrimSpace(g.Answer)) {
			case "true", "false":
			default:
				return fmt.Errorf("challenge %d true/false answer %q", i, g.Answer)
			}
		default:
			return fmt.Errorf("challenge %d has unknown type %q", i, g.Type)
		}
	}
	return nil
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func buildContentPrompt(topic string, mode models.LearningMode) string {
	var b strings.Builder

	switch mode {
	case models.ModeQuiz:
		b.WriteString(`You are an educational AI that creates engaging quizzes. Generate exactly 5 multiple-choice questions about the given topic. Each question should have 4 distinct options with one correct answer. Include explanations for the correct answers.

Return ONLY valid JSON in this exact format:
{"questions": [{"question": "Question text here?", "options": ["Option A", "Option B", "Option C", "Option D"], "correctIndex": 0, "explanation": "Brief explanation of why this is correct"}]}
`)
		b.WriteString("\nCreate a quiz about: ")

	case models.ModeFlashcards:
		b.WriteString(`You are an educational AI that creates effective flashcards. Generate exactly 8 flashcards about the given topic. Each flashcard should have a front (question or term) and back (answer or definition).

Return ONLY valid JSON in this exact format:
{"cards": [{"front": "Question or term", "back": "Answer or definition"}]}
`)
		b.WriteString("\nCreate flashcards about: ")

	case models.ModeComic:
		b.WriteString(`You are an educational AI that creates engaging comic-style educational content. Generate exactly 6 panels that explain the topic in a fun, narrative way. Each panel should have a character (professor, student, or narrator) with an emotion expressing content.

Return ONLY valid JSON in this exact format:
{"panels": [{"title": "Panel title", "content": "What the character says or explains (2-3 sentences)", "character": "professor", "emotion": "excited"}]}

Characters: professor, student, narrator
Emotions: happy, thinking, excited, explaining, confused, curious, understanding, amazed
`)
		b.WriteString("\nCreate a comic story explaining: ")

	case models.ModeBrief:
		b.WriteString(`You are an educational AI that creates concise topic overviews. Generate a brief for the given topic with a title, a 3-4 sentence summary, exactly 5 key points (each a full sentence a learner can expand), one fun fact, and a difficulty rating.

Return ONLY valid JSON in this exact format:
{"title": "Topic title", "summary": "Short overview paragraph", "keyPoints": ["First key point.", "Second key point."], "funFact": "A surprising fact", "difficulty": "beginner"}

Difficulty must be one of: beginner, intermediate, advanced
`)
		b.WriteString("\nCreate a brief about: ")

	case models.ModeGames:
		b.WriteString(`You are an educational AI that creates fast learning games. Generate exactly 6 challenges about the given topic, mixing these types: fill_blank, true_false, word_scramble, speed_match. Answers must be short. speed_match challenges need 4 options including the answer; true_false answers must be "true" or "false"; word_scramble answers must be a single word.

Return ONLY valid JSON in this exact format:
{"games": [{"type": "fill_blank", "question": "The question text", "answer": "answer", "options": ["a", "b", "c", "d"], "hint": "optional hint"}]}
`)
		b.WriteString("\nCreate learning games about: ")
	}

	b.WriteString(topic)
	return b.String()
}

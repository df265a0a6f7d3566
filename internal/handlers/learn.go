package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dhwanit3747/learnersai/internal/middleware"
	"github.com/dhwanit3747/learnersai/internal/models"
	"github.com/dhwanit3747/learnersai/internal/repository"
	"github.com/dhwanit3747/learnersai/internal/services"
	"github.com/dhwanit3747/learnersai/internal/session"
)

// LearnHandler owns the session lifecycle: generate content, drive the
// state machine, and hand terminal results to the recorder.
type LearnHandler struct {
	generator   *services.GeneratorService
	store       *session.Store
	recorder    *services.ActivityRecorder
	contentRepo *repository.ContentRepo
}

func NewLearnHandler(generator *services.GeneratorService, store *session.Store, recorder *services.ActivityRecorder, contentRepo *repository.ContentRepo) *LearnHandler {
	return &LearnHandler{
		generator:   generator,
		store:       store,
		recorder:    recorder,
		contentRepo: contentRepo,
	}
}

// StartSession generates content for a topic and mode, replacing any
// session the user already had. If the user starts another session
// while this one is still generating, the late result is discarded.
func (h *LearnHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		Topic string              `json:"topic"`
		Mode  models.LearningMode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	token := h.store.Begin(userID)

	payload, err := h.generator.Generate(r.Context(), req.Topic, req.Mode)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	engine, err := session.New(req.Topic, payload)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("GENERATION_FAILED", "Generated content has no items", r))
		return
	}

	if !h.store.Commit(userID, token, engine) {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Session was superseded", r))
		return
	}

	// Persist for history; the session does not depend on this.
	if _, err := h.contentRepo.Save(r.Context(), userID, engine.Topic(), payload); err != nil {
		log.Printf("failed to save generated content for user %s: %v", userID, err)
	}

	writeJSON(w, http.StatusCreated, buildSessionView(engine))
}

func (h *LearnHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.store.Get(middleware.GetUserID(r.Context()))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No active session", r))
		return
	}
	writeJSON(w, http.StatusOK, buildSessionView(engine))
}

func (h *LearnHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.store.End(middleware.GetUserID(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session ended"})
}

func (h *LearnHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var ans session.Answer
	if err := json.NewDecoder(r.Body).Decode(&ans); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	h.transition(w, r, func(e *session.Engine) error {
		return e.SubmitAnswer(ans)
	})
}

func (h *LearnHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(e *session.Engine) error {
		return e.Advance()
	})
}

func (h *LearnHandler) Flip(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(e *session.Engine) error {
		return e.Flip()
	})
}

func (h *LearnHandler) Jump(w http.ResponseWriter, r *http.Request) {
	index, ok := decodeIndex(w, r)
	if !ok {
		return
	}
	h.transition(w, r, func(e *session.Engine) error {
		return e.Jump(index)
	})
}

func (h *LearnHandler) ExpandPoint(w http.ResponseWriter, r *http.Request) {
	index, ok := decodeIndex(w, r)
	if !ok {
		return
	}
	h.transition(w, r, func(e *session.Engine) error {
		return e.ExpandPoint(index)
	})
}

func (h *LearnHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(e *session.Engine) error {
		return e.Complete()
	})
}

func (h *LearnHandler) Timeout(w http.ResponseWriter, r *http.Request) {
	index, ok := decodeIndex(w, r)
	if !ok {
		return
	}
	h.transition(w, r, func(e *session.Engine) error {
		return e.Timeout(index)
	})
}

// transition applies one state-machine step and responds with the
// refreshed view. A step that lands the session in Terminal hands the
// result to the recorder exactly once.
func (h *LearnHandler) transition(w http.ResponseWriter, r *http.Request, step func(*session.Engine) error) {
	userID := middleware.GetUserID(r.Context())

	engine, ok := h.store.Get(userID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No active session", r))
		return
	}

	wasTerminal := engine.Status() == session.StatusTerminal

	if err := step(engine); err != nil {
		handleSessionError(w, r, err)
		return
	}

	if !wasTerminal && engine.Status() == session.StatusTerminal {
		if res, ok := engine.Result(); ok {
			h.recorder.Record(r.Context(), userID, res)
		}
	}

	writeJSON(w, http.StatusOK, buildSessionView(engine))
}

func handleSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrIllegalState):
		writeJSON(w, http.StatusConflict, errorResp("ILLEGAL_TRANSITION", "Transition not legal in current state", r))
	case errors.Is(err, session.ErrPointsUnread):
		writeJSON(w, http.StatusConflict, errorResp("POINTS_UNREAD", "All key points must be read before completing", r))
	case errors.Is(err, session.ErrNotSupported):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Transition not available in this mode", r))
	case errors.Is(err, session.ErrInvalidAnswer):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Answer does not match the current item", r))
	case errors.Is(err, session.ErrIndexOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Item index out of range", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

func decodeIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return 0, false
	}
	return req.Index, true
}

// buildSessionView renders the engine for the client. Hidden facts
// (correct answers, card backs, unexpanded key points) stay hidden
// until the state machine says otherwise.
func buildSessionView(e *session.Engine) map[string]interface{} {
	view := map[string]interface{}{
		"topic":  e.Topic(),
		"mode":   e.Mode(),
		"status": e.Status(),
		"index":  e.Index(),
		"total":  e.Total(),
	}

	revealed := e.Status() == session.StatusRevealed
	payload := e.Payload()

	switch e.Mode() {
	case models.ModeQuiz:
		view["score"] = e.Score()
		if e.Status() != session.StatusTerminal {
			q := payload.Questions[e.Index()]
			item := map[string]interface{}{
				"question": q.Question,
				"options":  q.Options,
			}
			if revealed {
				item["correct_index"] = q.CorrectIndex
				item["explanation"] = q.Explanation
				item["outcome"] = e.Outcome(e.Index())
			}
			view["item"] = item
		}

	case models.ModeFlashcards:
		if e.Status() != session.StatusTerminal {
			c := payload.Cards[e.Index()]
			item := map[string]interface{}{
				"front":   c.Front,
				"flipped": e.Flipped(),
			}
			if e.Flipped() {
				item["back"] = c.Back
			}
			view["item"] = item
		}

	case models.ModeComic:
		if e.Status() != session.StatusTerminal {
			p := payload.Panels[e.Index()]
			view["item"] = map[string]interface{}{
				"title":     p.Title,
				"content":   p.Content,
				"character": p.Character,
				"emotion":   p.Emotion,
				"glyph":     models.EmotionGlyph(p.Character, p.Emotion),
			}
		}

	case models.ModeBrief:
		b := payload.Brief
		points := make([]map[string]interface{}, len(b.KeyPoints))
		for i, text := range b.KeyPoints {
			read := e.Outcome(i) == session.OutcomeRead
			point := map[string]interface{}{"read": read}
			if read {
				point["text"] = text
			}
			points[i] = point
		}
		view["item"] = map[string]interface{}{
			"title":      b.Title,
			"summary":    b.Summary,
			"fun_fact":   b.FunFact,
			"difficulty": b.Difficulty,
			"key_points": points,
		}
		view["read_count"] = e.ReadCount()

	case models.ModeGames:
		view["score"] = e.Score()
		view["streak"] = e.Streak()
		if e.Status() != session.StatusTerminal {
			g := payload.Games[e.Index()]
			item := map[string]interface{}{
				"type":     g.Type,
				"question": g.Question,
			}
			if g.Hint != "" {
				item["hint"] = g.Hint
			}
			if len(g.Options) > 0 {
				item["options"] = g.Options
			}
			if g.Type == "word_scramble" {
				// Fresh permutation on every render, never stored.
				item["scrambled"] = session.ScrambleWord(g.Answer)
			}
			if revealed {
				item["answer"] = g.Answer
				item["outcome"] = e.Outcome(e.Index())
			} else {
				item["time_left"] = e.TimeLeft()
			}
			view["item"] = item
		}
	}

	if res, ok := e.Result(); ok {
		view["result"] = res
	}
	return view
}

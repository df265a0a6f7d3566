package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhwanit3747/learnersai/internal/models"
)

// ContentRepo persists generated payloads, one table per learning
// mode, so the dashboard can show what a user has studied.
type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

type contentStore struct {
	table      string
	payloadCol string
	countCol   string
}

func storeFor(mode models.LearningMode) (contentStore, error) {
	switch mode {
	case models.ModeQuiz:
		return contentStore{"quizzes", "questions_json", "question_count"}, nil
	case models.ModeFlashcards:
		return contentStore{"flashcard_decks", "cards_json", "card_count"}, nil
	case models.ModeComic:
		return contentStore{"comic_stories", "panels_json", "panel_count"}, nil
	case models.ModeBrief:
		return contentStore{"briefs", "brief_json", "key_point_count"}, nil
	case models.ModeGames:
		return contentStore{"game_sets", "challenges_json", "challenge_count"}, nil
	}
	return contentStore{}, fmt.Errorf("no content store for mode %q", mode)
}

func (r *ContentRepo) Save(ctx context.Context, userID uuid.UUID, topic string, payload *models.ContentPayload) (uuid.UUID, error) {
	store, err := storeFor(payload.Mode)
	if err != nil {
		return uuid.Nil, err
	}

	var body interface{}
	switch payload.Mode {
	case models.ModeQuiz:
		body = payload.Questions
	case models.ModeFlashcards:
		body = payload.Cards
	case models.ModeComic:
		body = payload.Panels
	case models.ModeBrief:
		body = payload.Brief
	case models.ModeGames:
		body = payload.Games
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	query := fmt.Sprintf(
		`INSERT INTO %s (id, user_id, topic_name, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		store.table, store.payloadCol, store.countCol,
	)

	_, err = r.pool.Exec(ctx, query, id, userID, topic, bodyBytes, payload.ItemCount())
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// RecentByMode returns the newest saved items of one mode, newest first.
func (r *ContentRepo) RecentByMode(ctx context.Context, userID uuid.UUID, mode models.LearningMode, limit int) ([]models.RecentItem, error) {
	store, err := storeFor(mode)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, topic_name, created_at FROM %s WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		store.table,
	)

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.RecentItem, 0)
	for rows.Next() {
		item := models.RecentItem{Type: string(mode)}
		if err := rows.Scan(&item.ID, &item.TopicName, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

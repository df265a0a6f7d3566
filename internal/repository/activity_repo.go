package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhwanit3747/learnersai/internal/models"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Create(ctx context.Context, rec *models.ActivityRecord) error {
	query := `
		INSERT INTO learning_activities (id, user_id, activity_type, points_earned, topic_name, metadata_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	rec.ID = uuid.New()
	meta := rec.MetadataJSON
	if meta == nil {
		meta = []byte("{}")
	}

	return r.pool.QueryRow(ctx, query,
		rec.ID, rec.UserID, rec.ActivityType, rec.PointsEarned, rec.TopicName, meta,
	).Scan(&rec.CreatedAt)
}

func (r *ActivityRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityRecord, error) {
	query := `SELECT id, user_id, activity_type, points_earned, topic_name, metadata_json, created_at
		FROM learning_activities WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.ActivityRecord, 0)
	for rows.Next() {
		rec := &models.ActivityRecord{}
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.ActivityType, &rec.PointsEarned,
			&rec.TopicName, &rec.MetadataJSON, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *ActivityRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM learning_activities WHERE user_id = $1", userID,
	).Scan(&count)
	return count, err
}

// recentLimit caps the merged recent-content view on the dashboard.
const recentLimit = 5

// Recent pulls the newest saved items from every mode store and merges
// them into one list, newest first, capped at recentLimit.
func (r *ActivityRepo) Recent(ctx context.Context, contentRepo *ContentRepo, userID uuid.UUID) ([]models.RecentItem, error) {
	modes := []models.LearningMode{
		models.ModeQuiz, models.ModeFlashcards, models.ModeComic, models.ModeBrief, models.ModeGames,
	}

	lists := make([][]models.RecentItem, 0, len(modes))
	for _, mode := range modes {
		items, err := contentRepo.RecentByMode(ctx, userID, mode, recentLimit)
		if err != nil {
			return nil, err
		}
		lists = append(lists, items)
	}
	return MergeRecent(recentLimit, lists...), nil
}

// MergeRecent flattens per-store lists, re-sorts descending by
// creation time, and truncates.
func MergeRecent(limit int, lists ...[]models.RecentItem) []models.RecentItem {
	merged := make([]models.RecentItem, 0)
	for _, list := range lists {
		merged = append(merged, list...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

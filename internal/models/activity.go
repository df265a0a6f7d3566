package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Activity type strings recorded with each completed session.
const (
	ActivityQuizCompleted      = "quiz_completed"
	ActivityFlashcardsReviewed = "flashcards_reviewed"
	ActivityComicRead          = "comic_read"
	ActivityBriefCompleted     = "brief_completed"
	ActivityGameCompleted      = "game_completed"
)

// ActivityRecord is created once per completed session and never
// mutated afterwards.
type ActivityRecord struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	ActivityType string          `json:"activity_type"`
	PointsEarned int             `json:"points_earned"`
	TopicName    string          `json:"topic_name"`
	MetadataJSON json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RecentItem is one row of the merged recent-activity view shown on
// the dashboard.
type RecentItem struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	TopicName string    `json:"topic_name"`
	CreatedAt time.Time `json:"created_at"`
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dhwanit3747/learnersai/internal/models"
	"github.com/dhwanit3747/learnersai/internal/repository"
	"github.com/dhwanit3747/learnersai/internal/session"
)

// ActivityQueue is the Redis list the worker pool drains.
const ActivityQueue = "queue:activity-log"

// ActivityRecorder turns terminal session results into persisted
// activity records and profile mutations. Recording is fire-and-forget
// from the session's point of view: the completion screen never waits
// on, and never learns about, bookkeeping failures.
type ActivityRecorder struct {
	redis        *redis.Client
	activityRepo *repository.ActivityRepo
	userRepo     *repository.UserRepo
}

func NewActivityRecorder(redisClient *redis.Client, activityRepo *repository.ActivityRepo, userRepo *repository.UserRepo) *ActivityRecorder {
	return &ActivityRecorder{
		redis:        redisClient,
		activityRepo: activityRepo,
		userRepo:     userRepo,
	}
}

// Record enqueues a completed session for persistence. Failures are
// logged, never surfaced.
func (r *ActivityRecorder) Record(ctx context.Context, userID uuid.UUID, res *session.Result) {
	rec := BuildActivityRecord(userID, res)

	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("activity: failed to marshal record for user %s: %v", userID, err)
		return
	}

	if err := r.redis.LPush(ctx, ActivityQueue, string(data)).Err(); err != nil {
		log.Printf("activity: failed to enqueue record for user %s: %v", userID, err)
	}
}

// BuildActivityRecord converts a session result into the append-only
// record shape, with mode-specific metadata.
func BuildActivityRecord(userID uuid.UUID, res *session.Result) *models.ActivityRecord {
	meta := map[string]interface{}{
		"topic": res.Topic,
		"total": res.Total,
	}
	switch res.Mode {
	case models.ModeQuiz, models.ModeGames:
		meta["score"] = res.Score
	}
	if res.Mode == models.ModeGames {
		meta["max_streak"] = res.MaxStreak
		meta["accuracy_percent"] = res.AccuracyPercent
	}
	if res.Mode == models.ModeFlashcards {
		meta["known"] = res.Known
		meta["learning"] = res.Learning
	}

	metaJSON, _ := json.Marshal(meta)

	return &models.ActivityRecord{
		UserID:       userID,
		ActivityType: res.ActivityType,
		PointsEarned: res.Points,
		TopicName:    res.Topic,
		MetadataJSON: metaJSON,
	}
}

// Apply persists one dequeued record: append the activity row, then
// read-modify-write the profile. Points and streak both derive from
// the same profile read, taken immediately before the write.
func (r *ActivityRecorder) Apply(ctx context.Context, rec *models.ActivityRecord) (*models.PointsAwarded, error) {
	if err := r.activityRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}

	profile, err := r.userRepo.GetProfile(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	today := time.Now()
	profile.TotalPoints += rec.PointsEarned
	profile.CurrentStreak = NextStreak(profile.CurrentStreak, profile.LastActivityDate, today)
	if profile.CurrentStreak > profile.LongestStreak {
		profile.LongestStreak = profile.CurrentStreak
	}
	profile.LastActivityDate = &today

	if err := r.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &models.PointsAwarded{
		ActivityType:  rec.ActivityType,
		PointsEarned:  rec.PointsEarned,
		TotalPoints:   profile.TotalPoints,
		CurrentStreak: profile.CurrentStreak,
		LongestStreak: profile.LongestStreak,
	}, nil
}

// PublishAward notifies the user's WebSocket connections that points
// landed on the profile.
func (r *ActivityRecorder) PublishAward(ctx context.Context, userID uuid.UUID, award *models.PointsAwarded) {
	msg := models.WSMessage{Type: "points_awarded", Payload: award}
	data, _ := json.Marshal(msg)
	if err := r.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID), string(data)).Err(); err != nil {
		log.Printf("activity: failed to publish award for user %s: %v", userID, err)
	}
}

// NextStreak applies the calendar-day streak rule: a session the day
// after the last one extends the streak, a second session the same day
// leaves it alone, and any longer gap (or a first-ever session)
// restarts it at 1.
func NextStreak(current int, lastActivity *time.Time, today time.Time) int {
	if lastActivity == nil {
		return 1
	}
	switch {
	case sameDay(*lastActivity, today):
		return current
	case sameDay(*lastActivity, today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

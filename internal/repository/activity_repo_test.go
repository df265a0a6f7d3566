package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dhwanit3747/learnersai/internal/models"
)

func recentItem(mode string, age time.Duration) models.RecentItem {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.RecentItem{
		ID:        uuid.New(),
		Type:      mode,
		TopicName: "topic",
		CreatedAt: base.Add(-age),
	}
}

func TestMergeRecentOrdersAndTruncates(t *testing.T) {
	quizzes := []models.RecentItem{
		recentItem("quiz", 1*time.Hour),
		recentItem("quiz", 10*time.Hour),
	}
	decks := []models.RecentItem{
		recentItem("flashcards", 2*time.Hour),
		recentItem("flashcards", 3*time.Hour),
	}
	comics := []models.RecentItem{
		recentItem("comic", 30*time.Minute),
		recentItem("comic", 20*time.Hour),
	}

	merged := MergeRecent(5, quizzes, decks, comics)

	if len(merged) != 5 {
		t.Fatalf("got %d items, want 5", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].CreatedAt.After(merged[i-1].CreatedAt) {
			t.Fatalf("items out of order at %d", i)
		}
	}
	if merged[0].Type != "comic" {
		t.Errorf("newest item type = %q, want comic", merged[0].Type)
	}
	// The oldest item (comic, 20h) must have been truncated away.
	for _, item := range merged {
		if item.CreatedAt.Before(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(-10 * time.Hour)) {
			t.Errorf("truncation kept an item older than the cutoff")
		}
	}
}

func TestMergeRecentEmptyLists(t *testing.T) {
	if got := MergeRecent(5); len(got) != 0 {
		t.Errorf("merge of nothing = %d items", len(got))
	}
	if got := MergeRecent(5, nil, []models.RecentItem{}); len(got) != 0 {
		t.Errorf("merge of empty lists = %d items", len(got))
	}
}

package handlers

import (
	"net/http"

	"github.com/dhwanit3747/learnersai/internal/middleware"
	"github.com/dhwanit3747/learnersai/internal/repository"
)

type DashboardHandler struct {
	userRepo     *repository.UserRepo
	activityRepo *repository.ActivityRepo
	contentRepo  *repository.ContentRepo
}

func NewDashboardHandler(userRepo *repository.UserRepo, activityRepo *repository.ActivityRepo, contentRepo *repository.ContentRepo) *DashboardHandler {
	return &DashboardHandler{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		contentRepo:  contentRepo,
	}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	ctx := r.Context()

	profile, err := h.userRepo.GetProfile(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load profile", r))
		return
	}

	activityCount, err := h.activityRepo.CountByUser(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load activity count", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_points":       profile.TotalPoints,
		"current_streak":     profile.CurrentStreak,
		"longest_streak":     profile.LongestStreak,
		"last_activity_date": profile.LastActivityDate,
		"activities":         activityCount,
	})
}

func (h *DashboardHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	items, err := h.activityRepo.Recent(r.Context(), h.contentRepo, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load recent items", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *DashboardHandler) Activities(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	records, err := h.activityRepo.ListByUser(r.Context(), userID, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load activities", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": records})
}

func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	ctx := r.Context()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	profile, err := h.userRepo.GetProfile(ctx, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load profile", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"profile": profile,
	})
}

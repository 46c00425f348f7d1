package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pixelmint/backend/internal/domain"
)

// engagementAction wraps the shared guard logic for like/favorite endpoints.
func (a *App) engagementAction(w http.ResponseWriter, r *http.Request, action func(userID, taskID string) error) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task_id required")
		return
	}
	if err := action(userID, taskID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "task not found")
			return
		}
		a.Logger.Error().Err(err).Str("task_id", taskID).Msg("engagement write failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save")
		return
	}
	engagement, err := a.Engagements.GetEngagement(r.Context(), taskID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "task not found")
			return
		}
		a.Logger.Error().Err(err).Str("task_id", taskID).Msg("engagement read failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load engagement")
		return
	}
	a.json(w, http.StatusOK, engagement)
}

func (a *App) TaskLike(w http.ResponseWriter, r *http.Request) {
	a.engagementAction(w, r, func(userID, taskID string) error {
		return a.Engagements.Like(r.Context(), userID, taskID)
	})
}

func (a *App) TaskUnlike(w http.ResponseWriter, r *http.Request) {
	a.engagementAction(w, r, func(userID, taskID string) error {
		return a.Engagements.Unlike(r.Context(), userID, taskID)
	})
}

func (a *App) TaskFavorite(w http.ResponseWriter, r *http.Request) {
	a.engagementAction(w, r, func(userID, taskID string) error {
		return a.Engagements.Favorite(r.Context(), userID, taskID)
	})
}

func (a *App) TaskUnfavorite(w http.ResponseWriter, r *http.Request) {
	a.engagementAction(w, r, func(userID, taskID string) error {
		return a.Engagements.Unfavorite(r.Context(), userID, taskID)
	})
}

type rateRequest struct {
	Score int `json:"score"`
}

// TaskRate upserts the caller's rating for a task.
func (a *App) TaskRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Score < 1 || req.Score > 5 {
		a.error(w, http.StatusBadRequest, "bad_request", domain.ErrInvalidRating.Error())
		return
	}
	a.engagementAction(w, r, func(userID, taskID string) error {
		return a.Engagements.UpsertRating(r.Context(), &domain.Rating{
			UserID: userID,
			TaskID: taskID,
			Score:  req.Score,
		})
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pixelmint/backend/internal/domain"
)

type taskDTO struct {
	ID            string     `json:"id"`
	Feature       string     `json:"feature"`
	Status        string     `json:"status"`
	Quantity      int        `json:"quantity"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	CreditsSpent  int        `json:"credits_spent"`
	Country       string     `json:"country,omitempty"`
	Prompt        string     `json:"prompt"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LikeCount     int        `json:"like_count"`
	FavoriteCount int        `json:"favorite_count"`
	RatingAvg     float64    `json:"rating_avg"`
}

func toTaskDTO(t domain.Task) taskDTO {
	return taskDTO{
		ID:            t.ID,
		Feature:       string(t.Feature),
		Status:        string(t.Status),
		Quantity:      t.Quantity,
		Width:         t.Width,
		Height:        t.Height,
		CreditsSpent:  t.CreditsSpent,
		Country:       t.Country,
		Prompt:        t.Prompt,
		ErrorMessage:  t.ErrorMessage,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		LikeCount:     t.LikeCount,
		FavoriteCount: t.FavoriteCount,
		RatingAvg:     t.RatingAvg,
	}
}

// TasksList returns the caller's task history, newest first.
func (a *App) TasksList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	tasks, err := a.Tasks.ListByUser(r.Context(), userID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		a.Logger.Error().Err(err).Msg("task list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load tasks")
		return
	}
	items := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, toTaskDTO(t))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// TaskStatus returns one task owned by the caller.
func (a *App) TaskStatus(w http.ResponseWriter, r *http.Request) {
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
	task, err := a.Tasks.GetByID(r.Context(), taskID, userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "task not found")
		return
	}
	a.json(w, http.StatusOK, toTaskDTO(*task))
}

type usageResponse struct {
	UsedToday  int  `json:"used_today"`
	DailyLimit *int `json:"daily_limit"`
	Credits    int  `json:"available_credits"`
}

// MyUsage reports today's consumption against the plan ceilings.
func (a *App) MyUsage(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	used, err := a.Usage.DailyUsage(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("usage lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load usage")
		return
	}
	perms, err := a.Gate.UserPermissions(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusServiceUnavailable, "check_failed", "permissions unavailable")
		return
	}
	a.json(w, http.StatusOK, usageResponse{
		UsedToday:  used,
		DailyLimit: perms.Limits.DailyUsage,
		Credits:    perms.Credits.AvailableCredits,
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pixelmint/backend/internal/domain"
	"github.com/pixelmint/backend/internal/middleware"
	"github.com/pixelmint/backend/internal/permission"
)

const (
	defaultQuantity = 1
	maxQuantity     = 8
	defaultWidth    = 1024
	defaultHeight   = 1024
)

type imageGenerateRequest struct {
	Feature  string `json:"feature"`
	Prompt   string `json:"prompt"`
	Quantity int    `json:"quantity"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type taskResponse struct {
	TaskID           string `json:"task_id"`
	Status           string `json:"status"`
	CreditsConsumed  int    `json:"credits_consumed"`
	RemainingCredits int    `json:"remaining_credits"`
}

// ImagesGenerate debits credits through the gate and records a queued task.
// Actual rendering happens elsewhere; this endpoint owns gating and history.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req imageGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Feature == "" {
		req.Feature = string(domain.FeatureImageGenerate)
	}
	feature, err := domain.ParseFeature(req.Feature)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = defaultQuantity
	}
	if req.Quantity > maxQuantity {
		req.Quantity = maxQuantity
	}
	if req.Width <= 0 {
		req.Width = defaultWidth
	}
	if req.Height <= 0 {
		req.Height = defaultHeight
	}

	res := permission.ResourceData{Quantity: req.Quantity, Width: req.Width, Height: req.Height}
	result := a.Gate.ConsumeCredits(r.Context(), userID, feature, res)
	if !result.Success {
		a.error(w, denyStatus(result.Reason), string(result.Reason), result.Message)
		return
	}

	task := &domain.Task{
		UserID:       userID,
		Feature:      feature,
		Status:       domain.TaskQueued,
		Quantity:     req.Quantity,
		Width:        req.Width,
		Height:       req.Height,
		CreditsSpent: result.CreditsConsumed,
		Country:      middleware.CountryFromContext(r.Context()),
		Prompt:       req.Prompt,
	}
	if err := a.Tasks.Create(r.Context(), task); err != nil {
		// Credits are already spent; the task record is the audit trail, so
		// this is a hard error rather than a silent drop.
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("task record failed after debit")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record task")
		return
	}
	a.json(w, http.StatusAccepted, taskResponse{
		TaskID:           task.ID,
		Status:           string(task.Status),
		CreditsConsumed:  result.CreditsConsumed,
		RemainingCredits: result.RemainingCredits,
	})
}

package handlers

import (
	"net/http"

	"github.com/pixelmint/backend/internal/domain"
	"github.com/pixelmint/backend/internal/permission"
)

// MyPermissions returns the caller's entitlement snapshot.
func (a *App) MyPermissions(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	perms, err := a.Gate.UserPermissions(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("permissions lookup failed")
		a.error(w, http.StatusServiceUnavailable, "check_failed", "permissions unavailable")
		return
	}
	a.json(w, http.StatusOK, perms)
}

// RefreshPermissions drops the cached snapshot and returns a fresh one.
func (a *App) RefreshPermissions(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	perms, err := a.Gate.Refresh(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("permissions refresh failed")
		a.error(w, http.StatusServiceUnavailable, "check_failed", "permissions unavailable")
		return
	}
	a.json(w, http.StatusOK, perms)
}

type featureCheckResponse struct {
	Feature string             `json:"feature"`
	Result  domain.CheckResult `json:"result"`
	Cost    int                `json:"cost"`
}

// CheckFeature answers a read-only allow/deny query for a feature.
func (a *App) CheckFeature(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	feature, err := domain.ParseFeature(r.URL.Query().Get("feature"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	res := permission.ResourceData{
		Quantity: queryInt(r, "quantity"),
		Width:    queryInt(r, "width"),
		Height:   queryInt(r, "height"),
	}
	result := a.Gate.CheckFeature(r.Context(), userID, feature, res)
	a.json(w, http.StatusOK, featureCheckResponse{
		Feature: string(feature),
		Result:  result,
		Cost:    permission.Cost(feature, res),
	})
}

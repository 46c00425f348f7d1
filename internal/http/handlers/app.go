package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pixelmint/backend/internal/auth"
	"github.com/pixelmint/backend/internal/domain"
	"github.com/pixelmint/backend/internal/middleware"
	"github.com/pixelmint/backend/internal/permission"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Logger      zerolog.Logger
	Tokens      *auth.TokenService
	Gate        *permission.Gate
	Users       domain.UserRepository
	Tasks       domain.TaskRepository
	Engagements domain.EngagementRepository
	Usage       domain.UsageRepository
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, tag, message string) {
	a.json(w, code, errorBody{Error: tag, Message: message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// denyStatus maps gate deny reasons onto HTTP status codes.
func denyStatus(reason domain.DenyReason) int {
	switch reason {
	case domain.ReasonNotAuthenticated:
		return http.StatusUnauthorized
	case domain.ReasonFeatureDisabled:
		return http.StatusForbidden
	case domain.ReasonInsufficientCredits:
		return http.StatusPaymentRequired
	case domain.ReasonDailyLimitReached:
		return http.StatusTooManyRequests
	case domain.ReasonCheckFailed, domain.ReasonConsumptionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

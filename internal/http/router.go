package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pixelmint/backend/internal/auth"
	"github.com/pixelmint/backend/internal/http/handlers"
	"github.com/pixelmint/backend/internal/infra"
	"github.com/pixelmint/backend/internal/middleware"
)

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(app *handlers.App, tokens *auth.TokenService, cfg *infra.Config, rdb *redis.Client, lookup middleware.CountryLookup, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Locale(cfg.DefaultLocale, lookup),
		middleware.RateLimit(rdb, cfg.RateLimitPerMin, time.Minute, logger),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", app.Register)
		r.Post("/login", app.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens))

		r.Route("/v1/me", func(r chi.Router) {
			r.Get("/", app.Me)
			r.Get("/permissions", app.MyPermissions)
			r.Post("/permissions/refresh", app.RefreshPermissions)
			r.Get("/permissions/check", app.CheckFeature)
			r.Get("/usage", app.MyUsage)
		})

		r.Post("/v1/images/generate", app.ImagesGenerate)

		r.Route("/v1/tasks", func(r chi.Router) {
			r.Get("/", app.TasksList)
			r.Get("/{task_id}", app.TaskStatus)
			r.Post("/{task_id}/like", app.TaskLike)
			r.Delete("/{task_id}/like", app.TaskUnlike)
			r.Post("/{task_id}/favorite", app.TaskFavorite)
			r.Delete("/{task_id}/favorite", app.TaskUnfavorite)
			r.Put("/{task_id}/rating", app.TaskRate)
		})
	})

	return r
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/petdeck/internal/api/middleware"
	"github.com/phrazzld/petdeck/internal/platform/metrics"
)

// RouterDeps are the collaborators of the HTTP surface.
type RouterDeps struct {
	Auth     *middleware.AuthMiddleware
	Users    *UserHandler
	Sessions *SessionHandler
	Pets     *PetHandler
	Schedule *ScheduleHandler
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Timeout  time.Duration
}

// NewRouter wires every route of the HTTP surface.
func NewRouter(deps RouterDeps) http.Handler {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(deps.Logger))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(deps.Metrics))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(timeout))
		r.Use(deps.Auth.Authenticate)

		r.Get("/me", deps.Users.GetMe)
		r.Put("/me", deps.Users.UpdateMe)
		r.Get("/schedule", deps.Schedule.Upcoming)

		r.Post("/sessions", deps.Sessions.Open)
		r.Get("/sessions/active", deps.Sessions.Active)
		r.Post("/sessions/{id}/attempts", deps.Sessions.SubmitAttempt)
		r.Post("/sessions/{id}/care", deps.Sessions.ResolveCare)
		r.Post("/sessions/{id}/complete", deps.Sessions.Complete)

		r.Get("/pet", deps.Pets.Status)
		r.Post("/pet/revive-token", deps.Pets.RequestReviveToken)
		r.Post("/pet/revive", deps.Pets.Redeem)
	})

	return r
}

package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"liveclass-backend/internal/handlers"
	"liveclass-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	cronSecret string,
	classHandler *handlers.ClassHandler,
	sessionHandler *handlers.SessionHandler,
	reminderHandler *handlers.ReminderHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Scan rate limiter (10 req/min per IP)
	scanLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Class Routes (approval workflow) ────
		r.Route("/classes", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/{id}/approve", classHandler.Approve)
			r.Get("/{id}/sessions", sessionHandler.ListByClass)
		})

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/generate", sessionHandler.Generate)
			r.Patch("/{id}/status", sessionHandler.UpdateStatus)
		})

		// ──── Reminder Scan (external cron) ────
		r.Route("/reminders", func(r chi.Router) {
			r.Use(scanLimiter.Middleware)
			r.Use(middleware.CronAuth(cronSecret))
			r.Get("/scan", reminderHandler.Scan)
			r.Post("/scan", reminderHandler.Scan)
		})
	})

	return r
}

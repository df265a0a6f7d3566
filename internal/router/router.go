package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dhwanit3747/learnersai/internal/handlers"
	"github.com/dhwanit3747/learnersai/internal/middleware"
	"github.com/dhwanit3747/learnersai/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	learnHandler *handlers.LearnHandler,
	dashboardHandler *handlers.DashboardHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// ──── Learning Session Routes ────
		r.Route("/learn", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/session", learnHandler.StartSession)
			r.Get("/session", learnHandler.GetSession)
			r.Delete("/session", learnHandler.EndSession)
			r.Post("/session/answer", learnHandler.SubmitAnswer)
			r.Post("/session/advance", learnHandler.Advance)
			r.Post("/session/flip", learnHandler.Flip)
			r.Post("/session/jump", learnHandler.Jump)
			r.Post("/session/expand", learnHandler.ExpandPoint)
			r.Post("/session/complete", learnHandler.Complete)
			r.Post("/session/timeout", learnHandler.Timeout)
		})

		// ──── Dashboard Routes ────
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/recent", dashboardHandler.Recent)
			r.Get("/activities", dashboardHandler.Activities)
		})

		// ──── User Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", dashboardHandler.Profile)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}

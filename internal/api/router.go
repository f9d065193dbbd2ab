package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/skillstack-backend/internal/api/handlers"
	"github.com/baharkarakas/skillstack-backend/internal/api/httpx"
	"github.com/baharkarakas/skillstack-backend/internal/config"
	"github.com/baharkarakas/skillstack-backend/internal/metrics"
	"github.com/baharkarakas/skillstack-backend/internal/middleware"
	"github.com/baharkarakas/skillstack-backend/internal/services"
)

func NewRouter(cfg config.Config, log *slog.Logger, us *services.UserService, tp middleware.TokenParser) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RequestLogger(log), middleware.Recover, middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"message":   "Skill Stack API is running!",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	ah := handlers.NewAuthHandler(us, cfg.Env)
	am := middleware.NewAuthMiddleware(tp)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.Register)
		r.Post("/login", ah.Login)

		r.Group(func(r chi.Router) {
			r.Use(am.Auth)
			r.Get("/me", ah.Me)
			r.Patch("/me", ah.UpdateProfile)
			r.Put("/me/password", ah.ChangePassword)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "Route not found", nil)
	})

	return r
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	mw "mindlog/internal/middleware"
	"mindlog/internal/store"
)

// NewRouter wires every API route onto a chi router.
func NewRouter(stores store.Stores, jwtSecret []byte, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw.ZapRequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(stores.Users, jwtSecret, log)
	userHandler := NewUserHandler(stores.Users, log)
	journalHandler := NewJournalHandler(stores.Journal, log)
	habitHandler := NewHabitHandler(stores.Habits, log)
	dashboardHandler := NewDashboardHandler(stores.Journal, stores.Habits, log)
	authMW := mw.NewAuthMiddleware(jwtSecret)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Get("/moods", Moods)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)

			pr.Get("/me", userHandler.GetMe)
			pr.Put("/me", userHandler.UpdateMe)

			pr.Get("/dashboard", dashboardHandler.Get)

			pr.Get("/journal", journalHandler.List)
			pr.Post("/journal", journalHandler.Create)
			pr.Get("/journal/{id}", journalHandler.Get)
			pr.Delete("/journal/{id}", journalHandler.Delete)
			pr.Put("/journal/{id}/tasks/{taskID}", journalHandler.SetTask)
			pr.Get("/tasks/summary", journalHandler.TaskSummary)

			pr.Get("/habits", habitHandler.List)
			pr.Post("/habits", habitHandler.Create)
			pr.Get("/habits/{id}", habitHandler.Get)
			pr.Delete("/habits/{id}", habitHandler.Delete)
			pr.Post("/habits/{id}/complete", habitHandler.Complete)
			pr.Delete("/habits/{id}/complete/{date}", habitHandler.Uncomplete)
			pr.Post("/habits/{id}/archive", habitHandler.Archive)
		})
	})
	return r
}

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	// Middleware stack
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/users/count", s.handleCountUsers)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Delete("/", s.handleDeleteUser)

			r.Get("/settings", s.handleGetSettings)
			r.Patch("/settings", s.handleUpdateSettings)

			r.Get("/ban", s.handleGetBan)
			r.Put("/ban", s.handleBan)
			r.Delete("/ban", s.handleUnban)
		})
	})
}

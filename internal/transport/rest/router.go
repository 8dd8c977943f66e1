package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/thanhldv/store-backoffice/internal/auth"
	"github.com/thanhldv/store-backoffice/internal/transport/middleware"
	"github.com/thanhldv/store-backoffice/internal/transport/swagger"
	"github.com/thanhldv/store-backoffice/internal/user"
)

// RegisterAllRoutes wires handlers and declares each protected route's
// required permissions explicitly. The route table is the single place
// where endpoint-to-permission mapping lives.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
		})

		// Protected routes: token verification plus fresh identity
		// resolution first, then the per-route permission gate.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", userHandler.Me)

			pr.Group(func(ur chi.Router) {
				ur.Use(middleware.RequirePermissions(auth.PermSystemSettings))

				ur.Post("/users", userHandler.Create)
				ur.Get("/users", userHandler.GetAll)
				ur.Get("/users/{id}", userHandler.Get)
				ur.Patch("/users/{id}", userHandler.Update)
				ur.Delete("/users/{id}", userHandler.Delete)
			})
		})
	})
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/goodpapers/backend/internal/logger"
	"github.com/goodpapers/backend/internal/middleware"
)

func NewRouter(handler *Handler, log *logger.Logger, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", handler.CreateUser)

			r.Route("/{userId}", func(r chi.Router) {
				r.Use(middleware.UserFromPath)
				r.Get("/", handler.GetUser)
				r.Get("/updates", handler.GetUserUpdates)

				r.Route("/library", func(r chi.Router) {
					r.Get("/", handler.GetLibrary)
					r.Post("/", handler.AddToLibrary)
					r.Patch("/{paperId}", handler.UpdateLibraryPaper)
				})
			})
		})

		r.Route("/papers/{paperId}", func(r chi.Router) {
			r.Get("/", handler.GetPaper)
			r.Get("/updates", handler.GetPaperUpdates)
		})

		r.Get("/arxiv/*", handler.PreviewArxiv)
	})

	return r
}

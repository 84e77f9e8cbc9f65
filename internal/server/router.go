package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkstand-ai/inkstand/internal/api"
	"github.com/inkstand-ai/inkstand/internal/api/handlers"
	"github.com/inkstand-ai/inkstand/internal/api/middleware"
)

type RouterConfig struct {
	SourceHandler    *handlers.SourceHandler
	NoteHandler      *handlers.NoteHandler
	InsightHandler   *handlers.InsightHandler
	SearchHandler    *handlers.SearchHandler
	EmbeddingHandler *handlers.EmbeddingHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sources", func(r chi.Router) {
		r.Post("/", cfg.SourceHandler.Create)
		r.Get("/", cfg.SourceHandler.List)
		r.Get("/{id}", cfg.SourceHandler.Get)
		r.Put("/{id}", cfg.SourceHandler.Update)
		r.Delete("/{id}", cfg.SourceHandler.Delete)
		r.Get("/{id}/chunks", cfg.SourceHandler.GetChunks)
		r.Post("/{id}/insights", cfg.InsightHandler.Create)
		r.Get("/{id}/insights", cfg.InsightHandler.ListBySource)
	})

	r.Delete("/insights/{insightID}", cfg.InsightHandler.Delete)

	r.Route("/notes", func(r chi.Router) {
		r.Post("/", cfg.NoteHandler.Create)
		r.Get("/", cfg.NoteHandler.List)
		r.Get("/{id}", cfg.NoteHandler.Get)
		r.Put("/{id}", cfg.NoteHandler.Update)
		r.Delete("/{id}", cfg.NoteHandler.Delete)
	})

	r.Post("/search", cfg.SearchHandler.Search)

	r.Post("/embed", cfg.EmbeddingHandler.Embed)
	r.Get("/jobs/{id}", cfg.EmbeddingHandler.GetJob)

	return r
}

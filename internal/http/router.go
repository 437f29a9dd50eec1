package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kaspabot/internal/handlers"
	"kaspabot/internal/service"
	"kaspabot/internal/storage"
	"kaspabot/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AnswerService     service.AnswerService
	ConversationStore storage.ConversationStore
	VectorIndex       vectorstore.Index
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.AnswerService)
	conversationHandler := handlers.NewConversationHandler(deps.ConversationStore)
	healthHandler := handlers.NewHealthHandler(deps.VectorIndex)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Get("/conversations", conversationHandler.List)
		r.Get("/conversations/{id}", conversationHandler.Get)
		r.Get("/conversations/{id}/export", conversationHandler.Export)
		r.Delete("/conversations/{id}", conversationHandler.Delete)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}

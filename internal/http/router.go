package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docchat/internal/handlers"
	"docchat/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService   service.ChatService
	IngestService service.IngestService
	DB            *sql.DB
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	documentHandler := handlers.NewDocumentHandler(deps.IngestService, deps.ChatService)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documentHandler.List)
			r.Post("/upload", documentHandler.Upload)
			r.Get("/{documentID}", documentHandler.Get)
			r.Delete("/{documentID}", documentHandler.Delete)
			r.Post("/{documentID}/chat", documentHandler.Chat)
			r.Post("/{documentID}/query", documentHandler.Query)
			r.Get("/{documentID}/conversations", documentHandler.Conversations)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatHandler.Chat)
			r.Post("/stream", chatHandler.Stream)
			r.Get("/history", chatHandler.History)
			r.Get("/conversations", chatHandler.Conversations)
		})
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"playabot-backend/internal/handlers"
)

// RouterDependencies holds the handlers required by the router setup.
type RouterDependencies struct {
	ChatHandler *handlers.ChatHandlers
	LeadHandler *handlers.LeadHandlers
	MetaHandler *handlers.MetaHandlers
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	// Request ceiling. The chat stream runs under it too; a stalled upstream
	// holds the connection open until this fires.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*.vercel.app"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", deps.ChatHandler.HandleStreamChat)
		r.Post("/lead", deps.LeadHandler.HandleSubmitLead)
		r.Get("/persona", deps.MetaHandler.HandleGetPersona)
		r.Get("/knowledge/search", deps.MetaHandler.HandleSearchKnowledge)
	})

	return r
}

package handlers

import (
	"net/http"
	"strconv"

	"playabot-backend/internal/models"
	"playabot-backend/internal/persona"
	"playabot-backend/internal/services"
	"playabot-backend/pkg/httputil"
)

// MetaHandlers serves the persona record and the embedding search route.
type MetaHandlers struct {
	persona       persona.Persona
	searchService *services.SearchService
}

// NewMetaHandlers creates a new MetaHandlers instance.
func NewMetaHandlers(p persona.Persona, searchService *services.SearchService) *MetaHandlers {
	return &MetaHandlers{persona: p, searchService: searchService}
}

// HandleGetPersona returns the concierge identity and greeting texts.
func (h *MetaHandlers) HandleGetPersona(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, models.PersonaResponse{
		ID:                 h.persona.ID,
		Name:               h.persona.Name,
		FirstVisitGreeting: h.persona.FirstVisitGreeting,
		ReturningGreeting:  h.persona.ReturningGreeting,
	})
}

// HandleSearchKnowledge runs a similarity search over the ingested corpus.
func (h *MetaHandlers) HandleSearchKnowledge(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	opts := services.SearchOptions{}
	if category := r.URL.Query().Get("category"); category != "" {
		opts.Category = &category
	}
	if topK := r.URL.Query().Get("top_k"); topK != "" {
		n, err := strconv.Atoi(topK)
		if err != nil || n <= 0 {
			httputil.RespondError(w, http.StatusBadRequest, "top_k must be a positive integer")
			return
		}
		opts.TopK = n
	}

	results, err := h.searchService.SearchKnowledge(r.Context(), query, opts)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "검색 중 오류가 발생했습니다")
		return
	}
	if results == nil {
		results = []models.KnowledgeSearchResult{}
	}

	httputil.RespondJSON(w, http.StatusOK, models.KnowledgeSearchResponse{Results: results})
}

package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mcoot/chefgenie/internal/api/request"
	"github.com/mcoot/chefgenie/internal/api/response"
	"github.com/mcoot/chefgenie/internal/services/knowledge"
)

// KnowledgeHandler serves the dish catalogue
type KnowledgeHandler struct {
	knowledge *knowledge.Base
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(kb *knowledge.Base) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: kb}
}

// List handles GET /api/v1/knowledge?q=. Without a query every category is returned.
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.OK(w, response.Dishes{
			Total:      h.knowledge.Size(),
			Categories: h.knowledge.Categories(),
		})
		return
	}

	results := h.knowledge.Search(query)
	if results == nil {
		results = []knowledge.Dish{}
	}
	response.OK(w, response.Dishes{
		Total:   len(results),
		Results: results,
	})
}

// Match handles POST /api/v1/knowledge/match
func (h *KnowledgeHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req request.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteError(w, NewInvalidRequestError("text is required"))
		return
	}

	response.OK(w, response.MatchFromResult(h.knowledge.Match(req.Text)))
}

package topic

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paperdesk/arxiv-assistant/backend/internal/model/topic"
	"github.com/paperdesk/arxiv-assistant/backend/pkg/utils"
)

// Handler serves the curated research-topic presets.
type Handler struct {
	topics topic.Store
}

// New creates the topic handler.
func New(topics topic.Store) *Handler {
	return &Handler{topics: topics}
}

// RegisterRoutes registers topic routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/topics", h.handleListTopics)
}

func (h *Handler) handleListTopics(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.topics.List())
}

package chat

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paperdesk/arxiv-assistant/backend/internal/analysis/papers"
	"github.com/paperdesk/arxiv-assistant/backend/internal/model/topic"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/assistant"
	chatService "github.com/paperdesk/arxiv-assistant/backend/internal/service/chat"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/relay"
	"github.com/paperdesk/arxiv-assistant/backend/pkg/utils"
)

// Handler owns the session lifecycle and the blocking ask endpoint.
type Handler struct {
	chatSvc    *chatService.Service
	topicStore topic.Store
	assistant  *assistant.Service
}

// New creates the chat handler. assistant may be nil when the relay is not
// configured; ask requests then answer 503 while session management keeps
// working.
func New(chatSvc *chatService.Service, topicStore topic.Store, assistantSvc *assistant.Service) *Handler {
	return &Handler{
		chatSvc:    chatSvc,
		topicStore: topicStore,
		assistant:  assistantSvc,
	}
}

// RegisterRoutes registers session and turn routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Delete("/session/{sessionID}", h.handleEndSession)
	r.Put("/session/{sessionID}/credential", h.handleSetCredential)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
	r.Post("/session/{sessionID}/ask", h.handleAsk)
	r.Get("/session/{sessionID}/papers.csv", h.handleExportPapers)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TopicID string `json:"topicId"`
		APIKey  string `json:"apiKey"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.TopicID == "" {
		utils.RespondError(w, http.StatusBadRequest, "topicId is required")
		return
	}

	if _, ok := h.topicStore.FindByID(payload.TopicID); !ok {
		utils.RespondError(w, http.StatusBadRequest, "topic not found")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.TopicID, payload.APIKey)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatSvc.EndSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.chatSvc.SetCredential(r.Context(), sessionID, payload.APIKey); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.Snapshot(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "relay not configured")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.assistant.Ask(r.Context(), sessionID, payload.Message)
	if err != nil {
		utils.RespondError(w, StatusForError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// handleExportPapers serves the papers parsed from the latest assistant
// reply as a CSV download.
func (h *Handler) handleExportPapers(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	last, found, err := h.chatSvc.LastAssistantMessage(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if !found {
		utils.RespondError(w, http.StatusNotFound, "no assistant reply in this session yet")
		return
	}

	parsed := papers.Parse(last.Content)
	if len(parsed) == 0 {
		utils.RespondError(w, http.StatusNotFound, "latest reply contains no paper listing")
		return
	}

	filename := fmt.Sprintf("arxiv_papers_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Title", "URL"})
	for _, paper := range parsed {
		url := paper.URL
		if url == "" {
			url = "N/A"
		}
		_ = cw.Write([]string{paper.Title, url})
	}
	cw.Flush()
}

// StatusForError maps turn failures to HTTP statuses. Relay failures keep
// their code in the body so the frontend can tell a bad key from a down
// backend.
func StatusForError(err error) int {
	switch relay.CodeOf(err) {
	case relay.CodeInvalidCredential:
		return http.StatusUnauthorized
	case relay.CodeBackendUnavailable:
		return http.StatusBadGateway
	case relay.CodeMalformedReply:
		return http.StatusBadGateway
	}

	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, assistant.ErrEmptyQuestion), errors.Is(err, assistant.ErrTopicNotFound):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

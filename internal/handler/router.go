package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/paperdesk/arxiv-assistant/backend/internal/handler/chat"
	"github.com/paperdesk/arxiv-assistant/backend/internal/handler/stream"
	topichandler "github.com/paperdesk/arxiv-assistant/backend/internal/handler/topic"
	"github.com/paperdesk/arxiv-assistant/backend/internal/handler/ws"
	middlewarePkg "github.com/paperdesk/arxiv-assistant/backend/internal/middleware"
	topicModel "github.com/paperdesk/arxiv-assistant/backend/internal/model/topic"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/assistant"
	chatService "github.com/paperdesk/arxiv-assistant/backend/internal/service/chat"
	"github.com/paperdesk/arxiv-assistant/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. assistantSvc may be nil
// when the relay is not configured; the turn endpoints then answer 503.
func NewRouter(topics topicModel.Store, chatSvc *chatService.Service, assistantSvc *assistant.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	topicHandler := topichandler.New(topics)
	chatHandler := chathandler.New(chatSvc, topics, assistantSvc)

	var streamHandler *stream.Handler
	if assistantSvc != nil {
		streamHandler = stream.New(assistantSvc, chatSvc)
	}

	r.Route("/api", func(api chi.Router) {
		topicHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if streamHandler == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "relay not configured")
				return
			}
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})

		wsHandler := ws.New(assistantSvc, chatSvc)
		wsHandler.RegisterRoutes(api)
	})

	return r
}

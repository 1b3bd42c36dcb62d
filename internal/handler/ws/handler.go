package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/paperdesk/arxiv-assistant/backend/internal/analysis/papers"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/assistant"
	chatService "github.com/paperdesk/arxiv-assistant/backend/internal/service/chat"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/relay"
)

// Handler serves the interactive WebSocket variant of the chat loop: one
// inbound ask frame per turn, one reply or error frame back.
type Handler struct {
	assistant *assistant.Service
	chatSvc   *chatService.Service
	upgrader  websocket.Upgrader
}

// New creates the WebSocket handler. assistantSvc may be nil when the relay
// is not configured; connections are then refused with 503.
func New(assistantSvc *assistant.Service, chatSvc *chatService.Service) *Handler {
	return &Handler{
		assistant: assistantSvc,
		chatSvc:   chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type outboundMessage struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId,omitempty"`
	Content   string         `json:"content,omitempty"`
	Papers    []papers.Paper `json:"papers,omitempty"`
	Error     string         `json:"error,omitempty"`
	Code      string         `json:"code,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if h.assistant == nil {
		http.Error(w, "relay not configured", http.StatusServiceUnavailable)
		return
	}

	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened session=%s", sessionID)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error session=%s: %v", sessionID, err)
			}
			return
		}

		switch inbound.Type {
		case "ask":
			h.handleAsk(r.Context(), conn, sessionID, inbound.Content)
		case "ping":
			h.write(conn, sessionID, outboundMessage{Type: "pong", SessionID: sessionID})
		default:
			h.write(conn, sessionID, outboundMessage{
				Type:      "error",
				SessionID: sessionID,
				Error:     "unknown message type: " + inbound.Type,
			})
		}
	}
}

func (h *Handler) handleAsk(ctx context.Context, conn *websocket.Conn, sessionID, content string) {
	result, err := h.assistant.Ask(ctx, sessionID, content)
	if err != nil {
		h.write(conn, sessionID, outboundMessage{
			Type:      "error",
			SessionID: sessionID,
			Error:     err.Error(),
			Code:      string(relay.CodeOf(err)),
		})
		return
	}

	h.write(conn, sessionID, outboundMessage{
		Type:      "reply",
		SessionID: sessionID,
		Content:   result.Reply.Content,
		Papers:    result.Papers,
	})
}

func (h *Handler) write(conn *websocket.Conn, sessionID string, msg outboundMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed session=%s: %v", sessionID, err)
	}
}

package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/paperdesk/arxiv-assistant/backend/internal/analysis/papers"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/assistant"
	chatService "github.com/paperdesk/arxiv-assistant/backend/internal/service/chat"
	"github.com/paperdesk/arxiv-assistant/backend/pkg/utils"
)

// heartbeatInterval paces keep-alive frames while the relay call is in
// flight; backend turns can take the better part of two minutes.
const heartbeatInterval = 8 * time.Second

// Handler serves one conversation turn over Server-Sent Events, keeping the
// connection warm while the backend works.
type Handler struct {
	assistant *assistant.Service
	chatSvc   *chatService.Service
}

// New creates the stream handler.
func New(assistantSvc *assistant.Service, chatSvc *chatService.Service) *Handler {
	return &Handler{assistant: assistantSvc, chatSvc: chatSvc}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event     string         `json:"event"`
	SessionID string         `json:"sessionId,omitempty"`
	Content   string         `json:"content,omitempty"`
	Papers    []papers.Paper `json:"papers,omitempty"`
	Finished  bool           `json:"finished,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// HandleStreamRequest runs a turn and streams status, reply, and paper
// frames. Exactly one error frame is emitted on failure.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	if _, err := h.chatSvc.GetSession(ctx, sessionID); err != nil {
		h.sendSSEError(w, flusher, sessionID, err.Error())
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		Content:   "searching arXiv and processing",
	})

	type turnOutcome struct {
		result assistant.TurnResult
		err    error
	}
	outcomeCh := make(chan turnOutcome, 1)
	go func() {
		result, err := h.assistant.Ask(ctx, sessionID, userMessage)
		outcomeCh <- turnOutcome{result: result, err: err}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[stream] client disconnected session=%s", sessionID)
			return ctx.Err()
		case t := <-ticker.C:
			h.sendSSE(w, flusher, StreamResponse{
				Event:     "heartbeat",
				SessionID: sessionID,
				Content:   t.UTC().Format(time.RFC3339),
			})
		case outcome := <-outcomeCh:
			if outcome.err != nil {
				h.sendSSEError(w, flusher, sessionID, outcome.err.Error())
				return outcome.err
			}
			h.finishStream(w, flusher, sessionID, outcome.result)
			return nil
		}
	}
}

func (h *Handler) finishStream(w http.ResponseWriter, flusher http.Flusher, sessionID string, result assistant.TurnResult) {
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   result.Reply.Content,
	})

	if len(result.Papers) > 0 {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "papers",
			SessionID: sessionID,
			Papers:    result.Papers,
		})
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed turn session=%s papers=%d", sessionID, len(result.Papers))
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, sessionID, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "error",
		SessionID: sessionID,
		Error:     errorMsg,
	})
}

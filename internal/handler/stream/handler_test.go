package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paperdesk/arxiv-assistant/backend/internal/model/topic"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/assistant"
	chatservice "github.com/paperdesk/arxiv-assistant/backend/internal/service/chat"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/relay"
)

type fakeRelay struct {
	reply string
	err   error
}

func (f *fakeRelay) Send(_ context.Context, _ relay.Turn) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func setupHandler(t *testing.T, backend assistant.Relay) (*Handler, string) {
	t.Helper()

	chatSvc := chatservice.NewService()
	topics := topic.NewMemoryStore(topic.Seed())
	assistantSvc := assistant.NewService(backend, chatSvc, topics)

	session, err := chatSvc.CreateSession(context.Background(), "generative-ai", "sk-test")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	return New(assistantSvc, chatSvc), session.ID
}

func countEvents(body, event string) int {
	return strings.Count(body, `"event":"`+event+`"`)
}

func TestHandleStreamRequestHappyPath(t *testing.T) {
	handler, sessionID := setupHandler(t, &fakeRelay{reply: "a reply"})

	resp := httptest.NewRecorder()
	err := handler.HandleStreamRequest(context.Background(), resp, sessionID, "hello")
	if err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", ct)
	}

	body := resp.Body.String()
	for _, event := range []string{"start", "message", "end"} {
		if countEvents(body, event) != 1 {
			t.Fatalf("expected exactly one %q event:\n%s", event, body)
		}
	}
	if countEvents(body, "error") != 0 {
		t.Fatalf("unexpected error event:\n%s", body)
	}
	if !strings.Contains(body, "a reply") {
		t.Fatalf("reply content missing:\n%s", body)
	}
}

func TestHandleStreamRequestEmitsPapers(t *testing.T) {
	listing := "1. **Paper One**\nhttps://arxiv.org/abs/2501.00001\n2. **Paper Two**\nhttps://arxiv.org/abs/2501.00002"
	handler, sessionID := setupHandler(t, &fakeRelay{reply: listing})

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, sessionID, "find 2 papers"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	body := resp.Body.String()
	if countEvents(body, "papers") != 1 {
		t.Fatalf("expected one papers event:\n%s", body)
	}
	if !strings.Contains(body, "Paper One") {
		t.Fatalf("parsed papers missing:\n%s", body)
	}
}

func TestHandleStreamRequestExactlyOneErrorFrame(t *testing.T) {
	backendErr := &relay.Error{Code: relay.CodeBackendUnavailable, Reason: "timeout"}
	handler, sessionID := setupHandler(t, &fakeRelay{err: backendErr})

	resp := httptest.NewRecorder()
	err := handler.HandleStreamRequest(context.Background(), resp, sessionID, "hello")
	if err == nil {
		t.Fatal("expected relay error to propagate")
	}

	body := resp.Body.String()
	if countEvents(body, "error") != 1 {
		t.Fatalf("expected exactly one error event:\n%s", body)
	}
	if countEvents(body, "message") != 0 || countEvents(body, "end") != 0 {
		t.Fatalf("failed turn must not emit reply frames:\n%s", body)
	}
}

func TestHandleStreamRequestUnknownSession(t *testing.T) {
	handler, _ := setupHandler(t, &fakeRelay{reply: "x"})

	resp := httptest.NewRecorder()
	err := handler.HandleStreamRequest(context.Background(), resp, "missing", "hello")
	if err == nil {
		t.Fatal("expected error for unknown session")
	}

	if countEvents(resp.Body.String(), "error") != 1 {
		t.Fatalf("expected one error event:\n%s", resp.Body.String())
	}
}

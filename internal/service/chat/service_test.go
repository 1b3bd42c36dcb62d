package chat_test

import (
	"context"
	"testing"

	model "github.com/paperdesk/arxiv-assistant/backend/internal/model/chat"
	chat "github.com/paperdesk/arxiv-assistant/backend/internal/service/chat"
)

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "generative-ai", "sk-test")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
	if got.TopicID != "generative-ai" {
		t.Fatalf("unexpected topic ID: got %s", got.TopicID)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestServiceCredentialLifecycle(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "open-search", "sk-initial")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	key, err := svc.Credential(ctx, session.ID)
	if err != nil {
		t.Fatalf("Credential err: %v", err)
	}
	if key != "sk-initial" {
		t.Fatalf("unexpected credential: got %q", key)
	}

	if err := svc.SetCredential(ctx, session.ID, "sk-corrected"); err != nil {
		t.Fatalf("SetCredential err: %v", err)
	}

	key, err = svc.Credential(ctx, session.ID)
	if err != nil {
		t.Fatalf("Credential err: %v", err)
	}
	if key != "sk-corrected" {
		t.Fatalf("expected corrected credential, got %q", key)
	}
}

func TestServiceAppendExchangeOrdering(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "ml-optimization", "sk-test")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	turns := []struct{ question, answer string }{
		{"find papers on adam variants", "here are 3 papers"},
		{"summarize the first one", "the first paper shows..."},
		{"and the second?", "the second paper shows..."},
	}

	for _, turn := range turns {
		if _, err := svc.AppendExchange(ctx, session.ID, turn.question, turn.answer); err != nil {
			t.Fatalf("AppendExchange err: %v", err)
		}
	}

	transcript, err := svc.Snapshot(ctx, session.ID)
	if err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}

	if len(transcript) != 2*len(turns) {
		t.Fatalf("expected %d messages after %d turns, got %d", 2*len(turns), len(turns), len(transcript))
	}

	for i, turn := range turns {
		user := transcript[2*i]
		reply := transcript[2*i+1]
		if user.Sender != model.SenderUser || user.Content != turn.question {
			t.Fatalf("turn %d: unexpected user message %+v", i, user)
		}
		if reply.Sender != model.SenderAssistant || reply.Content != turn.answer {
			t.Fatalf("turn %d: unexpected assistant message %+v", i, reply)
		}
	}
}

func TestServiceAppendExchangeUnknownSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.AppendExchange(ctx, "missing", "q", "a"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestServiceSnapshotIsACopy(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "open-search", "")
	if _, err := svc.AppendExchange(ctx, session.ID, "q", "a"); err != nil {
		t.Fatalf("AppendExchange err: %v", err)
	}

	snapshot, err := svc.Snapshot(ctx, session.ID)
	if err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}
	snapshot[0].Content = "mutated"

	fresh, _ := svc.Snapshot(ctx, session.ID)
	if fresh[0].Content != "q" {
		t.Fatal("mutating a snapshot leaked into the store")
	}
}

func TestServiceEndSessionClearsEverything(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "open-search", "sk-test")
	if _, err := svc.AppendExchange(ctx, session.ID, "q", "a"); err != nil {
		t.Fatalf("AppendExchange err: %v", err)
	}

	if err := svc.EndSession(ctx, session.ID); err != nil {
		t.Fatalf("EndSession err: %v", err)
	}

	if _, err := svc.GetSession(ctx, session.ID); err == nil {
		t.Fatal("expected session to be gone")
	}
	if _, err := svc.Snapshot(ctx, session.ID); err == nil {
		t.Fatal("expected transcript to be gone")
	}
	if _, err := svc.Credential(ctx, session.ID); err == nil {
		t.Fatal("expected credential to be gone")
	}
}

func TestServiceLastAssistantMessage(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "open-search", "")

	_, found, err := svc.LastAssistantMessage(ctx, session.ID)
	if err != nil {
		t.Fatalf("LastAssistantMessage err: %v", err)
	}
	if found {
		t.Fatal("expected no assistant message in a fresh session")
	}

	svc.AppendExchange(ctx, session.ID, "q1", "a1")
	svc.AppendExchange(ctx, session.ID, "q2", "a2")

	last, found, err := svc.LastAssistantMessage(ctx, session.ID)
	if err != nil {
		t.Fatalf("LastAssistantMessage err: %v", err)
	}
	if !found || last.Content != "a2" {
		t.Fatalf("expected latest reply a2, got %+v found=%v", last, found)
	}
}

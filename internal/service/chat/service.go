package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paperdesk/arxiv-assistant/backend/internal/model/chat"
)

var (
	ErrTopicRequired   = errors.New("topic id is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message content is empty")
)

// Service owns all session-scoped state: the ordered transcript and the
// user-supplied API key. Everything lives in process memory and dies with
// the session; nothing is ever written to durable storage.
type Service struct {
	mu          sync.RWMutex
	sessions    map[string]chat.Session
	messages    map[string][]chat.Message
	credentials map[string]string
}

// NewService bootstraps the in-memory chat service.
func NewService() *Service {
	return &Service{
		sessions:    make(map[string]chat.Session),
		messages:    make(map[string][]chat.Message),
		credentials: make(map[string]string),
	}
}

// CreateSession provisions an anonymous session bound to a topic. The
// apiKey is held only in memory and is attached to outbound relay calls; it
// may be empty and corrected later via SetCredential.
func (s *Service) CreateSession(_ context.Context, topicID, apiKey string) (chat.Session, error) {
	if topicID == "" {
		return chat.Session{}, ErrTopicRequired
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		TopicID:   topicID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	s.credentials[session.ID] = apiKey
	s.mu.Unlock()

	return session, nil
}

// SetCredential replaces the session's API key, e.g. after the backend
// rejected the previous one.
func (s *Service) SetCredential(_ context.Context, sessionID, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	s.credentials[sessionID] = apiKey
	return nil
}

// Credential returns the session's API key for outbound relay calls.
func (s *Service) Credential(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return "", ErrSessionNotFound
	}
	return s.credentials[sessionID], nil
}

// AppendExchange appends the user message and the assistant reply as one
// unit, under a single lock. Callers invoke it only after the relay call
// succeeded, so a failed turn leaves the transcript untouched.
func (s *Service) AppendExchange(_ context.Context, sessionID, userText, replyText string) ([]chat.Message, error) {
	if userText == "" || replyText == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}

	now := time.Now().UTC()
	pair := []chat.Message{
		{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Sender:    chat.SenderUser,
			Content:   userText,
			CreatedAt: now,
		},
		{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Sender:    chat.SenderAssistant,
			Content:   replyText,
			CreatedAt: now,
		},
	}

	s.messages[sessionID] = append(s.messages[sessionID], pair...)
	return pair, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Snapshot returns a copy of the session transcript in chronological order.
func (s *Service) Snapshot(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// LastAssistantMessage returns the most recent assistant reply, if any.
func (s *Service) LastAssistantMessage(_ context.Context, sessionID string) (chat.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return chat.Message{}, false, ErrSessionNotFound
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == chat.SenderAssistant {
			return messages[i], true, nil
		}
	}
	return chat.Message{}, false, nil
}

// EndSession wipes the session, its transcript, and its credential.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	delete(s.credentials, sessionID)
	return nil
}

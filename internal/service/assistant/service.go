package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/paperdesk/arxiv-assistant/backend/internal/analysis/papers"
	chatModel "github.com/paperdesk/arxiv-assistant/backend/internal/model/chat"
	"github.com/paperdesk/arxiv-assistant/backend/internal/model/topic"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/chat"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/relay"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrTopicNotFound = errors.New("topic not found")
)

// Relay is the single external collaborator: one blocking call per turn.
type Relay interface {
	Send(ctx context.Context, turn relay.Turn) (string, error)
}

// Service runs one conversation turn end to end: resolve session context,
// relay the question, commit the exchange, and annotate the reply.
type Service struct {
	relay   Relay
	chatSvc *chat.Service
	topics  topic.Store
}

// NewService wires the turn service.
func NewService(r Relay, chatSvc *chat.Service, topics topic.Store) *Service {
	return &Service{relay: r, chatSvc: chatSvc, topics: topics}
}

// TurnResult is the outcome of a successful turn.
type TurnResult struct {
	UserMessage chatModel.Message `json:"userMessage"`
	Reply       chatModel.Message `json:"reply"`
	Papers      []papers.Paper    `json:"papers,omitempty"`
}

// Ask performs a full turn for the session. The transcript is only touched
// after the relay call succeeds, so a failed turn leaves it unchanged.
func (s *Service) Ask(ctx context.Context, sessionID, userText string) (TurnResult, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return TurnResult{}, ErrEmptyQuestion
	}

	session, err := s.chatSvc.GetSession(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	focus, ok := s.topics.FindByID(session.TopicID)
	if !ok {
		return TurnResult{}, fmt.Errorf("%w: %s", ErrTopicNotFound, session.TopicID)
	}

	credential, err := s.chatSvc.Credential(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	history, err := s.chatSvc.Snapshot(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	replyText, err := s.relay.Send(ctx, relay.Turn{
		SessionID:  sessionID,
		Query:      userText,
		Focus:      focus.Focus,
		History:    history,
		Credential: credential,
	})
	if err != nil {
		return TurnResult{}, err
	}

	pair, err := s.chatSvc.AppendExchange(ctx, sessionID, userText, replyText)
	if err != nil {
		return TurnResult{}, err
	}

	result := TurnResult{UserMessage: pair[0], Reply: pair[1]}
	if papers.IsListing(replyText) {
		result.Papers = papers.Parse(replyText)
	}

	log.Printf("[assistant] turn completed session=%s topic=%s papers=%d", sessionID, session.TopicID, len(result.Papers))
	return result, nil
}

package relay

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/paperdesk/arxiv-assistant/backend/internal/config"
	"github.com/paperdesk/arxiv-assistant/backend/internal/model/chat"
)

// Reply text location inside the Langflow run response, plus the fallback
// some flow versions use.
const (
	replyTextPath     = "outputs.0.outputs.0.results.message.text"
	replyFallbackPath = "outputs.0.outputs.0.results.message.data.text"
)

// Client relays one user turn to the hosted Langflow flow and returns the
// reply text. The flow itself does all retrieval and summarization; this
// client only carries the payload across.
type Client struct {
	http *resty.Client
	cfg  config.RelayConfig
}

// NewClient builds a relay client from configuration. The Langflow token
// authenticates this service to the flow; the per-session API key travels
// inside the payload tweaks.
func NewClient(cfg config.RelayConfig) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient, cfg: cfg}
}

// Turn carries everything the relay needs for one round trip.
type Turn struct {
	SessionID  string
	Query      string
	Focus      string
	History    []chat.Message
	Credential string
}

// Send performs the single blocking call for one turn. One attempt, no
// retry; failures come back as coded *Error values.
func (c *Client) Send(ctx context.Context, turn Turn) (string, error) {
	if strings.TrimSpace(turn.Credential) == "" {
		return "", newError(CodeInvalidCredential, "api key missing", nil)
	}

	payload := map[string]any{
		"input_value": c.buildInput(turn),
		"output_type": "chat",
		"input_type":  "chat",
		"session_id":  turn.SessionID,
		"tweaks": map[string]any{
			c.cfg.AgentComponent: map[string]string{
				"api_key": turn.Credential,
			},
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.cfg.RunURL)
	if err != nil {
		return "", newError(CodeBackendUnavailable, "request failed", err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "", newError(CodeInvalidCredential, fmt.Sprintf("backend rejected credentials (status %d)", status), nil)
	case status != http.StatusOK:
		return "", newError(CodeBackendUnavailable, fmt.Sprintf("backend returned status %d", status), nil)
	}

	reply, err := extractReplyText(resp.Body())
	if err != nil {
		return "", err
	}

	log.Printf("[relay] reply received session=%s length=%d", turn.SessionID, len(reply))
	return reply, nil
}

// buildInput returns the input_value for the run payload. Langflow keeps
// per-session memory keyed on session_id, so the transcript is folded in
// only when the flow has no memory component of its own.
func (c *Client) buildInput(turn Turn) string {
	if !c.cfg.InlineHistory {
		return turn.Query
	}

	history := trimHistory(turn.History, c.cfg.HistoryLimit)
	if len(history) == 0 && turn.Focus == "" {
		return turn.Query
	}

	var b strings.Builder
	if turn.Focus != "" {
		b.WriteString("Research focus: ")
		b.WriteString(turn.Focus)
		b.WriteString("\n\n")
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			b.WriteString(msg.Sender)
			b.WriteString(": ")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Current question: ")
	b.WriteString(turn.Query)
	return b.String()
}

func trimHistory(messages []chat.Message, limit int) []chat.Message {
	if limit <= 0 || len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}

// extractReplyText navigates the nested run response to the reply text.
func extractReplyText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", newError(CodeMalformedReply, "response body is not valid JSON", nil)
	}

	text := gjson.GetBytes(body, replyTextPath)
	if !text.Exists() || text.String() == "" {
		text = gjson.GetBytes(body, replyFallbackPath)
	}
	if !text.Exists() || text.String() == "" {
		return "", newError(CodeMalformedReply, "no reply text in response", nil)
	}

	return cleanReplyText(text.String()), nil
}

// cleanReplyText strips escaping artifacts some flows leave in the text.
func cleanReplyText(text string) string {
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\"`, `"`)
	return text
}

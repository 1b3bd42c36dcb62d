package chat

import "time"

// Sender values accepted on a Message.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message records one turn of a session transcript. Immutable once
// appended; ordered by arrival.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

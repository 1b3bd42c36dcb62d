package chat

import "time"

// Session captures a transient anonymous conversation. The user's API key
// lives beside the session inside the chat service, never in a
// serializable field.
type Session struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topicId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Package domain holds the conversation types shared across the agent,
// session store and chat surfaces.
package domain

import "time"

// Role tags who authored a message in the conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single turn in a conversation. Messages are immutable once
// appended to a session.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionKey identifies a conversation session by surface and sender.
type SessionKey struct {
	Channel  string `json:"channel"`
	SenderID string `json:"senderId,omitempty"`
}

// String returns a canonical string form of the session key.
func (k SessionKey) String() string {
	if k.SenderID == "" {
		return k.Channel
	}
	return k.Channel + ":" + k.SenderID
}

// Session is a conversation transcript. The Messages slice is append-only;
// turns are never reordered or rewritten.
type Session struct {
	ID        string    `json:"id"`
	Key       SessionKey `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages,omitempty"`
}

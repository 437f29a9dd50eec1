package storage

import "time"

// ConversationRecord represents a conversation row.
type ConversationRecord struct {
	ID          string    `json:"conversation_id"`
	Title       string    `json:"title,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`

	// MessageCount is populated on summary reads, not on writes.
	MessageCount int `json:"message_count,omitempty"`
}

// MessageRecord represents one stored turn of a conversation.
type MessageRecord struct {
	ID             int64          `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Role           string         `json:"role"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Turn is the minimal role and content pair fed back into generation
// prompts as prior context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

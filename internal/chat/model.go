package chat

import (
	"strconv"
	"time"
)

// ---------------------------------------------
// Database & API Models
// ---------------------------------------------

// Conversation is a durable record of an unordered pair of users.
// Participants are stored normalized (A < B) so each pair maps to
// exactly one row.
type Conversation struct {
	ID           string    `json:"id"`
	ParticipantA int       `json:"participant_a"`
	ParticipantB int       `json:"participant_b"`
	CreatedAt    time.Time `json:"created_at"`
}

// Participants returns both user IDs in wire form (decimal strings),
// the same form the registry is keyed by.
func (c *Conversation) Participants() []string {
	return []string{
		strconv.Itoa(c.ParticipantA),
		strconv.Itoa(c.ParticipantB),
	}
}

// Message is immutable once appended; ordering within a conversation
// is the append order at the store, not wall-clock order.
type Message struct {
	ID             int64     `json:"id,omitempty"`
	ConversationID string    `json:"-"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	MessageType    string    `json:"messageType"`
	FileType       string    `json:"fileType,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

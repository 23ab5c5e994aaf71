package chat

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. Read transitions
// false -> true exactly once, flipped by the counterpart, never by the sender.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
	Read           bool      `db:"read"`
}

// NewMessage validates and normalizes a message before persistence.
// Content is trimmed; a message that is empty after trimming is rejected.
func NewMessage(conversationID, senderID, content string) (Message, error) {
	if conversationID == "" || senderID == "" {
		return Message{}, ErrMissingID
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyContent
	}
	return Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}, nil
}

// HydratedMessage is a message with the sender's display profile attached,
// the shape delivered to live subscribers and thread views.
type HydratedMessage struct {
	Message
	Sender DisplayProfile
}

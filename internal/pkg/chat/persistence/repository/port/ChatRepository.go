package repository

import (
	"context"
	"errors"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
)

// ErrDuplicatePair signals that a conversation for the (client, provider)
// pair already exists. Raised by InsertConversation when the storage-layer
// uniqueness constraint fires; callers recover by re-reading the pair.
var ErrDuplicatePair = errors.New("repository: conversation pair already exists")

// ChatRepository defines persistence operations for the chat domain.
// Adapters translate storage errors into chat.ErrConversationNotFound /
// ErrDuplicatePair so use cases never see driver-level errors.
type ChatRepository interface {
	// FindConversationByPair returns the conversation keyed by the exact
	// (clientID, providerID) pair, or chat.ErrConversationNotFound.
	FindConversationByPair(ctx context.Context, clientID, providerID string) (chat.Conversation, error)

	// InsertConversation creates a conversation with empty preview fields.
	// Returns ErrDuplicatePair when the pair raced into existence.
	InsertConversation(ctx context.Context, clientID, providerID string) (chat.Conversation, error)

	GetConversation(ctx context.Context, id string) (chat.Conversation, error)

	// ListConversationsByUser returns conversations where userID is either
	// party, most recently active first (creation time for empty threads).
	ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error)

	// SaveMessage inserts the message and updates the owning conversation's
	// preview fields in the same transaction, returning the stored row with
	// its generated id and timestamp.
	SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error)

	GetMessage(ctx context.Context, id string) (chat.Message, error)

	// ListMessages returns up to limit most recent messages, ascending by
	// creation time for display.
	ListMessages(ctx context.Context, conversationID string, limit int) ([]chat.Message, error)

	// MarkRead flips read=true on every unread message in the conversation
	// not sent by readerID, returning the number of rows updated.
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)

	// CountUnread counts unread messages addressed to userID across all of
	// their conversations.
	CountUnread(ctx context.Context, userID string) (int, error)
}

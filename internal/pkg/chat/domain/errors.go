package chat

import "errors"

// Domain-level errors for chat behaviors
var (
	ErrMissingID            = errors.New("chat: conversation and sender ids are required")
	ErrEmptyContent         = errors.New("chat: message content is empty")
	ErrSameParty            = errors.New("chat: client and provider must be different users")
	ErrRoleMismatch         = errors.New("chat: pair must be one client and one provider")
	ErrNotParticipant       = errors.New("chat: user is not a party to the conversation")
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrUserNotFound         = errors.New("chat: user not found")
)

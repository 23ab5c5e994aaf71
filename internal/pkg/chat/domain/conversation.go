package chat

import "time"

// Conversation is the single thread between one client and one provider.
// The (ClientID, ProviderID) pair is unique at the storage layer; callers
// always reach a conversation through StartConversation, never by inserting
// directly.
type Conversation struct {
	ID            string     `db:"id"`
	ClientID      string     `db:"client_id"`
	ProviderID    string     `db:"provider_id"`
	LastMessage   *string    `db:"last_message"`
	LastMessageAt *time.Time `db:"last_message_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

// HasParty tells whether userID is one of the two parties.
func (c Conversation) HasParty(userID string) bool {
	return userID != "" && (userID == c.ClientID || userID == c.ProviderID)
}

// CounterpartID returns the other party relative to userID, or "" when
// userID is not a party at all.
func (c Conversation) CounterpartID(userID string) string {
	switch userID {
	case c.ClientID:
		return c.ProviderID
	case c.ProviderID:
		return c.ClientID
	default:
		return ""
	}
}

// ConversationView is a conversation annotated with the counterpart's
// display profile, shaped for the conversation list screen.
type ConversationView struct {
	Conversation
	Counterpart DisplayProfile
}

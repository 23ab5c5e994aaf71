package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name           string
		conversationID string
		senderID       string
		content        string
		wantErr        error
		wantContent    string
	}{
		{
			name:           "valid message",
			conversationID: "conv-1",
			senderID:       "user-1",
			content:        "Hola",
			wantContent:    "Hola",
		},
		{
			name:           "content is trimmed",
			conversationID: "conv-1",
			senderID:       "user-1",
			content:        "  ¿Estás disponible?  \n",
			wantContent:    "¿Estás disponible?",
		},
		{
			name:           "empty content rejected",
			conversationID: "conv-1",
			senderID:       "user-1",
			content:        "",
			wantErr:        ErrEmptyContent,
		},
		{
			name:           "whitespace-only content rejected",
			conversationID: "conv-1",
			senderID:       "user-1",
			content:        "   \t\n",
			wantErr:        ErrEmptyContent,
		},
		{
			name:     "missing conversation id rejected",
			senderID: "user-1",
			content:  "Hola",
			wantErr:  ErrMissingID,
		},
		{
			name:           "missing sender id rejected",
			conversationID: "conv-1",
			content:        "Hola",
			wantErr:        ErrMissingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMessage(tt.conversationID, tt.senderID, tt.content)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, m.Content)
			assert.Equal(t, tt.conversationID, m.ConversationID)
			assert.Equal(t, tt.senderID, m.SenderID)
			assert.False(t, m.Read)
		})
	}
}

func TestConversationParties(t *testing.T) {
	c := Conversation{ID: "conv-1", ClientID: "client-1", ProviderID: "provider-1"}

	assert.True(t, c.HasParty("client-1"))
	assert.True(t, c.HasParty("provider-1"))
	assert.False(t, c.HasParty("stranger"))
	assert.False(t, c.HasParty(""))

	assert.Equal(t, "provider-1", c.CounterpartID("client-1"))
	assert.Equal(t, "client-1", c.CounterpartID("provider-1"))
	assert.Equal(t, "", c.CounterpartID("stranger"))
}

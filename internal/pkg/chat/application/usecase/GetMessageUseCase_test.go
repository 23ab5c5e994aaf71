package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
)

func TestGetMessage_HydratesSenders(t *testing.T) {
	repo := newFakeRepo()
	conv := seedConversation(t, repo,
		SendMessageInput{SenderID: "client-1", Content: "Hola"},
		SendMessageInput{SenderID: "provider-1", Content: "Buenas, dime"},
		SendMessageInput{SenderID: "client-1", Content: "¿Estás disponible?"},
	)
	dir := newFakeDirectory(clientProfile("client-1", "Carla"), providerProfile("provider-1", "Pedro"))
	uc := NewGetMessageUseCase(repo, dir)

	out, err := uc.Execute(context.Background(), GetMessageInput{ConversationID: conv.ID, ReaderID: "client-1"})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "Hola", out[0].Content)
	assert.Equal(t, "Carla", out[0].Sender.FullName)
	assert.Equal(t, "Pedro", out[1].Sender.FullName)
	assert.Equal(t, "Carla", out[2].Sender.FullName)
	assert.True(t, out[0].CreatedAt.Before(out[1].CreatedAt))
	assert.True(t, out[1].CreatedAt.Before(out[2].CreatedAt))
}

func TestGetMessage_LimitKeepsNewestInOrder(t *testing.T) {
	repo := newFakeRepo()
	conv := seedConversation(t, repo,
		SendMessageInput{SenderID: "client-1", Content: "uno"},
		SendMessageInput{SenderID: "client-1", Content: "dos"},
		SendMessageInput{SenderID: "client-1", Content: "tres"},
	)
	dir := newFakeDirectory(clientProfile("client-1", "Carla"))
	uc := NewGetMessageUseCase(repo, dir)

	out, err := uc.Execute(context.Background(), GetMessageInput{ConversationID: conv.ID, ReaderID: "client-1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "dos", out[0].Content)
	assert.Equal(t, "tres", out[1].Content)
}

func TestGetMessage_MissingProfileFallsBackToBareID(t *testing.T) {
	repo := newFakeRepo()
	conv := seedConversation(t, repo,
		SendMessageInput{SenderID: "client-1", Content: "Hola"},
	)
	uc := NewGetMessageUseCase(repo, newFakeDirectory())

	out, err := uc.Execute(context.Background(), GetMessageInput{ConversationID: conv.ID, ReaderID: "client-1"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "client-1", out[0].Sender.ID)
	assert.Empty(t, out[0].Sender.FullName)
}

func TestGetMessage_Rejections(t *testing.T) {
	repo := newFakeRepo()
	conv := seedConversation(t, repo,
		SendMessageInput{SenderID: "client-1", Content: "Hola"},
	)
	uc := NewGetMessageUseCase(repo, newFakeDirectory(clientProfile("client-1", "Carla")))

	tests := []struct {
		name    string
		in      GetMessageInput
		wantErr error
	}{
		{"missing reader", GetMessageInput{ConversationID: conv.ID}, chat.ErrMissingID},
		{"unknown conversation", GetMessageInput{ConversationID: "nope", ReaderID: "client-1"}, chat.ErrConversationNotFound},
		{"stranger", GetMessageInput{ConversationID: conv.ID, ReaderID: "stranger"}, chat.ErrNotParticipant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

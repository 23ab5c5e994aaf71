package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
)

// seedConversation inserts a conversation between client-1 and provider-1 and
// appends the given messages through SendMessageUseCase.
func seedConversation(t *testing.T, repo *fakeRepo, sends ...SendMessageInput) chat.Conversation {
	t.Helper()
	conv, err := repo.InsertConversation(context.Background(), "client-1", "provider-1")
	require.NoError(t, err)
	send := NewSendMessageUseCase(repo, nil, nil)
	for _, in := range sends {
		in.ConversationID = conv.ID
		_, err := send.Execute(context.Background(), in)
		require.NoError(t, err)
	}
	return conv
}

func TestMarkRead_ClearsCounterpartUnread(t *testing.T) {
	repo := newFakeRepo()
	conv := seedConversation(t, repo,
		SendMessageInput{SenderID: "client-1", Content: "Hola"},
		SendMessageInput{SenderID: "client-1", Content: "¿Estás disponible?"},
	)
	dir := newFakeDirectory(clientProfile("client-1", "Carla"), providerProfile("provider-1", "Pedro"))
	unread := NewUnreadCountUseCase(repo, dir)
	markRead := NewMarkReadUseCase(repo)

	n, err := unread.Execute(context.Background(), UnreadCountInput{UserID: "provider-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	marked, err := markRead.Execute(context.Background(), MarkReadInput{ConversationID: conv.ID, ReaderID: "provider-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	n, err = unread.Execute(context.Background(), UnreadCountInput{UserID: "provider-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMarkRead_LeavesOwnMessagesAlone(t *testing.T) {
	repo := newFakeRepo()
	conv := seedConversation(t, repo,
		SendMessageInput{SenderID: "client-1", Content: "Hola"},
		SendMessageInput{SenderID: "provider-1", Content: "Buenas"},
	)
	markRead := NewMarkReadUseCase(repo)

	marked, err := markRead.Execute(context.Background(), MarkReadInput{ConversationID: conv.ID, ReaderID: "client-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, marked)

	msgs, err := repo.ListMessages(context.Background(), conv.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	// the client's own message stays untouched
	assert.False(t, msgs[0].Read)
	assert.True(t, msgs[1].Read)
}

func TestMarkRead_IsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	conv := seedConversation(t, repo,
		SendMessageInput{SenderID: "client-1", Content: "Hola"},
	)
	markRead := NewMarkReadUseCase(repo)

	_, err := markRead.Execute(context.Background(), MarkReadInput{ConversationID: conv.ID, ReaderID: "provider-1"})
	require.NoError(t, err)

	marked, err := markRead.Execute(context.Background(), MarkReadInput{ConversationID: conv.ID, ReaderID: "provider-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, marked)
}

func TestMarkRead_Rejections(t *testing.T) {
	repo := newFakeRepo()
	conv := seedConversation(t, repo,
		SendMessageInput{SenderID: "client-1", Content: "Hola"},
	)
	markRead := NewMarkReadUseCase(repo)

	tests := []struct {
		name    string
		in      MarkReadInput
		wantErr error
	}{
		{"missing reader", MarkReadInput{ConversationID: conv.ID}, chat.ErrMissingID},
		{"missing conversation id", MarkReadInput{ReaderID: "provider-1"}, chat.ErrMissingID},
		{"unknown conversation", MarkReadInput{ConversationID: "nope", ReaderID: "provider-1"}, chat.ErrConversationNotFound},
		{"stranger", MarkReadInput{ConversationID: conv.ID, ReaderID: "stranger"}, chat.ErrNotParticipant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := markRead.Execute(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnreadCount_SpansConversations(t *testing.T) {
	repo := newFakeRepo()
	convA, err := repo.InsertConversation(context.Background(), "client-1", "provider-1")
	require.NoError(t, err)
	convB, err := repo.InsertConversation(context.Background(), "client-2", "provider-1")
	require.NoError(t, err)
	send := NewSendMessageUseCase(repo, nil, nil)
	for _, in := range []SendMessageInput{
		{ConversationID: convA.ID, SenderID: "client-1", Content: "Hola"},
		{ConversationID: convB.ID, SenderID: "client-2", Content: "Necesito un plomero"},
		{ConversationID: convB.ID, SenderID: "provider-1", Content: "Claro"},
	} {
		_, err := send.Execute(context.Background(), in)
		require.NoError(t, err)
	}
	dir := newFakeDirectory(
		clientProfile("client-1", "Carla"),
		clientProfile("client-2", "Diego"),
		providerProfile("provider-1", "Pedro"),
	)
	unread := NewUnreadCountUseCase(repo, dir)

	n, err := unread.Execute(context.Background(), UnreadCountInput{UserID: "provider-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = unread.Execute(context.Background(), UnreadCountInput{UserID: "client-2"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = unread.Execute(context.Background(), UnreadCountInput{UserID: "client-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUnreadCount_UnknownUser(t *testing.T) {
	repo := newFakeRepo()
	unread := NewUnreadCountUseCase(repo, newFakeDirectory())

	_, err := unread.Execute(context.Background(), UnreadCountInput{UserID: "ghost"})
	assert.ErrorIs(t, err, chat.ErrUserNotFound)

	_, err = unread.Execute(context.Background(), UnreadCountInput{})
	assert.ErrorIs(t, err, chat.ErrMissingID)
}

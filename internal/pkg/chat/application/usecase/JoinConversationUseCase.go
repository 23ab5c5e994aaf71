package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
)

// JoinConversationInput validates a request to attach a live session to a
// conversation feed.
type JoinConversationInput struct {
	ConversationID string
	UserID         string
}

// JoinConversationUseCase ensures the user is a party to the conversation
// before a feed subscription is established.
type JoinConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewJoinConversationUseCase(repo repository.ChatRepository) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID == "" || in.UserID == "" {
		return chat.ErrMissingID
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParty(in.UserID) {
		return chat.ErrNotParticipant
	}
	return nil
}

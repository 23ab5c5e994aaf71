package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
)

// MarkReadInput identifies the conversation and the party that focused it.
type MarkReadInput struct {
	ConversationID string
	ReaderID       string
}

// MarkReadUseCase flips read=true on every message addressed to the reader
// in the conversation. Idempotent: with nothing unread it is a no-op.
type MarkReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkReadUseCase(repo repository.ChatRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

// Execute returns the number of messages newly marked read.
func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (int64, error) {
	if in.ConversationID == "" || in.ReaderID == "" {
		return 0, chat.ErrMissingID
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParty(in.ReaderID) {
		return 0, chat.ErrNotParticipant
	}

	n, err := uc.Repo.MarkRead(ctx, in.ConversationID, in.ReaderID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return n, nil
}

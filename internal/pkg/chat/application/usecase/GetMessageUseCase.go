package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// GetMessageInput carries parameters to fetch a conversation's history.
type GetMessageInput struct {
	ConversationID string
	ReaderID       string
	Limit          int
}

// GetMessageUseCase fetches message history ascending by creation time,
// hydrated with sender display profiles. The reader must be a party.
type GetMessageUseCase struct {
	Repo repository.ChatRepository
	Dir  directory.Directory
}

func NewGetMessageUseCase(repo repository.ChatRepository, dir directory.Directory) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo, Dir: dir}
}

func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.HydratedMessage, error) {
	if in.ConversationID == "" || in.ReaderID == "" {
		return nil, chat.ErrMissingID
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParty(in.ReaderID) {
		return nil, chat.ErrNotParticipant
	}

	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// At most two senders per thread; the directory caches these lookups.
	profiles := make(map[string]chat.DisplayProfile, 2)
	out := make([]chat.HydratedMessage, 0, len(msgs))
	for _, m := range msgs {
		p, ok := profiles[m.SenderID]
		if !ok {
			p, err = uc.Dir.GetProfile(ctx, m.SenderID)
			if err != nil {
				if errors.Is(err, chat.ErrUserNotFound) {
					p = chat.DisplayProfile{ID: m.SenderID}
				} else {
					return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
				}
			}
			profiles[m.SenderID] = p
		}
		out = append(out, chat.HydratedMessage{Message: m, Sender: p})
	}
	return out, nil
}

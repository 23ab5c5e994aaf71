package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// ListConversationsInput wraps the user whose inbox is being rendered.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase returns the user's conversations, most recently
// active first, each annotated with the other party's display profile.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
	Dir  directory.Directory
}

func NewListConversationsUseCase(repo repository.ChatRepository, dir directory.Directory) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Dir: dir}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]chat.ConversationView, error) {
	if in.UserID == "" {
		return nil, chat.ErrMissingID
	}

	convs, err := uc.Repo.ListConversationsByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	views := make([]chat.ConversationView, 0, len(convs))
	for _, c := range convs {
		otherID := c.CounterpartID(in.UserID)
		profile, err := uc.Dir.GetProfile(ctx, otherID)
		if err != nil {
			if errors.Is(err, chat.ErrUserNotFound) {
				// counterpart account deleted mid-cascade; hide the thread
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		views = append(views, chat.ConversationView{Conversation: c, Counterpart: profile})
	}
	return views, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// UnreadCountInput wraps the user whose badge is being computed.
type UnreadCountInput struct {
	UserID string
}

// UnreadCountUseCase computes the unread badge: messages across all of the
// user's conversations where they are not the sender and read is false.
// Always recomputed from storage, never cached, so it observes every
// completed MarkRead.
type UnreadCountUseCase struct {
	Repo repository.ChatRepository
	Dir  directory.Directory
}

func NewUnreadCountUseCase(repo repository.ChatRepository, dir directory.Directory) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo, Dir: dir}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, in UnreadCountInput) (int, error) {
	if in.UserID == "" {
		return 0, chat.ErrMissingID
	}

	if _, err := uc.Dir.GetProfile(ctx, in.UserID); err != nil {
		if errors.Is(err, chat.ErrUserNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	n, err := uc.Repo.CountUnread(ctx, in.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return n, nil
}

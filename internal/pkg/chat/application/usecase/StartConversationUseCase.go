package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// StartConversationInput carries the two-party key for a conversation.
type StartConversationInput struct {
	ClientID   string
	ProviderID string
}

// StartConversationUseCase resolves the unique conversation for a
// (client, provider) pair, creating it on first contact. Safe to call
// repeatedly: a lost creation race is recovered by re-reading the pair,
// so the uniqueness conflict never escapes this use case.
type StartConversationUseCase struct {
	Repo repository.ChatRepository
	Dir  directory.Directory
}

func NewStartConversationUseCase(repo repository.ChatRepository, dir directory.Directory) *StartConversationUseCase {
	return &StartConversationUseCase{Repo: repo, Dir: dir}
}

// Execute returns the conversation for the pair and whether it was created
// by this call.
func (uc *StartConversationUseCase) Execute(ctx context.Context, in StartConversationInput) (*chat.Conversation, bool, error) {
	if in.ClientID == "" || in.ProviderID == "" {
		return nil, false, chat.ErrMissingID
	}
	if in.ClientID == in.ProviderID {
		return nil, false, chat.ErrSameParty
	}

	client, err := uc.Dir.GetProfile(ctx, in.ClientID)
	if err != nil {
		return nil, false, wrapLookup(err)
	}
	provider, err := uc.Dir.GetProfile(ctx, in.ProviderID)
	if err != nil {
		return nil, false, wrapLookup(err)
	}
	if client.Role != chat.RoleClient || provider.Role != chat.RoleProvider {
		return nil, false, chat.ErrRoleMismatch
	}

	conv, err := uc.Repo.FindConversationByPair(ctx, in.ClientID, in.ProviderID)
	if err == nil {
		return &conv, false, nil
	}
	if !errors.Is(err, chat.ErrConversationNotFound) {
		return nil, false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	conv, err = uc.Repo.InsertConversation(ctx, in.ClientID, in.ProviderID)
	if err == nil {
		return &conv, true, nil
	}
	if errors.Is(err, repository.ErrDuplicatePair) {
		// someone else created it between our read and insert
		conv, err = uc.Repo.FindConversationByPair(ctx, in.ClientID, in.ProviderID)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return &conv, false, nil
	}
	if errors.Is(err, chat.ErrUserNotFound) {
		return nil, false, err
	}
	return nil, false, fmt.Errorf("%w: %v", ErrPersistence, err)
}

func wrapLookup(err error) error {
	if errors.Is(err, chat.ErrUserNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

package port

import (
	"context"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
)

// Directory resolves user identity for display: name, avatar and marketplace
// role. Returns chat.ErrUserNotFound for unknown ids.
type Directory interface {
	GetProfile(ctx context.Context, userID string) (chat.DisplayProfile, error)
}

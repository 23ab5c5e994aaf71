package controller

import (
	"errors"
	"net/http"

	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/usecase"
	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
)

// statusForError maps domain and use case errors onto HTTP status codes.
// Validation failures are terminal 400s, missing references 404, party
// violations 403, everything infrastructural 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, chat.ErrMissingID),
		errors.Is(err, chat.ErrEmptyContent),
		errors.Is(err, chat.ErrSameParty),
		errors.Is(err, chat.ErrRoleMismatch):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrConversationNotFound),
		errors.Is(err, chat.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

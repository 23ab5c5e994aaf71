package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/usecase"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/adapter"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// StartConversationController handles the get-or-create conversation
// endpoint (one controller per endpoint).
type StartConversationController struct {
	UC *usecase.StartConversationUseCase
}

func NewStartConversationController(pool *pgxpool.Pool, dir directory.Directory) *StartConversationController {
	repo := adapter.NewPgChatRepository(pool)
	return &StartConversationController{UC: usecase.NewStartConversationUseCase(repo, dir)}
}

type startConversationRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	ProviderID string `json:"provider_id" binding:"required"`
}

func (h *StartConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, created, err := h.UC.Execute(ctx, usecase.StartConversationInput{
			ClientID:   req.ClientID,
			ProviderID: req.ProviderID,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, conversationJSON(*conv))
	}
}

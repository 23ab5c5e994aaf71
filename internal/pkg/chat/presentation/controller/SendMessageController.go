package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	pubsubport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
	queueport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/port"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/usecase"
	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/adapter"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// SendMessageController handles the send-message endpoint only (one
// controller per endpoint). The send is synchronous: the caller gets the
// persisted message back, and a failed send changes nothing they must undo.
type SendMessageController struct {
	UC  *usecase.SendMessageUseCase
	Dir directory.Directory
}

func NewSendMessageController(pool *pgxpool.Pool, bus pubsubport.Bus, queue queueport.Client, dir directory.Directory) *SendMessageController {
	repo := adapter.NewPgChatRepository(pool)
	return &SendMessageController{
		UC:  usecase.NewSendMessageUseCase(repo, bus, queue),
		Dir: dir,
	}
}

type sendMessageRequest struct {
	SenderID string `json:"sender_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       req.SenderID,
			Content:        req.Content,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		sender, err := h.Dir.GetProfile(ctx, msg.SenderID)
		if err != nil {
			sender = chat.DisplayProfile{ID: msg.SenderID}
		}
		c.JSON(http.StatusCreated, messageJSON(chat.HydratedMessage{Message: *msg, Sender: sender}))
	}
}

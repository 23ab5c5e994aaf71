package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
	queueport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/port"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/feed"
	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
)

// NotifyTaskType is the background task that refreshes the recipient's
// unread badge after a message lands.
const NotifyTaskType = "chat:notify"

// NotifyTaskPayload is the JSON payload transported via the queue.
type NotifyTaskPayload struct {
	RecipientID string `json:"recipientId"`
}

// SendMessageInput carries the data needed to append a message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
}

// SendMessageUseCase appends a message to a conversation. Persistence is the
// authoritative step; the pub/sub event and the badge task that follow are
// best-effort signals, since history is re-read by every consumer.
type SendMessageUseCase struct {
	Repo  repository.ChatRepository
	Bus   port.Bus
	Queue queueport.Client // optional; nil skips badge notification
}

func NewSendMessageUseCase(repo repository.ChatRepository, bus port.Bus, queue queueport.Client) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Bus: bus, Queue: queue}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	msg, err := chat.NewMessage(in.ConversationID, in.SenderID, in.Content)
	if err != nil {
		return nil, err
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParty(in.SenderID) {
		return nil, chat.ErrNotParticipant
	}

	stored, err := uc.Repo.SaveMessage(ctx, msg)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.publish(ctx, stored)
	uc.enqueueBadge(ctx, conv.CounterpartID(stored.SenderID))

	return &stored, nil
}

// publish announces the new row on the conversation topic. A failed publish
// degrades live delivery only; the message itself is already durable.
func (uc *SendMessageUseCase) publish(ctx context.Context, m chat.Message) {
	if uc.Bus == nil {
		return
	}
	ev := feed.Event{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := uc.Bus.Publish(ctx, feed.Topic(m.ConversationID), payload); err != nil {
		log.Printf("publish message event: conversation=%s message=%s err=%v", m.ConversationID, m.ID, err)
	}
}

func (uc *SendMessageUseCase) enqueueBadge(ctx context.Context, recipientID string) {
	if uc.Queue == nil || recipientID == "" {
		return
	}
	payload, err := json.Marshal(NotifyTaskPayload{RecipientID: recipientID})
	if err != nil {
		return
	}
	_, _ = uc.Queue.Enqueue(ctx, queueport.Task{Type: NotifyTaskType, Payload: payload},
		queueport.EnqueueOption{Queue: "chat", MaxRetry: 5})
}

package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	pubsubport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
	queueport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/port"
	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/realtime"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/feed"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/usecase"
	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repoAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/adapter"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic. Each joined conversation holds one feed subscription; the handle
// is always closed on leave, re-join and teardown so no stale conversation
// events leak into the socket.
type ChatSocketController struct {
	registry        *realtime.Registry
	bus             pubsubport.Bus
	liveFeed        *feed.Feed
	sendMessageUC   *usecase.SendMessageUseCase
	joinUC          *usecase.JoinConversationUseCase
	markReadUC      *usecase.MarkReadUseCase
	inflightTimeout time.Duration
}

func NewChatSocketController(pool *pgxpool.Pool, registry *realtime.Registry, bus pubsubport.Bus, queue queueport.Client, dir directory.Directory) *ChatSocketController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &ChatSocketController{
		registry:        registry,
		bus:             bus,
		liveFeed:        feed.New(bus, repo, dir),
		sendMessageUC:   usecase.NewSendMessageUseCase(repo, bus, queue),
		joinUC:          usecase.NewJoinConversationUseCase(repo),
		markReadUC:      usecase.NewMarkReadUseCase(repo),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Marked         int64  `json:"marked,omitempty"`
}

type outboundMessage struct {
	Type           string         `json:"type"`
	ConversationID string         `json:"conversation_id"`
	Message        messagePayload `json:"message"`
}

type messagePayload struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	SenderID       string        `json:"sender_id"`
	Content        string        `json:"content"`
	CreatedAt      time.Time     `json:"created_at"`
	Read           bool          `json:"read"`
	Sender         senderPayload `json:"sender"`
}

type senderPayload struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	ProfileImage *string `json:"profile_image"`
}

type badgeFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Unread int    `json:"unread"`
}

const defaultReadTimeout = 60 * time.Second

// session tracks the feed subscriptions owned by one socket.
type session struct {
	mu   sync.Mutex
	subs map[string]*feed.Subscription
}

func (s *session) swapIn(conversationID string, sub *feed.Subscription) *feed.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.subs[conversationID]
	s.subs[conversationID] = sub
	return prev
}

func (s *session) take(conversationID string) *feed.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[conversationID]
	delete(s.subs, conversationID)
	return sub
}

func (s *session) drain() []*feed.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*feed.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	s.subs = make(map[string]*feed.Subscription)
	return out
}

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.registry.Attach(conn)

		sess := &session{subs: make(map[string]*feed.Subscription)}

		// Unread badge pushes for this user, for the lifetime of the socket.
		// Dispatch goes through the registry rather than this socket: after a
		// session replacement the registry addresses the live connection, and
		// badge frames carry absolute counts so an overlap during the swap is
		// harmless.
		badgeSub, err := ctl.bus.Subscribe(c.Request.Context(), feed.BadgeTopic(userID), func(payload []byte) {
			var ev feed.BadgeEvent
			if json.Unmarshal(payload, &ev) != nil {
				return
			}
			if out, err := json.Marshal(badgeFrame{Type: "unread", UserID: ev.UserID, Unread: ev.Unread}); err == nil {
				ctl.registry.NotifyUser(ev.UserID, out)
			}
		})
		if err != nil {
			log.Printf("badge subscription unavailable for user %s: %v", userID, err)
		}

		defer func() {
			for _, sub := range sess.drain() {
				_ = sub.Close()
			}
			if badgeSub != nil {
				_ = badgeSub.Close()
			}
			ctl.registry.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c, conn, sess, frame)
			case "leave":
				ctl.handleLeave(conn, sess, frame)
			case "message":
				ctl.handleMessage(c, conn, userID, frame)
			case "read":
				ctl.handleRead(c, conn, userID, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, sess *session, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if err := ctl.joinUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
	}); err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	sub, err := ctl.liveFeed.Subscribe(c.Request.Context(), frame.ConversationID, func(m chat.HydratedMessage) {
		out := outboundMessage{
			Type:           "message",
			ConversationID: m.ConversationID,
			Message:        toPayload(m),
		}
		if payload, err := json.Marshal(out); err == nil {
			_ = conn.Send(payload)
		}
	})
	if err != nil {
		ctl.replyError(conn, "subscribe_failed", "live updates unavailable")
		return
	}

	// A re-join replaces the old subscription; close it so the thread never
	// has two live channels.
	if prev := sess.swapIn(frame.ConversationID, sub); prev != nil {
		_ = prev.Close()
	}

	if payload, err := json.Marshal(ackFrame{Type: "joined", ConversationID: frame.ConversationID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, sess *session, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}
	if sub := sess.take(frame.ConversationID); sub != nil {
		_ = sub.Close()
	}

	if payload, err := json.Marshal(ackFrame{Type: "left", ConversationID: frame.ConversationID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleMessage(c *gin.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	// Delivery of the stored message comes back through the feed, to the
	// sender's own socket as well; no direct echo here.
	_, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: frame.ConversationID,
		SenderID:       userID,
		Content:        frame.Content,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}
}

func (ctl *ChatSocketController) handleRead(c *gin.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	n, err := ctl.markReadUC.Execute(ctx, usecase.MarkReadInput{
		ConversationID: frame.ConversationID,
		ReaderID:       userID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	if payload, err := json.Marshal(ackFrame{Type: "read_ack", ConversationID: frame.ConversationID, Marked: n}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, chat.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a party to this conversation")
	case errors.Is(err, chat.ErrConversationNotFound):
		ctl.replyError(conn, "not_found", "conversation does not exist")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func toPayload(m chat.HydratedMessage) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		Read:           m.Read,
		Sender: senderPayload{
			ID:           m.Sender.ID,
			FullName:     m.Sender.FullName,
			ProfileImage: m.Sender.AvatarURL,
		},
	}
}

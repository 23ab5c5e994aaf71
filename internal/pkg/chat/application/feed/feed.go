package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// MessageGetter is the slice of the message store the feed needs to turn a
// row reference back into a full message.
type MessageGetter interface {
	GetMessage(ctx context.Context, id string) (chat.Message, error)
}

const hydrateTimeout = 5 * time.Second

// Topic names the pub/sub channel carrying new-message events for a
// conversation.
func Topic(conversationID string) string {
	return "chat.conversation." + conversationID
}

// BadgeTopic names the pub/sub channel carrying unread badge updates for a
// user's live session.
func BadgeTopic(userID string) string {
	return "chat.badge." + userID
}

// Event is the raw row reference published when a message is inserted.
// It deliberately carries no content: subscribers re-fetch the hydrated
// message, so the store stays the single source of truth.
type Event struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
}

// BadgeEvent carries a recomputed unread count to a live session.
type BadgeEvent struct {
	UserID string `json:"userId"`
	Unread int    `json:"unread"`
}

// OnMessage receives each new message exactly once per subscription,
// hydrated with the sender's display profile. Arrival order is not
// guaranteed across rapid writers; consumers sort by CreatedAt.
type OnMessage func(chat.HydratedMessage)

// Feed is the live update channel for conversations: one subscription per
// open thread, delivering every message appended after subscription start,
// including the subscriber's own.
type Feed struct {
	bus   port.Bus
	store MessageGetter
	dir   directory.Directory
}

func New(bus port.Bus, store MessageGetter, dir directory.Directory) *Feed {
	return &Feed{bus: bus, store: store, dir: dir}
}

// Subscribe opens the channel for a conversation. The returned Subscription
// must be closed on thread switch and teardown; a fresh Subscribe after
// Close re-establishes delivery from "now".
func (f *Feed) Subscribe(ctx context.Context, conversationID string, fn OnMessage) (*Subscription, error) {
	if conversationID == "" {
		return nil, chat.ErrMissingID
	}
	if fn == nil {
		return nil, errors.New("feed: nil callback")
	}

	sub, err := f.bus.Subscribe(ctx, Topic(conversationID), func(payload []byte) {
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return
		}
		if ev.ConversationID != conversationID || ev.MessageID == "" {
			return
		}
		if m, ok := f.hydrate(ev); ok {
			fn(m)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Subscription{sub: sub}, nil
}

// hydrate attaches sender identity to the bare row reference. The push
// payload never carries the row itself, so a dropped lookup here means the
// viewer catches up on the next history fetch.
func (f *Feed) hydrate(ev Event) (chat.HydratedMessage, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()

	m, err := f.store.GetMessage(ctx, ev.MessageID)
	if err != nil {
		return chat.HydratedMessage{}, false
	}
	sender, err := f.dir.GetProfile(ctx, m.SenderID)
	if err != nil {
		// deliver with a bare sender rather than dropping the message
		sender = chat.DisplayProfile{ID: m.SenderID}
	}
	return chat.HydratedMessage{Message: m, Sender: sender}, true
}

// Subscription is the handle for one open conversation feed.
type Subscription struct {
	sub port.Subscription
}

// Close releases the channel. No callback runs after Close returns; calling
// it again is a no-op.
func (s *Subscription) Close() error {
	if s == nil || s.sub == nil {
		return nil
	}
	return s.sub.Close()
}

package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	queueport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/port"
	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
)

// fakeRepo is an in-memory ChatRepository honoring the same error contract
// as the Postgres adapter: pair uniqueness, not-found sentinels, preview
// updated together with the message append.
type fakeRepo struct {
	mu       sync.Mutex
	convs    map[string]chat.Conversation
	pairs    map[string]string // clientID|providerID -> conversation id
	messages map[string]chat.Message
	order    []string // message ids in insertion order
	nextConv int
	nextMsg  int
	clock    time.Time

	// beforeInsert runs at the top of InsertConversation, letting tests
	// interleave a competing writer between find and insert.
	beforeInsert func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		convs:    make(map[string]chat.Conversation),
		pairs:    make(map[string]string),
		messages: make(map[string]chat.Message),
		clock:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func pairKey(clientID, providerID string) string {
	return clientID + "|" + providerID
}

func (r *fakeRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Millisecond)
	return r.clock
}

var _ repository.ChatRepository = (*fakeRepo)(nil)

func (r *fakeRepo) FindConversationByPair(ctx context.Context, clientID, providerID string) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.pairs[pairKey(clientID, providerID)]
	if !ok {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	return r.convs[id], nil
}

func (r *fakeRepo) InsertConversation(ctx context.Context, clientID, providerID string) (chat.Conversation, error) {
	if r.beforeInsert != nil {
		hook := r.beforeInsert
		r.beforeInsert = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pairs[pairKey(clientID, providerID)]; ok {
		return chat.Conversation{}, repository.ErrDuplicatePair
	}
	r.nextConv++
	c := chat.Conversation{
		ID:         fmt.Sprintf("conv-%d", r.nextConv),
		ClientID:   clientID,
		ProviderID: providerID,
		CreatedAt:  r.tick(),
	}
	r.convs[c.ID] = c
	r.pairs[pairKey(clientID, providerID)] = c.ID
	return c, nil
}

func (r *fakeRepo) GetConversation(ctx context.Context, id string) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	return c, nil
}

func (r *fakeRepo) ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Conversation
	for _, c := range r.convs {
		if c.HasParty(userID) {
			out = append(out, c)
		}
	}
	activity := func(c chat.Conversation) time.Time {
		if c.LastMessageAt != nil {
			return *c.LastMessageAt
		}
		return c.CreatedAt
	}
	sort.Slice(out, func(i, j int) bool {
		return activity(out[i]).After(activity(out[j]))
	})
	return out, nil
}

func (r *fakeRepo) SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[m.ConversationID]
	if !ok {
		return chat.Message{}, chat.ErrConversationNotFound
	}
	r.nextMsg++
	m.ID = fmt.Sprintf("msg-%d", r.nextMsg)
	m.CreatedAt = r.tick()
	r.messages[m.ID] = m
	r.order = append(r.order, m.ID)

	content := m.Content
	at := m.CreatedAt
	c.LastMessage = &content
	c.LastMessageAt = &at
	r.convs[c.ID] = c
	return m, nil
}

func (r *fakeRepo) GetMessage(ctx context.Context, id string) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return chat.Message{}, chat.ErrConversationNotFound
	}
	return m, nil
}

func (r *fakeRepo) ListMessages(ctx context.Context, conversationID string, limit int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 500
	}
	var out []chat.Message
	for _, id := range r.order {
		if m := r.messages[id]; m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeRepo) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.Read {
			m.Read = true
			r.messages[id] = m
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		c := r.convs[m.ConversationID]
		if c.HasParty(userID) && m.SenderID != userID && !m.Read {
			n++
		}
	}
	return n, nil
}

// fakeDirectory serves display profiles from a map.
type fakeDirectory struct {
	profiles map[string]chat.DisplayProfile
}

func newFakeDirectory(profiles ...chat.DisplayProfile) *fakeDirectory {
	d := &fakeDirectory{profiles: make(map[string]chat.DisplayProfile)}
	for _, p := range profiles {
		d.profiles[p.ID] = p
	}
	return d
}

func (d *fakeDirectory) GetProfile(ctx context.Context, userID string) (chat.DisplayProfile, error) {
	p, ok := d.profiles[userID]
	if !ok {
		return chat.DisplayProfile{}, chat.ErrUserNotFound
	}
	return p, nil
}

// fakeQueue records enqueued tasks.
type fakeQueue struct {
	mu    sync.Mutex
	tasks []queueport.Task
}

func (q *fakeQueue) Enqueue(ctx context.Context, t queueport.Task, opts ...queueport.EnqueueOption) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	return fmt.Sprintf("task-%d", len(q.tasks)), nil
}

func (q *fakeQueue) Close() error { return nil }

func clientProfile(id, name string) chat.DisplayProfile {
	return chat.DisplayProfile{ID: id, FullName: name, Role: chat.RoleClient}
}

func providerProfile(id, name string) chat.DisplayProfile {
	return chat.DisplayProfile{ID: id, FullName: name, Role: chat.RoleProvider}
}

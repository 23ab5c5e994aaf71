package adapter

import (
	"context"
	"sort"
	"sync"

	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
)

// MemoryBus is an in-process port.Bus for single-node runs and tests.
// Delivery is synchronous: Publish invokes every active handler for the
// topic exactly once before returning. Handlers run under their
// subscription's mutex, so Close can wait out an in-flight invocation and
// no handler runs after Close returns.
type MemoryBus struct {
	mu     sync.RWMutex
	nextID int
	topics map[string]map[int]*memorySubscription
	closed bool
}

// NewMemoryBus constructs an initialized MemoryBus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{topics: make(map[string]map[int]*memorySubscription)}
}

// Ensure interface compliance at compile time
var _ port.Bus = (*MemoryBus)(nil)

func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	subs := make([]*memorySubscription, 0, len(b.topics[topic]))
	for _, s := range b.topics[topic] {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	// Deliver in subscription order so interleavings are deterministic.
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	for _, s := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.deliver(payload)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, topic string, h port.Handler) (port.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, context.Canceled
	}
	id := b.nextID
	b.nextID++
	subs := b.topics[topic]
	if subs == nil {
		subs = make(map[int]*memorySubscription)
		b.topics[topic] = subs
	}
	sub := &memorySubscription{bus: b, topic: topic, id: id, h: h}
	subs[id] = sub
	return sub, nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	var all []*memorySubscription
	for _, subs := range b.topics {
		for _, s := range subs {
			all = append(all, s)
		}
	}
	b.topics = make(map[string]map[int]*memorySubscription)
	b.closed = true
	b.mu.Unlock()

	for _, s := range all {
		s.shutdown()
	}
	return nil
}

type memorySubscription struct {
	bus   *MemoryBus
	topic string
	id    int
	h     port.Handler

	mu     sync.Mutex
	closed bool
}

// deliver invokes the handler unless the subscription closed. Holding the
// mutex through the invocation is what lets Close wait for it.
func (s *memorySubscription) deliver(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.h(payload)
}

// Close unregisters the subscription and waits for any in-flight handler
// invocation to finish, so no handler runs after it returns. Calling it
// again is a no-op.
func (s *memorySubscription) Close() error {
	s.bus.mu.Lock()
	if subs := s.bus.topics[s.topic]; subs != nil {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.bus.topics, s.topic)
		}
	}
	s.bus.mu.Unlock()

	s.shutdown()
	return nil
}

func (s *memorySubscription) shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

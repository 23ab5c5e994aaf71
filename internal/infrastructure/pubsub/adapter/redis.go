package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
)

// RedisBus satisfies port.Bus over Redis pub/sub channels, which carries
// change events across API nodes.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBusFromEnv constructs a RedisBus using the REDIS_URL environment variable.
func NewRedisBusFromEnv() (*RedisBus, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return nil, errors.New("pubsub: REDIS_URL environment variable is not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("pubsub: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("pubsub: ping: %w", err)
	}
	return &RedisBus{client: c}, nil
}

// Ensure interface compliance at compile time
var _ port.Bus = (*RedisBus)(nil)

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string, h port.Handler) (port.Subscription, error) {
	ps := b.client.Subscribe(ctx, topic)
	// Receive forces the SUBSCRIBE round trip so a successful return means
	// the feed is live from "now".
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("pubsub: subscribe %s: %w", topic, err)
	}

	sub := &redisSubscription{ps: ps, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for msg := range ps.Channel() {
			h([]byte(msg.Payload))
		}
	}()
	return sub, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

type redisSubscription struct {
	ps   *redis.PubSub
	once sync.Once
	done chan struct{}
	err  error
}

// Close unsubscribes and waits for the delivery goroutine to drain, so no
// handler invocation can happen after Close returns.
func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		s.err = s.ps.Close()
		<-s.done
	})
	return s.err
}

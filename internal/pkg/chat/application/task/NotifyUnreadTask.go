package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	pubsubport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
	qport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/port"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/feed"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/adapter"
	dirAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/adapter"
)

// RegisterNotifyUnreadTask binds the unread badge handler to the worker.
// The handler recomputes the recipient's unread count from storage and
// publishes it on their badge topic; recomputation (not incrementing) makes
// retried deliveries harmless.
func RegisterNotifyUnreadTask(srv qport.Server, pool *pgxpool.Pool, bus pubsubport.Bus) {
	srv.Register(usecase.NotifyTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.NotifyTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot help
			return nil
		}
		if p.RecipientID == "" {
			return nil
		}

		repo := repoAdapter.NewPgChatRepository(pool)
		uc := usecase.NewUnreadCountUseCase(repo, dirAdapter.NewPgDirectory(pool))

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		n, err := uc.Execute(ctx, usecase.UnreadCountInput{UserID: p.RecipientID})
		if err != nil {
			return err
		}

		payload, err := json.Marshal(feed.BadgeEvent{UserID: p.RecipientID, Unread: n})
		if err != nil {
			return err
		}
		return bus.Publish(ctx, feed.BadgeTopic(p.RecipientID), payload)
	})
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/database"
	pubsubAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/adapter"
	queueAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/adapter"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/application/task"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	bus, err := pubsubAdapter.NewRedisBusFromEnv()
	if err != nil {
		log.Fatalf("failed to connect pub/sub: %v", err)
	}
	defer bus.Close()

	srv, err := queueAdapter.NewAsynqServer()
	if err != nil {
		log.Fatalf("failed to start queue server: %v", err)
	}

	task.RegisterNotifyUnreadTask(srv, pool, bus)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("worker running")
	if err := srv.Run(runCtx); err != nil {
		log.Fatalf("worker stopped: %v", err)
	}
}

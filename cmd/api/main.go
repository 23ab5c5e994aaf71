package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/DanielRC23/mis-servicios-mrl/cmd/api/router/v1"
	cacheAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/cache/adapter"
	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/database"
	pubsubAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/adapter"
	pubsubport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
	queueAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/adapter"
	queueport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/port"
	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/realtime"
	httpHandler "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/presentation/http"
	dirAdapter "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/adapter"
	dirport "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	var dir dirport.Directory = dirAdapter.NewPgDirectory(pool)
	var bus pubsubport.Bus
	var queue queueport.Client

	// Redis powers cross-node fan-out, profile caching and the badge queue.
	// Without it the service still runs single-node on the in-process bus.
	if os.Getenv("REDIS_URL") != "" {
		redisBus, err := pubsubAdapter.NewRedisBusFromEnv()
		if err != nil {
			log.Fatalf("failed to connect pub/sub: %v", err)
		}
		defer redisBus.Close()
		bus = redisBus

		cache, err := cacheAdapter.NewRedisAdapter()
		if err != nil {
			log.Fatalf("failed to connect cache: %v", err)
		}
		defer cache.Close()
		dir = dirAdapter.NewCachedDirectory(dir, cache)

		q, err := queueAdapter.NewAsynqClientFromEnv()
		if err != nil {
			log.Fatalf("failed to connect queue: %v", err)
		}
		defer q.Close()
		queue = q
	} else {
		log.Println("REDIS_URL not set: using in-process pub/sub, no cache, no badge notifications")
		bus = pubsubAdapter.NewMemoryBus()
	}

	registry := realtime.NewRegistry()
	defer registry.Close()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:     pool,
		Bus:      bus,
		Queue:    queue,
		Registry: registry,
		Dir:      dir,
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Start HTTP server (blocks until shutdown)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

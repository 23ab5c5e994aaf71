package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	pubsubport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/pubsub/port"
	queueport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/queue/port"
	"github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/realtime"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/presentation/controller"
	directory "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

// Deps carries the shared infrastructure handed down to chat controllers.
type Deps struct {
	Pool     *pgxpool.Pool
	Bus      pubsubport.Bus
	Queue    queueport.Client // may be nil; disables badge notifications
	Registry *realtime.Registry
	Dir      directory.Directory
}

// RegisterRoutes registers chat-related HTTP endpoints under the given
// router group. It constructs per-endpoint controllers and binds them
// directly to routes.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	startCtl := controller.NewStartConversationController(d.Pool, d.Dir)
	listCtl := controller.NewListConversationsController(d.Pool, d.Dir)
	sendCtl := controller.NewSendMessageController(d.Pool, d.Bus, d.Queue, d.Dir)
	getCtl := controller.NewGetMessageController(d.Pool, d.Dir)
	readCtl := controller.NewMarkReadController(d.Pool)
	unreadCtl := controller.NewUnreadCountController(d.Pool, d.Dir)
	socketCtl := controller.NewChatSocketController(d.Pool, d.Registry, d.Bus, d.Queue, d.Dir)

	// POST /api/v1/conversations -> get-or-create the pair's conversation
	g.POST("/conversations", startCtl.Handle())

	// GET /api/v1/conversations?user_id= -> conversation list with counterpart profiles
	g.GET("/conversations", listCtl.Handle())

	// POST /api/v1/conversations/:conversationId/messages -> send a message
	g.POST("/conversations/:conversationId/messages", sendCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> fetch history
	g.GET("/conversations/:conversationId/messages", getCtl.Handle())

	// POST /api/v1/conversations/:conversationId/read -> mark thread read
	g.POST("/conversations/:conversationId/read", readCtl.Handle())

	// GET /api/v1/users/:userId/unread -> unread badge count
	g.GET("/users/:userId/unread", unreadCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())
}

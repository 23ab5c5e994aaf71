package controller

import (
	"github.com/gin-gonic/gin"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
)

func conversationJSON(c chat.Conversation) gin.H {
	return gin.H{
		"id":              c.ID,
		"client_id":       c.ClientID,
		"provider_id":     c.ProviderID,
		"last_message":    c.LastMessage,
		"last_message_at": c.LastMessageAt,
		"created_at":      c.CreatedAt,
	}
}

func conversationViewJSON(v chat.ConversationView) gin.H {
	out := conversationJSON(v.Conversation)
	out["counterpart"] = profileJSON(v.Counterpart)
	return out
}

func profileJSON(p chat.DisplayProfile) gin.H {
	return gin.H{
		"id":            p.ID,
		"full_name":     p.FullName,
		"profile_image": p.AvatarURL,
	}
}

func messageJSON(m chat.HydratedMessage) gin.H {
	return gin.H{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"sender_id":       m.SenderID,
		"content":         m.Content,
		"created_at":      m.CreatedAt,
		"read":            m.Read,
		"sender":          profileJSON(m.Sender),
	}
}

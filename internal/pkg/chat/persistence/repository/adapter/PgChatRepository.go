package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	repository "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/persistence/repository/port"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) FindConversationByPair(ctx context.Context, clientID, providerID string) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, client_id::text, provider_id::text, last_message, last_message_at, created_at
		FROM conversations
		WHERE client_id = $1::uuid AND provider_id = $2::uuid
	`, clientID, providerID).Scan(&c.ID, &c.ClientID, &c.ProviderID, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PgChatRepository) InsertConversation(ctx context.Context, clientID, providerID string) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (client_id, provider_id)
		VALUES ($1::uuid, $2::uuid)
		RETURNING id::text, client_id::text, provider_id::text, last_message, last_message_at, created_at
	`, clientID, providerID).Scan(&c.ID, &c.ClientID, &c.ProviderID, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return chat.Conversation{}, repository.ErrDuplicatePair
			case pgForeignKeyViolation:
				return chat.Conversation{}, chat.ErrUserNotFound
			}
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PgChatRepository) GetConversation(ctx context.Context, id string) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, client_id::text, provider_id::text, last_message, last_message_at, created_at
		FROM conversations
		WHERE id = $1::uuid
	`, id).Scan(&c.ID, &c.ClientID, &c.ProviderID, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PgChatRepository) ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, client_id::text, provider_id::text, last_message, last_message_at, created_at
		FROM conversations
		WHERE client_id = $1::uuid OR provider_id = $1::uuid
		ORDER BY COALESCE(last_message_at, created_at) DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		var c chat.Conversation
		if err := rows.Scan(&c.ID, &c.ClientID, &c.ProviderID, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// SaveMessage inserts the message and advances the conversation preview in
// one transaction, so a reader can never observe a preview that disagrees
// with message history.
func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return chat.Message{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content)
		VALUES ($1::uuid, $2::uuid, $3)
		RETURNING id::text, created_at, read
	`, m.ConversationID, m.SenderID, m.Content).Scan(&m.ID, &m.CreatedAt, &m.Read)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return chat.Message{}, chat.ErrConversationNotFound
		}
		return chat.Message{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations
		SET last_message = $2, last_message_at = $3
		WHERE id = $1::uuid
	`, m.ConversationID, m.Content, m.CreatedAt)
	if err != nil {
		return chat.Message{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PgChatRepository) GetMessage(ctx context.Context, id string) (chat.Message, error) {
	var m chat.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, created_at, read
		FROM messages
		WHERE id = $1::uuid
	`, id).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt, &m.Read)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Message{}, chat.ErrConversationNotFound
	}
	if err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 500
	}
	// Inner query bounds history at the most recent rows; the outer one
	// restores ascending order for display.
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender_id, content, created_at, read FROM (
			SELECT id::text, conversation_id::text, sender_id::text, content, created_at, read
			FROM messages
			WHERE conversation_id = $1::uuid
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt, &m.Read); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgChatRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET read = true
		WHERE conversation_id = $1::uuid AND sender_id <> $2::uuid AND NOT read
	`, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *PgChatRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.client_id = $1::uuid OR c.provider_id = $1::uuid)
		  AND m.sender_id <> $1::uuid
		  AND NOT m.read
	`, userID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

// Ensure interface compliance at compile time
var _ port.Directory = (*PgDirectory)(nil)

func (d *PgDirectory) GetProfile(ctx context.Context, userID string) (chat.DisplayProfile, error) {
	var p chat.DisplayProfile
	err := d.pool.QueryRow(ctx, `
		SELECT id::text, full_name, profile_image, role
		FROM users
		WHERE id = $1::uuid
	`, userID).Scan(&p.ID, &p.FullName, &p.AvatarURL, &p.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.DisplayProfile{}, chat.ErrUserNotFound
	}
	if err != nil {
		return chat.DisplayProfile{}, err
	}
	return p, nil
}

package adapter

import (
	"context"
	"encoding/json"
	"time"

	cacheport "github.com/DanielRC23/mis-servicios-mrl/internal/infrastructure/cache/port"
	chat "github.com/DanielRC23/mis-servicios-mrl/internal/pkg/chat/domain"
	"github.com/DanielRC23/mis-servicios-mrl/internal/pkg/directory/port"
)

const profileTTL = 5 * time.Minute

// CachedDirectory decorates a Directory with a read-through cache. Display
// profiles change rarely and are looked up on every message hydration, so a
// short TTL takes the hot path off Postgres. Cache failures degrade to the
// inner lookup; a miss is never an error.
type CachedDirectory struct {
	inner port.Directory
	cache cacheport.Cache
}

func NewCachedDirectory(inner port.Directory, cache cacheport.Cache) *CachedDirectory {
	return &CachedDirectory{inner: inner, cache: cache}
}

// Ensure interface compliance at compile time
var _ port.Directory = (*CachedDirectory)(nil)

func (d *CachedDirectory) GetProfile(ctx context.Context, userID string) (chat.DisplayProfile, error) {
	key := "profile:" + userID

	// A miss or a transport error both fall through to the source of truth.
	if raw, err := d.cache.Get(ctx, key); err == nil {
		var p chat.DisplayProfile
		if json.Unmarshal([]byte(raw), &p) == nil {
			return p, nil
		}
	}

	p, err := d.inner.GetProfile(ctx, userID)
	if err != nil {
		return chat.DisplayProfile{}, err
	}

	if raw, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, string(raw), profileTTL)
	}
	return p, nil
}

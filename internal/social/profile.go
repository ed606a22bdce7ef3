package social

import (
	"context"
	"sync"
	"time"

	"github.com/linkup/backend/internal/models"
)

// ProfileStore resolves a user's friend and request references to the
// restricted public field set. Credential hashes and message bodies are
// never part of a projection.
type ProfileStore interface {
	Project(ctx context.Context, userID string) (models.Profile, error)
	ProjectByUsername(ctx context.Context, username string) (models.Profile, error)
}

type profileEntry struct {
	profile models.Profile
	expires time.Time
}

// Profiles serves public profile projections through a TTL-based
// in-memory cache. Graph mutations invalidate the affected users.
type Profiles struct {
	store ProfileStore
	ttl   time.Duration

	mu    sync.RWMutex
	items map[string]profileEntry
}

// NewProfiles returns a projection service caching lookups for the
// provided TTL.
func NewProfiles(store ProfileStore, ttl time.Duration) *Profiles {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Profiles{
		store: store,
		ttl:   ttl,
		items: make(map[string]profileEntry),
	}
}

// Project returns the public profile for the given user id.
func (p *Profiles) Project(ctx context.Context, userID string) (models.Profile, error) {
	return p.lookup(ctx, "id:"+userID, func(ctx context.Context) (models.Profile, error) {
		return p.store.Project(ctx, userID)
	})
}

// ProjectByUsername returns the public profile for the given username.
func (p *Profiles) ProjectByUsername(ctx context.Context, username string) (models.Profile, error) {
	return p.lookup(ctx, "name:"+username, func(ctx context.Context) (models.Profile, error) {
		return p.store.ProjectByUsername(ctx, username)
	})
}

// Invalidate drops cached projections for the listed user ids. Call it
// after any mutation that changes a user's graph or public fields.
func (p *Profiles) Invalidate(userIDs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range userIDs {
		delete(p.items, "id:"+id)
	}
	for key, entry := range p.items {
		for _, id := range userIDs {
			if entry.profile.ID == id {
				delete(p.items, key)
				break
			}
		}
	}
}

func (p *Profiles) lookup(ctx context.Context, key string, load func(context.Context) (models.Profile, error)) (models.Profile, error) {
	now := time.Now()

	p.mu.RLock()
	entry, ok := p.items[key]
	p.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.profile, nil
	}

	profile, err := load(ctx)
	if err != nil {
		return models.Profile{}, err
	}

	p.mu.Lock()
	p.items[key] = profileEntry{profile: profile, expires: now.Add(p.ttl)}
	p.mu.Unlock()

	return profile, nil
}

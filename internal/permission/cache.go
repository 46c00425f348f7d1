package permission

import (
	"sync"
	"time"

	"github.com/pixelmint/backend/internal/domain"
)

type cacheEntry struct {
	perms     domain.UserPermissions
	expiresAt time.Time
}

// snapshotCache holds per-user permission snapshots with a bounded TTL.
// It is owned by a single Gate instance, so independent gates (and tests)
// never share state.
type snapshotCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// get returns a copy of the cached snapshot when present and not expired.
func (c *snapshotCache) get(userID string) (domain.UserPermissions, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[userID]
	if !ok {
		return domain.UserPermissions{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, userID)
		return domain.UserPermissions{}, false
	}
	return entry.perms.Clone(), true
}

func (c *snapshotCache) set(userID string, perms domain.UserPermissions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = cacheEntry{
		perms:     perms.Clone(),
		expiresAt: c.now().Add(c.ttl),
	}
}

// updateCredits rewrites the balance on an existing entry without extending
// its TTL. Missing or expired entries are left alone; the next read will
// fetch fresh state anyway.
func (c *snapshotCache) updateCredits(userID string, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[userID]
	if !ok || c.now().After(entry.expiresAt) {
		return
	}
	entry.perms = entry.perms.Clone()
	entry.perms.Credits.AvailableCredits = remaining
	c.entries[userID] = entry
}

func (c *snapshotCache) invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

func (c *snapshotCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

package prediction

import (
	"fmt"
	"sync"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a cached model may drift from a fresh
// rebuild as decay moves on
const DefaultCacheTTL = 15 * time.Minute

// CacheKey identifies the history a model was built from. Any added,
// removed, completed or re-timed session changes the key.
type CacheKey struct {
	UserID      string
	Count       int
	LatestStart int64
	LatestEnd   int64
}

// KeyFor derives the cache key for a user's event list
func KeyFor(userID string, events []models.Event) CacheKey {
	key := CacheKey{UserID: userID, Count: len(events)}
	for _, event := range events {
		if ts := event.Timestamp.UnixNano(); ts > key.LatestStart {
			key.LatestStart = ts
		}
		if event.EndDate != nil {
			if ts := event.EndDate.UnixNano(); ts > key.LatestEnd {
				key.LatestEnd = ts
			}
		}
	}
	return key
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%d|%d|%d", k.UserID, k.Count, k.LatestStart, k.LatestEnd)
}

type cacheEntry struct {
	key       CacheKey
	model     *Model
	expiresAt time.Time
}

// ModelCache memoizes the latest model per user behind an explicit key.
// It is owned by whoever creates it; there is no package-level cache.
//
// Each user has a generation that Invalidate advances. A build started
// under an older generation is returned to its callers but never stored,
// and callers arriving after Invalidate never join it.
type ModelCache struct {
	mu          sync.RWMutex
	entries     map[string]cacheEntry
	generations map[string]uint64
	ttl         time.Duration
	group       singleflight.Group
	now         func() time.Time
}

// NewModelCache creates a new model cache. A non-positive ttl uses
// DefaultCacheTTL.
func NewModelCache(ttl time.Duration) *ModelCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ModelCache{
		entries:     make(map[string]cacheEntry),
		generations: make(map[string]uint64),
		ttl:         ttl,
		now:         time.Now,
	}
}

// Get returns the cached model for key if it is present and fresh
func (c *ModelCache) Get(key CacheKey) (*Model, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key.UserID]
	c.mu.RUnlock()

	if !ok || entry.key != key || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.model, true
}

// GetOrBuild returns the cached model for key, or calls build and caches its
// result. Concurrent misses for the same key share a single build. The
// second return value reports whether the model came from the cache.
func (c *ModelCache) GetOrBuild(key CacheKey, build func() *Model) (*Model, bool) {
	if model, ok := c.Get(key); ok {
		return model, true
	}

	c.mu.RLock()
	gen := c.generations[key.UserID]
	c.mu.RUnlock()

	flight := fmt.Sprintf("%s|%d", key, gen)
	v, _, _ := c.group.Do(flight, func() (interface{}, error) {
		if model, ok := c.Get(key); ok {
			return model, nil
		}

		model := build()

		c.mu.Lock()
		if c.generations[key.UserID] == gen {
			c.entries[key.UserID] = cacheEntry{
				key:       key,
				model:     model,
				expiresAt: c.now().Add(c.ttl),
			}
		}
		c.mu.Unlock()

		return model, nil
	})

	return v.(*Model), false
}

// Invalidate drops the cached model for a user and discards any build
// still in flight for them
func (c *ModelCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.generations[userID]++
	c.mu.Unlock()
}

// Len returns the number of users with a cached model
func (c *ModelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns how long an entry stays fresh
func (c *ModelCache) TTL() time.Duration {
	return c.ttl
}

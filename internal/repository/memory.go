package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryStateRepository keeps rate limit windows per process. Used as the
// failover target when redis is unavailable.
type MemoryStateRepository struct {
	rateLimits sync.Map
	mu         sync.Mutex
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{}
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}

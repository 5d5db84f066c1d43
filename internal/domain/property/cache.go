package property

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zekroTJA/timedmap"
)

// CachedRepository keeps recently read snapshots for a short TTL.
// Returned snapshots are clones; callers may keep them.
type CachedRepository struct {
	next Repository
	ttl  time.Duration
	m    *timedmap.TimedMap
}

// NewCachedRepository wraps next with a TTL cache
func NewCachedRepository(next Repository, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		next: next,
		ttl:  ttl,
		m:    timedmap.New(time.Minute),
	}
}

// GetSnapshot serves from cache, falling back to next
func (c *CachedRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	if v, ok := c.m.GetValue(id).(*Snapshot); ok {
		return v.Clone(), nil
	}

	s, err := c.next.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	c.m.Set(id, s.Clone(), c.ttl)
	return s, nil
}

// Invalidate drops a cached snapshot
func (c *CachedRepository) Invalidate(id uuid.UUID) {
	c.m.Remove(id)
}

// Close stops the background cleaner
func (c *CachedRepository) Close() {
	c.m.StopCleaner()
}

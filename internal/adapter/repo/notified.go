package repo

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"postpilot/internal/domain"
)

const notifiedKey = "postpilot:notified"

// NotifiedSetRedis persists the due-soon notified set in a redis set so
// notifications survive restarts.
type NotifiedSetRedis struct {
	client *redis.Client
}

// NewNotifiedSetRedis creates a redis-backed notified set.
func NewNotifiedSetRedis(client *redis.Client) *NotifiedSetRedis {
	return &NotifiedSetRedis{client: client}
}

// Contains reports whether the post id already raised a notification.
func (s *NotifiedSetRedis) Contains(ctx context.Context, postID string) (bool, error) {
	return s.client.SIsMember(ctx, notifiedKey, postID).Result()
}

// Add marks the post id as notified.
func (s *NotifiedSetRedis) Add(ctx context.Context, postID string) error {
	return s.client.SAdd(ctx, notifiedKey, postID).Err()
}

// MemoryNotifiedSet is the process-local fallback when redis is not
// configured.
type MemoryNotifiedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryNotifiedSet creates an empty notified set.
func NewMemoryNotifiedSet() *MemoryNotifiedSet {
	return &MemoryNotifiedSet{seen: make(map[string]struct{})}
}

// Contains reports whether the post id already raised a notification.
func (s *MemoryNotifiedSet) Contains(ctx context.Context, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[postID]
	return ok, nil
}

// Add marks the post id as notified.
func (s *MemoryNotifiedSet) Add(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[postID] = struct{}{}
	return nil
}

var _ domain.NotifiedSet = (*NotifiedSetRedis)(nil)
var _ domain.NotifiedSet = (*MemoryNotifiedSet)(nil)

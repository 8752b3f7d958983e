package repo

import (
	"context"
	"sync"

	"postpilot/internal/domain"
)

// MemoryPostRepository is the in-memory fallback used when no database is
// connected. Insertion order is preserved so listings stay deterministic.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts []domain.Post
	index map[string]int
}

// NewMemoryPostRepository creates an empty in-memory repository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{index: make(map[string]int)}
}

// List returns posts matching the filter in insertion order.
func (r *MemoryPostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Post, 0, len(r.posts))
	for _, post := range r.posts {
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		if filter.AvatarID != "" && post.AvatarID != filter.AvatarID {
			continue
		}
		out = append(out, post)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Upsert inserts or replaces a post by id.
func (r *MemoryPostRepository) Upsert(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[post.ID]; ok {
		r.posts[i] = *post
		return post, nil
	}
	r.index[post.ID] = len(r.posts)
	r.posts = append(r.posts, *post)
	return post, nil
}

// Delete removes a post by id.
func (r *MemoryPostRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.posts = append(r.posts[:i], r.posts[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.posts); j++ {
		r.index[r.posts[j].ID] = j
	}
	return nil
}

var _ domain.PostRepository = (*MemoryPostRepository)(nil)
var _ domain.PostRepository = (*PostRepositoryPG)(nil)

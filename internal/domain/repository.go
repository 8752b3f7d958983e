package domain

import (
	"context"
	"time"
)

// PostFilter narrows repository listings. Zero values mean "no constraint".
type PostFilter struct {
	Status   PostStatus
	AvatarID string
	Limit    int
}

// PostRepository defines persistence for posts. Implementations that are not
// backed by a live connection return ErrNotConnected so callers can fall back
// to in-memory operation instead of failing hard.
type PostRepository interface {
	List(ctx context.Context, filter PostFilter) ([]Post, error)
	Upsert(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id string) error
}

// NotifiedSet tracks which post ids have already raised a due-soon
// notification, so a post never re-alerts across notifier cycles.
type NotifiedSet interface {
	Contains(ctx context.Context, postID string) (bool, error)
	Add(ctx context.Context, postID string) error
}

// Notification is raised once per scheduled post entering the look-ahead
// window.
type Notification struct {
	PostID      string    `json:"post_id"`
	Caption     string    `json:"caption"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

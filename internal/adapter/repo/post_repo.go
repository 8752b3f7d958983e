package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"postpilot/internal/domain"
)

// PostRepositoryPG implements domain.PostRepository backed by PostgreSQL.
// A nil pool means no database was configured; every call then reports
// domain.ErrNotConnected so the queue can fall back to in-memory operation.
type PostRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a new post repository.
func NewPostRepository(pool *pgxpool.Pool) *PostRepositoryPG {
	return &PostRepositoryPG{pool: pool}
}

// List returns posts matching the filter, newest first.
func (r *PostRepositoryPG) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	if r.pool == nil {
		return nil, domain.ErrNotConnected
	}
	query := `
SELECT id, avatar_id, caption, hashtags, platforms, content_type, media_url, status, scheduled_at, position, created_at
FROM posts
WHERE ($1 = '' OR status = $1)
  AND ($2 = '' OR avatar_id = $2)
ORDER BY position, created_at
LIMIT CASE WHEN $3 > 0 THEN $3 ELSE NULL END;
`
	rows, err := r.pool.Query(ctx, query, string(filter.Status), filter.AvatarID, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		var platforms []string
		if err := rows.Scan(
			&post.ID,
			&post.AvatarID,
			&post.Caption,
			&post.Hashtags,
			&platforms,
			&post.ContentType,
			&post.MediaURL,
			&post.Status,
			&post.ScheduledAt,
			&post.Position,
			&post.CreatedAt,
		); err != nil {
			return nil, err
		}
		for _, p := range platforms {
			post.Platforms = append(post.Platforms, domain.Platform(p))
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Upsert inserts or replaces a post by id.
func (r *PostRepositoryPG) Upsert(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if r.pool == nil {
		return nil, domain.ErrNotConnected
	}
	query := `
INSERT INTO posts (id, avatar_id, caption, hashtags, platforms, content_type, media_url, status, scheduled_at, position, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE
SET avatar_id = EXCLUDED.avatar_id,
    caption = EXCLUDED.caption,
    hashtags = EXCLUDED.hashtags,
    platforms = EXCLUDED.platforms,
    content_type = EXCLUDED.content_type,
    media_url = EXCLUDED.media_url,
    status = EXCLUDED.status,
    scheduled_at = EXCLUDED.scheduled_at,
    position = EXCLUDED.position,
    updated_at = NOW();
`
	platforms := make([]string, len(post.Platforms))
	for i, p := range post.Platforms {
		platforms[i] = string(p)
	}
	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.AvatarID,
		post.Caption,
		post.Hashtags,
		platforms,
		post.ContentType,
		post.MediaURL,
		post.Status,
		post.ScheduledAt,
		post.Position,
		post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post by id.
func (r *PostRepositoryPG) Delete(ctx context.Context, id string) error {
	if r.pool == nil {
		return domain.ErrNotConnected
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Package queue owns the post publishing lifecycle: status transitions,
// filtered projections, drag-and-drop reordering, CSV import/export and the
// due-soon notifier. Mutations are single-writer; projections are pure
// functions over a snapshot.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"postpilot/internal/domain"
	"postpilot/internal/infra"
)

// Service is the sole authority over post Status and ScheduledAt. When the
// primary repository reports domain.ErrNotConnected the service switches to
// the in-memory fallback instead of failing hard.
type Service struct {
	mu       sync.Mutex
	repo     domain.PostRepository
	fallback domain.PostRepository
	logger   infra.Logger
	now      func() time.Time
	newID    func() string
}

// ServiceOptions wires the queue service.
type ServiceOptions struct {
	Repo     domain.PostRepository
	Fallback domain.PostRepository
	Logger   infra.Logger
	Now      func() time.Time
	NewID    func() string
}

// NewService constructs the queue service.
func NewService(opts ServiceOptions) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Service{
		repo:     opts.Repo,
		fallback: opts.Fallback,
		logger:   opts.Logger,
		now:      now,
		newID:    newID,
	}
}

func (s *Service) list(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	posts, err := s.repo.List(ctx, filter)
	if errors.Is(err, domain.ErrNotConnected) && s.fallback != nil {
		return s.fallback.List(ctx, filter)
	}
	return posts, err
}

func (s *Service) upsert(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	saved, err := s.repo.Upsert(ctx, post)
	if errors.Is(err, domain.ErrNotConnected) && s.fallback != nil {
		s.logger.Warn().Str("post_id", post.ID).Msg("repository not connected, using in-memory store")
		return s.fallback.Upsert(ctx, post)
	}
	return saved, err
}

func (s *Service) delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotConnected) && s.fallback != nil {
		return s.fallback.Delete(ctx, id)
	}
	return err
}

func (s *Service) get(ctx context.Context, id string) (*domain.Post, error) {
	posts, err := s.list(ctx, domain.PostFilter{})
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns the filtered, schedule-sorted view of the queue.
func (s *Service) List(ctx context.Context, opts FilterOptions) ([]domain.Post, error) {
	posts, err := s.list(ctx, domain.PostFilter{})
	if err != nil {
		return nil, err
	}
	return SortBySchedule(Filter(posts, opts)), nil
}

// ListPage returns one page of the filtered listing.
func (s *Service) ListPage(ctx context.Context, opts FilterOptions, page int) (Page, error) {
	posts, err := s.List(ctx, opts)
	if err != nil {
		return Page{}, err
	}
	return Paginate(posts, page, DefaultPageSize), nil
}

// Board returns the kanban projection.
func (s *Service) Board(ctx context.Context, opts FilterOptions) (Board, error) {
	posts, err := s.list(ctx, domain.PostFilter{})
	if err != nil {
		return Board{}, err
	}
	return Kanban(SortBySchedule(posts), opts), nil
}

// Save validates and persists a post. New posts get an id and creation time;
// the scheduled state always requires a concrete time.
func (s *Service) Save(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !domain.ValidStatus(post.Status) {
		return nil, domain.ErrInvalidTransition
	}
	if post.Status == domain.PostStatusScheduled && post.ScheduledAt == nil {
		return nil, domain.ErrInvalidTransition
	}
	if post.ID == "" {
		post.ID = s.newID()
		post.CreatedAt = s.now()
		post.Position = s.nextPosition(ctx)
	}
	return s.upsert(ctx, post)
}

// nextPosition returns a sort key after every existing post. Best effort: on
// a listing failure the post lands at position zero and keeps repo order.
func (s *Service) nextPosition(ctx context.Context) int {
	posts, err := s.list(ctx, domain.PostFilter{})
	if err != nil {
		return 0
	}
	next := 0
	for _, post := range posts {
		if post.Position >= next {
			next = post.Position + 1
		}
	}
	return next
}

// SetStatus moves a post through the lifecycle. Scheduling requires at; other
// transitions ignore it.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.PostStatus, at *time.Time) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(post.Status, status) {
		return nil, domain.ErrInvalidTransition
	}
	if status == domain.PostStatusScheduled {
		if at == nil {
			at = post.ScheduledAt
		}
		if at == nil {
			return nil, domain.ErrInvalidTransition
		}
		post.ScheduledAt = at
	}
	post.Status = status
	return s.upsert(ctx, post)
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, id)
}

// Move applies a drag-and-drop reorder over the current filtered view and
// persists every post the swap touched.
func (s *Service) Move(ctx context.Context, opts FilterOptions, dragID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.list(ctx, domain.PostFilter{})
	if err != nil {
		return err
	}
	view := SortBySchedule(Filter(posts, opts))
	reordered := Reorder(view, dragID, targetID)

	before := make(map[string]domain.Post, len(view))
	for _, post := range view {
		before[post.ID] = post
	}
	for i := range reordered {
		prev := before[reordered[i].ID]
		changed := !equalSchedule(prev.ScheduledAt, reordered[i].ScheduledAt) ||
			prev.Position != reordered[i].Position
		if changed {
			if _, err := s.upsert(ctx, &reordered[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Import parses CSV lines into draft or scheduled posts and persists the good
// ones. Bad lines come back as per-line errors and never abort the batch.
func (s *Service) Import(ctx context.Context, data []byte, avatarID string) ([]domain.Post, []LineError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, lineErrs := ParseCSV(data)
	saved := make([]domain.Post, 0, len(posts))
	for i := range posts {
		posts[i].ID = s.newID()
		posts[i].AvatarID = avatarID
		posts[i].CreatedAt = s.now()
		stored, err := s.upsert(ctx, &posts[i])
		if err != nil {
			return saved, lineErrs, err
		}
		saved = append(saved, *stored)
	}
	return saved, lineErrs, nil
}

// Export renders the filtered view as CSV.
func (s *Service) Export(ctx context.Context, opts FilterOptions) ([]byte, error) {
	posts, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return ExportCSV(posts), nil
}

func equalSchedule(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

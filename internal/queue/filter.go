package queue

import (
	"sort"
	"strings"

	"postpilot/internal/domain"
)

// DefaultPageSize is the list-view page length.
const DefaultPageSize = 10

// TabAll disables the status filter.
const TabAll = "all"

// FilterOptions narrows a queue projection. Zero values mean no constraint.
type FilterOptions struct {
	Tab      string
	AvatarID string
	Search   string
}

// Page is one slice of a paginated listing.
type Page struct {
	Posts      []domain.Post
	Number     int
	TotalPages int
	Total      int
}

// Board is the kanban projection, grouped by lifecycle state. The tab filter
// never applies here; every status column is always populated.
type Board struct {
	Draft     []domain.Post
	Scheduled []domain.Post
	Published []domain.Post
	Errors    []domain.Post
}

// Filter returns the posts matching opts, in input order. Pure function.
func Filter(posts []domain.Post, opts FilterOptions) []domain.Post {
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	out := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if opts.Tab != "" && opts.Tab != TabAll && post.Status != domain.PostStatus(opts.Tab) {
			continue
		}
		if opts.AvatarID != "" && post.AvatarID != opts.AvatarID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(post.Caption), search) {
			continue
		}
		out = append(out, post)
	}
	return out
}

// SortBySchedule orders posts by the manual Position key, then ascending by
// scheduled time. Posts without a timestamp keep their position order; both
// passes are stable.
func SortBySchedule(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	copy(out, posts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ScheduledAt, out[j].ScheduledAt
		if a == nil || b == nil {
			return false
		}
		return a.Before(*b)
	})
	return out
}

// Paginate slices posts into the requested page, 1-based. An out-of-range
// page clamps to the nearest valid one.
func Paginate(posts []domain.Post, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(posts)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	lo := (page - 1) * size
	hi := lo + size
	if hi > total {
		hi = total
	}
	if lo > total {
		lo = total
	}
	return Page{Posts: posts[lo:hi], Number: page, TotalPages: totalPages, Total: total}
}

// Kanban groups posts by status. Avatar and search filters apply; the tab
// filter is deliberately ignored.
func Kanban(posts []domain.Post, opts FilterOptions) Board {
	opts.Tab = TabAll
	var board Board
	for _, post := range Filter(posts, opts) {
		switch post.Status {
		case domain.PostStatusDraft:
			board.Draft = append(board.Draft, post)
		case domain.PostStatusScheduled:
			board.Scheduled = append(board.Scheduled, post)
		case domain.PostStatusPublished:
			board.Published = append(board.Published, post)
		case domain.PostStatusError:
			board.Errors = append(board.Errors, post)
		}
	}
	return board
}

package queue

import "postpilot/internal/domain"

// Reorder applies a drag-and-drop move of dragID onto targetID and returns
// the resulting slice. When both posts carry a scheduled time the two
// timestamps are swapped and positions stay put, since publish time is the
// real ordering key. When either lacks a timestamp the two entries swap
// slice position instead, so a draft never gets a schedule invented for it.
// The position swap also swaps the two posts' Position sort keys so the new
// order survives persistence and a re-list. Unknown ids leave the slice
// unchanged.
func Reorder(posts []domain.Post, dragID, targetID string) []domain.Post {
	out := make([]domain.Post, len(posts))
	copy(out, posts)

	drag, target := -1, -1
	for i := range out {
		switch out[i].ID {
		case dragID:
			drag = i
		case targetID:
			target = i
		}
	}
	if drag < 0 || target < 0 || drag == target {
		return out
	}

	if out[drag].ScheduledAt != nil && out[target].ScheduledAt != nil {
		out[drag].ScheduledAt, out[target].ScheduledAt = out[target].ScheduledAt, out[drag].ScheduledAt
		return out
	}
	out[drag].Position, out[target].Position = out[target].Position, out[drag].Position
	out[drag], out[target] = out[target], out[drag]
	return out
}

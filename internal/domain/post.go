package domain

import "time"

// PostStatus enumerates the publishing lifecycle states.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusError     PostStatus = "error"
)

// ContentType enumerates the media kinds a post can carry.
type ContentType string

const (
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
)

// Platform enumerates publishing targets.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformFacebook  Platform = "facebook"
)

// Platforms lists every supported publishing target in display order.
var Platforms = []Platform{PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformFacebook}

// Post is the unit moved through the publishing queue. The queue service is
// the sole authority over Status and ScheduledAt; generation only ever
// produces initial draft values.
type Post struct {
	ID          string      `json:"id"`
	AvatarID    string      `json:"avatar_id"`
	Caption     string      `json:"caption"`
	Hashtags    string      `json:"hashtags"`
	Platforms   []Platform  `json:"platforms"`
	ContentType ContentType `json:"content_type"`
	MediaURL    string      `json:"media_url"`
	Status      PostStatus  `json:"status"`
	ScheduledAt *time.Time  `json:"scheduled_at"`
	// Position is the manual sort key. Posts without a scheduled time have no
	// natural order, so drag-and-drop persists its effect here.
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Scheduled reports whether the post sits in the scheduled state with a
// concrete publish time. Status == scheduled implies ScheduledAt != nil.
func (p *Post) Scheduled() bool {
	return p.Status == PostStatusScheduled && p.ScheduledAt != nil
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublished, PostStatusError:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a post may move between the two states.
// Draft and scheduled are interchangeable, published is reached only from
// scheduled, and error is reachable from scheduled on a failed publish.
func CanTransition(from, to PostStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case PostStatusDraft:
		return to == PostStatusScheduled
	case PostStatusScheduled:
		return to == PostStatusDraft || to == PostStatusPublished || to == PostStatusError
	case PostStatusError:
		return to == PostStatusDraft || to == PostStatusScheduled
	default:
		return false
	}
}

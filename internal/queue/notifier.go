package queue

import (
	"context"
	"time"

	"postpilot/internal/domain"
	"postpilot/internal/infra"
)

// Notifier raises one due-soon notification per scheduled post entering the
// look-ahead window. The notified set is persisted so a post never re-alerts,
// not even across restarts.
type Notifier struct {
	service   *Service
	notified  domain.NotifiedSet
	lookahead time.Duration
	interval  time.Duration
	logger    infra.Logger
	now       func() time.Time
	notify    func(domain.Notification)
}

// NotifierOptions wires the notifier.
type NotifierOptions struct {
	Service   *Service
	Notified  domain.NotifiedSet
	Lookahead time.Duration
	Interval  time.Duration
	Logger    infra.Logger
	Now       func() time.Time
	// Notify receives each raised notification.
	Notify func(domain.Notification)
}

// NewNotifier constructs a due-soon notifier.
func NewNotifier(opts NotifierOptions) *Notifier {
	lookahead := opts.Lookahead
	if lookahead <= 0 {
		lookahead = 15 * time.Minute
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Notifier{
		service:   opts.Service,
		notified:  opts.Notified,
		lookahead: lookahead,
		interval:  interval,
		logger:    opts.Logger,
		now:       now,
		notify:    opts.Notify,
	}
}

// Sweep runs one scan cycle and returns the notifications it raised. Posts
// already in the notified set are skipped.
func (n *Notifier) Sweep(ctx context.Context) ([]domain.Notification, error) {
	posts, err := n.service.List(ctx, FilterOptions{Tab: string(domain.PostStatusScheduled)})
	if err != nil {
		return nil, err
	}

	now := n.now()
	deadline := now.Add(n.lookahead)
	var raised []domain.Notification
	for _, post := range posts {
		if !post.Scheduled() {
			continue
		}
		at := *post.ScheduledAt
		if at.Before(now) || at.After(deadline) {
			continue
		}
		seen, err := n.notified.Contains(ctx, post.ID)
		if err != nil {
			n.logger.Warn().Err(err).Str("post_id", post.ID).Msg("notified set lookup failed")
			continue
		}
		if seen {
			continue
		}
		if err := n.notified.Add(ctx, post.ID); err != nil {
			n.logger.Warn().Err(err).Str("post_id", post.ID).Msg("notified set add failed")
			continue
		}
		notification := domain.Notification{PostID: post.ID, Caption: post.Caption, ScheduledAt: at}
		raised = append(raised, notification)
		if n.notify != nil {
			n.notify(notification)
		}
	}
	return raised, nil
}

// Run sweeps on the configured interval until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := n.Sweep(ctx); err != nil {
				n.logger.Error().Err(err).Msg("notifier sweep failed")
			}
		}
	}
}

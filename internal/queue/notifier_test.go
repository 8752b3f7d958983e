package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"postpilot/internal/adapter/repo"
	"postpilot/internal/domain"
)

func TestNotifierFiresOncePerPost(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	now := sampleTime(1, 9)
	soon := now.Add(10 * time.Minute)
	far := now.Add(2 * time.Hour)
	past := now.Add(-5 * time.Minute)

	due, _ := svc.Save(ctx, &domain.Post{Caption: "due soon", Status: domain.PostStatusScheduled, ScheduledAt: &soon})
	svc.Save(ctx, &domain.Post{Caption: "way out", Status: domain.PostStatusScheduled, ScheduledAt: &far})
	svc.Save(ctx, &domain.Post{Caption: "already past", Status: domain.PostStatusScheduled, ScheduledAt: &past})
	svc.Save(ctx, &domain.Post{Caption: "draft", Status: domain.PostStatusDraft})

	var fired []domain.Notification
	notifier := NewNotifier(NotifierOptions{
		Service:   svc,
		Notified:  repo.NewMemoryNotifiedSet(),
		Lookahead: 15 * time.Minute,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return now },
		Notify:    func(n domain.Notification) { fired = append(fired, n) },
	})

	raised, err := notifier.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(raised) != 1 || raised[0].PostID != due.ID {
		t.Fatalf("raised = %+v, want exactly the due post", raised)
	}
	if len(fired) != 1 {
		t.Fatalf("callback fired %d times", len(fired))
	}

	// second cycle inside the window must not re-alert
	raised, err = notifier.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep returned error: %v", err)
	}
	if len(raised) != 0 {
		t.Fatalf("second sweep raised %d notifications", len(raised))
	}
}

func TestNotifierPersistedSetSurvivesRestart(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	now := sampleTime(1, 9)
	soon := now.Add(5 * time.Minute)
	svc.Save(ctx, &domain.Post{Caption: "due", Status: domain.PostStatusScheduled, ScheduledAt: &soon})

	notified := repo.NewMemoryNotifiedSet()
	opts := NotifierOptions{
		Service:   svc,
		Notified:  notified,
		Lookahead: 15 * time.Minute,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return now },
	}
	if raised, _ := NewNotifier(opts).Sweep(ctx); len(raised) != 1 {
		t.Fatalf("first notifier raised %d", len(raised))
	}
	// a fresh notifier sharing the same persisted set stays silent
	if raised, _ := NewNotifier(opts).Sweep(ctx); len(raised) != 0 {
		t.Fatalf("restarted notifier raised %d", len(raised))
	}
}

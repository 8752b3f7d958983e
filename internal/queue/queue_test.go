package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"postpilot/internal/adapter/repo"
	"postpilot/internal/domain"
)

func newTestService() *Service {
	ids := 0
	return NewService(ServiceOptions{
		// a nil pool repository reports not-connected on every call,
		// exercising the in-memory fallback path
		Repo:     repo.NewPostRepository(nil),
		Fallback: repo.NewMemoryPostRepository(),
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return sampleTime(1, 9) },
		NewID:    func() string { ids++; return fmt.Sprintf("id-%d", ids) },
	})
}

func TestSaveFallsBackWhenNotConnected(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, &domain.Post{Caption: "hello", Status: domain.PostStatusDraft})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("saved = %+v, want generated id and creation time", saved)
	}

	posts, err := svc.List(ctx, FilterOptions{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(posts) != 1 || posts[0].Caption != "hello" {
		t.Fatalf("posts = %+v", posts)
	}
}

func TestSaveRejectsScheduledWithoutTime(t *testing.T) {
	svc := newTestService()
	_, err := svc.Save(context.Background(), &domain.Post{Caption: "x", Status: domain.PostStatusScheduled})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestSetStatusValidatesTransitions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, &domain.Post{Caption: "x", Status: domain.PostStatusDraft})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	// draft cannot jump straight to published
	if _, err := svc.SetStatus(ctx, saved.ID, domain.PostStatusPublished, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	when := sampleTime(2, 10)
	scheduled, err := svc.SetStatus(ctx, saved.ID, domain.PostStatusScheduled, &when)
	if err != nil {
		t.Fatalf("schedule returned error: %v", err)
	}
	if !scheduled.Scheduled() {
		t.Fatalf("scheduled = %+v", scheduled)
	}

	published, err := svc.SetStatus(ctx, saved.ID, domain.PostStatusPublished, nil)
	if err != nil {
		t.Fatalf("publish returned error: %v", err)
	}
	if published.Status != domain.PostStatusPublished {
		t.Fatalf("status = %q", published.Status)
	}
}

func TestSetStatusSchedulingRequiresTime(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	saved, _ := svc.Save(ctx, &domain.Post{Caption: "x", Status: domain.PostStatusDraft})
	if _, err := svc.SetStatus(ctx, saved.ID, domain.PostStatusScheduled, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestSetStatusUnknownPost(t *testing.T) {
	svc := newTestService()
	if _, err := svc.SetStatus(context.Background(), "missing", domain.PostStatusDraft, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMovePersistsSwappedTimestamps(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	t1, t2 := sampleTime(2, 10), sampleTime(4, 10)
	a, _ := svc.Save(ctx, &domain.Post{Caption: "a", Status: domain.PostStatusScheduled, ScheduledAt: &t1})
	b, _ := svc.Save(ctx, &domain.Post{Caption: "b", Status: domain.PostStatusScheduled, ScheduledAt: &t2})

	if err := svc.Move(ctx, FilterOptions{}, a.ID, b.ID); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}

	posts, _ := svc.List(ctx, FilterOptions{})
	byID := make(map[string]domain.Post)
	for _, post := range posts {
		byID[post.ID] = post
	}
	if !byID[a.ID].ScheduledAt.Equal(t2) || !byID[b.ID].ScheduledAt.Equal(t1) {
		t.Fatalf("timestamps not persisted: a=%v b=%v", byID[a.ID].ScheduledAt, byID[b.ID].ScheduledAt)
	}
}

func TestMovePersistsPositionSwapForDrafts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, _ := svc.Save(ctx, &domain.Post{Caption: "a", Status: domain.PostStatusDraft})
	b, _ := svc.Save(ctx, &domain.Post{Caption: "b", Status: domain.PostStatusDraft})

	if err := svc.Move(ctx, FilterOptions{}, a.ID, b.ID); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}

	// the manual order must survive a fresh listing from the repository
	posts, err := svc.List(ctx, FilterOptions{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != b.ID || posts[1].ID != a.ID {
		got := make([]string, len(posts))
		for i, post := range posts {
			got[i] = post.Caption
		}
		t.Fatalf("order after move = %v, want [b a]", got)
	}
	if posts[0].ScheduledAt != nil || posts[1].ScheduledAt != nil {
		t.Fatal("drafts must stay unscheduled after a position swap")
	}
}

func TestImportPersistsGoodLinesOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	data := "2026-03-01T10:00:00Z,a1,scheduled,instagram,\"one\",\"#a\"\n" +
		"bad-date,a1,scheduled,instagram,\"two\",\"#b\"\n"
	saved, lineErrs, err := svc.Import(ctx, []byte(data), "avatar-9")
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if len(saved) != 1 || len(lineErrs) != 1 {
		t.Fatalf("saved = %d, errs = %+v", len(saved), lineErrs)
	}
	if saved[0].AvatarID != "avatar-9" {
		t.Fatalf("AvatarID = %q", saved[0].AvatarID)
	}
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"postpilot/internal/domain"
	"postpilot/internal/queue"
)

func filterFromQuery(r *http.Request) queue.FilterOptions {
	q := r.URL.Query()
	return queue.FilterOptions{
		Tab:      q.Get("tab"),
		AvatarID: q.Get("avatar_id"),
		Search:   q.Get("search"),
	}
}

func (a *App) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	view, err := a.Queue.ListPage(r.Context(), filterFromQuery(r), page)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"posts":       view.Posts,
		"page":        view.Number,
		"total_pages": view.TotalPages,
		"total":       view.Total,
	})
}

func (a *App) PostsBoard(w http.ResponseWriter, r *http.Request) {
	board, err := a.Queue.Board(r.Context(), filterFromQuery(r))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"draft":     board.Draft,
		"scheduled": board.Scheduled,
		"published": board.Published,
		"errors":    board.Errors,
	})
}

type postPayload struct {
	ID          string     `json:"id"`
	AvatarID    string     `json:"avatar_id"`
	Caption     string     `json:"caption"`
	Hashtags    string     `json:"hashtags"`
	Platforms   []string   `json:"platforms"`
	ContentType string     `json:"content_type"`
	MediaURL    string     `json:"media_url"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (p postPayload) toDomain() *domain.Post {
	platforms := make([]domain.Platform, 0, len(p.Platforms))
	for _, name := range p.Platforms {
		platforms = append(platforms, domain.Platform(name))
	}
	contentType := domain.ContentType(p.ContentType)
	if contentType != domain.ContentTypeVideo {
		contentType = domain.ContentTypeImage
	}
	status := domain.PostStatus(p.Status)
	if status == "" {
		status = domain.PostStatusDraft
	}
	return &domain.Post{
		ID:          p.ID,
		AvatarID:    p.AvatarID,
		Caption:     p.Caption,
		Hashtags:    p.Hashtags,
		Platforms:   platforms,
		ContentType: contentType,
		MediaURL:    p.MediaURL,
		Status:      status,
		ScheduledAt: p.ScheduledAt,
	}
}

func (a *App) SavePost(w http.ResponseWriter, r *http.Request) {
	var req postPayload
	if !a.decode(w, r, &req) {
		return
	}
	if req.Caption == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "caption required")
		return
	}
	saved, err := a.Queue.Save(r.Context(), req.toDomain())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, saved)
}

func (a *App) SetPostStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status      string     `json:"status"`
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	post, err := a.Queue.SetStatus(r.Context(), id, domain.PostStatus(req.Status), req.ScheduledAt)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, post)
}

func (a *App) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := a.Queue.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ReorderPosts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DragID   string `json:"drag_id"`
		TargetID string `json:"target_id"`
		Tab      string `json:"tab"`
		AvatarID string `json:"avatar_id"`
		Search   string `json:"search"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	opts := queue.FilterOptions{Tab: req.Tab, AvatarID: req.AvatarID, Search: req.Search}
	if err := a.Queue.Move(r.Context(), opts, req.DragID, req.TargetID); err != nil {
		a.fail(w, err)
		return
	}
	posts, err := a.Queue.List(r.Context(), opts)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"posts": posts})
}

func (a *App) ImportPosts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AvatarID string `json:"avatar_id"`
		CSV      string `json:"csv"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if req.CSV == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "csv required")
		return
	}
	saved, lineErrs, err := a.Queue.Import(r.Context(), []byte(req.CSV), req.AvatarID)
	if err != nil {
		a.fail(w, err)
		return
	}
	errPayload := make([]map[string]any, 0, len(lineErrs))
	for _, lineErr := range lineErrs {
		errPayload = append(errPayload, map[string]any{"line": lineErr.Line, "reason": lineErr.Reason})
	}
	a.json(w, http.StatusOK, map[string]any{"imported": saved, "errors": errPayload})
}

func (a *App) ExportPosts(w http.ResponseWriter, r *http.Request) {
	data, err := a.Queue.Export(r.Context(), filterFromQuery(r))
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="posts.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

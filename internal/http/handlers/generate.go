package handlers

import (
	"encoding/base64"
	"net/http"
	"time"

	"postpilot/internal/domain"
	"postpilot/internal/generate"
	"postpilot/internal/providers/text"
)

type avatarPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Niche string `json:"niche"`
	Style string `json:"style"`
}

func (p avatarPayload) toDomain() domain.Avatar {
	return domain.Avatar{ID: p.ID, Name: p.Name, Niche: p.Niche, Style: p.Style}
}

type captionRequest struct {
	Avatar     avatarPayload `json:"avatar"`
	Topic      string        `json:"topic"`
	PriorPosts string        `json:"prior_posts"`
	Images     []imageRef    `json:"images"`
}

type imageRef struct {
	MIME   string `json:"mime"`
	Base64 string `json:"base64"`
}

func decodeImageRefs(refs []imageRef) ([]text.InlineImage, bool) {
	images := make([]text.InlineImage, 0, len(refs))
	for _, ref := range refs {
		data, err := base64.StdEncoding.DecodeString(ref.Base64)
		if err != nil {
			return nil, false
		}
		images = append(images, text.InlineImage{MIME: ref.MIME, Data: data})
	}
	return images, true
}

func (a *App) GenerateCaption(w http.ResponseWriter, r *http.Request) {
	var req captionRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Topic == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic required")
		return
	}
	images, ok := decodeImageRefs(req.Images)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid image encoding")
		return
	}
	caption, err := a.Orchestrator.Caption(r.Context(), req.Avatar.toDomain(), req.Topic, req.PriorPosts, images)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"caption": caption})
}

func (a *App) GenerateHashtags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Niche string `json:"niche"`
		Topic string `json:"topic"`
		Count int    `json:"count"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	hashtags, err := a.Orchestrator.Hashtags(r.Context(), req.Niche, req.Topic, req.Count)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"hashtags": hashtags})
}

func (a *App) GenerateHashtagsFromImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Niche string   `json:"niche"`
		Image imageRef `json:"image"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if req.Image.Base64 == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "image required")
		return
	}
	images, ok := decodeImageRefs([]imageRef{req.Image})
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid image encoding")
		return
	}
	hashtags, err := a.Orchestrator.HashtagsFromImage(r.Context(), req.Niche, images[0])
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"hashtags": hashtags})
}

func (a *App) GenerateCaptionsPerPlatform(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar avatarPayload `json:"avatar"`
		Topic  string        `json:"topic"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	captions, err := a.Orchestrator.CaptionsPerPlatform(r.Context(), req.Avatar.toDomain(), req.Topic)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"captions": captions})
}

func (a *App) GenerateVideoIdeas(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar avatarPayload `json:"avatar"`
		Topic  string        `json:"topic"`
		Count  int           `json:"count"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	ideas, err := a.Orchestrator.VideoIdeas(r.Context(), req.Avatar.toDomain(), req.Topic, req.Count)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ideas": ideas})
}

func (a *App) GenerateVideoHook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar avatarPayload `json:"avatar"`
		Title  string        `json:"title"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	hook, err := a.Orchestrator.VideoHook(r.Context(), req.Avatar.toDomain(), req.Title)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"hook": hook})
}

func (a *App) GenerateShortScript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar avatarPayload `json:"avatar"`
		Title  string        `json:"title"`
		Hook   string        `json:"hook"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	script, err := a.Orchestrator.ShortScript(r.Context(), req.Avatar.toDomain(), req.Title, req.Hook)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"script": script})
}

func (a *App) GenerateCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar   avatarPayload `json:"avatar"`
		Topic    string        `json:"topic"`
		Count    int           `json:"count"`
		Start    time.Time     `json:"start"`
		SpanDays float64       `json:"span_days"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if req.Start.IsZero() || req.SpanDays <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "start and span_days required")
		return
	}
	posts, err := a.Orchestrator.CampaignBatch(r.Context(), req.Avatar.toDomain(), generate.CampaignRequest{
		Topic: req.Topic,
		Count: req.Count,
		Start: req.Start,
		Span:  time.Duration(req.SpanDays * 24 * float64(time.Hour)),
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	saved := make([]domain.Post, 0, len(posts))
	for i := range posts {
		stored, err := a.Queue.Save(r.Context(), &posts[i])
		if err != nil {
			a.fail(w, err)
			return
		}
		saved = append(saved, *stored)
	}
	a.json(w, http.StatusCreated, map[string]any{"posts": saved})
}

func (a *App) GenerateVariants(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar avatarPayload `json:"avatar"`
		Topic  string        `json:"topic"`
		Count  int           `json:"count"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	variants, err := a.Orchestrator.Variants(r.Context(), req.Avatar.toDomain(), req.Topic, req.Count)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"variants": variants})
}

func (a *App) GenerateWeeklySummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekStart   time.Time `json:"week_start"`
		Published   int       `json:"published"`
		Scheduled   int       `json:"scheduled"`
		Drafts      int       `json:"drafts"`
		Failed      int       `json:"failed"`
		TopCaptions []string  `json:"top_captions"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	summary, err := a.Orchestrator.WeeklySummary(r.Context(), generate.WeekStats{
		WeekStart:   req.WeekStart,
		Published:   req.Published,
		Scheduled:   req.Scheduled,
		Drafts:      req.Drafts,
		Failed:      req.Failed,
		TopCaptions: req.TopCaptions,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"summary": summary})
}

func (a *App) GenerateAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar avatarPayload `json:"avatar"`
		Topic  string        `json:"topic"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	bundle, err := a.Orchestrator.GenerateAll(r.Context(), req.Avatar.toDomain(), req.Topic)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"caption":      bundle.Caption,
		"hashtags":     bundle.Hashtags,
		"image_prompt": bundle.ImagePrompt,
	})
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspect_ratio"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	asset, err := a.Orchestrator.Image(r.Context(), req.Prompt, req.AspectRatio)
	if err != nil {
		a.fail(w, err)
		return
	}
	var url string
	if asset.External {
		url, err = a.Rehoster.Rehost(r.Context(), asset.URL)
	} else {
		url, err = a.Rehoster.RehostBytes(r.Context(), asset.Data, asset.MIME)
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": url})
}

func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspect_ratio"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	remote, err := a.Orchestrator.Video(r.Context(), req.Prompt, req.AspectRatio, func(attempt, total int) {
		a.Logger.Debug().Int("attempt", attempt).Int("total", total).Msg("video poll")
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	url, err := a.Rehoster.Rehost(r.Context(), remote)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": url})
}

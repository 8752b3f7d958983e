// Package generate composes the provider gateways and the response parser
// into the named operations the product exposes. The layer is pure
// composition: it returns draft-post-shaped data and persists nothing.
package generate

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"postpilot/internal/domain"
	"postpilot/internal/parse"
	"postpilot/internal/providers/image"
	"postpilot/internal/providers/text"
	"postpilot/internal/providers/video"
)

const (
	defaultTemperature  = 0.8
	creativeTemperature = 0.95
)

// Idea is one entry of a video idea listing.
type Idea struct {
	Title       string `json:"title"`
	Hook        string `json:"hook"`
	Description string `json:"description"`
}

// Script is a structured short-video script.
type Script struct {
	Hook            string   `json:"hook"`
	Context         string   `json:"context"`
	Points          []string `json:"points"`
	CTA             string   `json:"cta"`
	ProductionNotes string   `json:"productionNotes"`
}

// CampaignRequest asks for a batch of posts spread over a date span.
type CampaignRequest struct {
	Topic string
	Count int
	Start time.Time
	Span  time.Duration
}

// Bundle is the result of a concurrent caption + hashtags + image prompt run.
type Bundle struct {
	Caption     string
	Hashtags    string
	ImagePrompt string
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Text     text.Generator
	Images   image.Generator
	Videos   video.Submitter
	Poller   *video.Poller
	PollOpts video.PollOptions
	Now      func() time.Time
	NewID    func() string
}

// Orchestrator exposes the generation operations.
type Orchestrator struct {
	text     text.Generator
	images   image.Generator
	videos   video.Submitter
	poller   *video.Poller
	pollOpts video.PollOptions
	now      func() time.Time
	newID    func() string
}

// New constructs an orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Orchestrator{
		text:     opts.Text,
		images:   opts.Images,
		videos:   opts.Videos,
		poller:   opts.Poller,
		pollOpts: opts.PollOpts,
		now:      now,
		newID:    newID,
	}
}

// Caption writes a single caption. Reference images switch the request to the
// vision path.
func (o *Orchestrator) Caption(ctx context.Context, avatar domain.Avatar, topic, priorPosts string, refs []text.InlineImage) (string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      captionPrompt(avatar, topic, priorPosts),
		Temperature: defaultTemperature,
		Images:      refs,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Hashtags generates count hashtags for a topic within a niche.
func (o *Orchestrator) Hashtags(ctx context.Context, niche, topic string, count int) (string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      hashtagsPrompt(niche, topic, count),
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HashtagsFromImage generates hashtags by describing an uploaded image.
func (o *Orchestrator) HashtagsFromImage(ctx context.Context, niche string, img text.InlineImage) (string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt: hashtagsFromImagePrompt(niche),
		Images: []text.InlineImage{img},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ImagePrompt writes an image generation prompt for the avatar and topic.
func (o *Orchestrator) ImagePrompt(ctx context.Context, avatar domain.Avatar, topic string) (string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      imagePromptPrompt(avatar, topic),
		Temperature: creativeTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// VideoPrompt writes a video generation prompt for the avatar and topic.
func (o *Orchestrator) VideoPrompt(ctx context.Context, avatar domain.Avatar, topic string) (string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      videoPromptPrompt(avatar, topic),
		Temperature: creativeTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CaptionsPerPlatform writes one caption per platform. Tolerant parse: when
// the provider answers with plain prose, every platform receives the raw text.
func (o *Orchestrator) CaptionsPerPlatform(ctx context.Context, avatar domain.Avatar, topic string) (map[domain.Platform]string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      captionsPerPlatformPrompt(avatar, topic),
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(domain.Platforms))
	for i, p := range domain.Platforms {
		keys[i] = string(p)
	}
	parsed := parse.ObjectOrFallback(strings.TrimSpace(out), keys...)
	captions := make(map[domain.Platform]string, len(parsed))
	for key, value := range parsed {
		captions[domain.Platform(key)] = value
	}
	return captions, nil
}

// VideoIdeas lists count short-form video ideas. Strict parse.
func (o *Orchestrator) VideoIdeas(ctx context.Context, avatar domain.Avatar, topic string, count int) ([]Idea, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      videoIdeasPrompt(avatar, topic, count),
		Temperature: creativeTemperature,
	})
	if err != nil {
		return nil, err
	}
	items, err := parse.Array(out)
	if err != nil {
		return nil, err
	}
	ideas := make([]Idea, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ideas = append(ideas, Idea{
			Title:       stringField(obj, "title"),
			Hook:        stringField(obj, "hook"),
			Description: stringField(obj, "description"),
		})
	}
	return ideas, nil
}

// VideoHook writes an opening hook for a video idea.
func (o *Orchestrator) VideoHook(ctx context.Context, avatar domain.Avatar, ideaTitle string) (string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      videoHookPrompt(avatar, ideaTitle),
		Temperature: creativeTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ShortScript writes a structured short-video script. Strict parse.
func (o *Orchestrator) ShortScript(ctx context.Context, avatar domain.Avatar, ideaTitle, hook string) (*Script, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      shortScriptPrompt(avatar, ideaTitle, hook),
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, err
	}
	var script Script
	if err := parse.Decode(out, &script); err != nil {
		return nil, err
	}
	return &script, nil
}

// CampaignBatch generates req.Count draft posts and assigns each a publish
// timestamp by evenly dividing the requested span, first item at the start
// instant. The scheduling arithmetic, not content quality, is the contract.
func (o *Orchestrator) CampaignBatch(ctx context.Context, avatar domain.Avatar, req CampaignRequest) ([]domain.Post, error) {
	count := req.Count
	if count <= 0 {
		count = 5
	}
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      campaignBatchPrompt(avatar, req.Topic, count),
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Posts []struct {
			Caption     string `json:"caption"`
			Hashtags    string `json:"hashtags"`
			ContentType string `json:"contentType"`
		} `json:"posts"`
	}
	if err := parse.Decode(out, &payload); err != nil {
		return nil, err
	}

	step := req.Span / time.Duration(count)
	posts := make([]domain.Post, 0, len(payload.Posts))
	for i, item := range payload.Posts {
		contentType := domain.ContentType(item.ContentType)
		if contentType != domain.ContentTypeVideo {
			contentType = domain.ContentTypeImage
		}
		scheduledAt := req.Start.Add(time.Duration(i) * step)
		posts = append(posts, domain.Post{
			ID:          o.newID(),
			AvatarID:    avatar.ID,
			Caption:     item.Caption,
			Hashtags:    item.Hashtags,
			ContentType: contentType,
			Status:      domain.PostStatusDraft,
			ScheduledAt: &scheduledAt,
			CreatedAt:   o.now(),
		})
	}
	return posts, nil
}

// Variants writes count alternative captions for the same topic. Strict parse.
func (o *Orchestrator) Variants(ctx context.Context, avatar domain.Avatar, topic string, count int) ([]string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      variantsPrompt(avatar, topic, count),
		Temperature: creativeTemperature,
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Variants []string `json:"variants"`
	}
	if err := parse.Decode(out, &payload); err != nil {
		return nil, err
	}
	return payload.Variants, nil
}

// WeeklySummary narrates a week of publishing activity.
func (o *Orchestrator) WeeklySummary(ctx context.Context, stats WeekStats) (string, error) {
	out, err := o.text.GenerateText(ctx, text.Request{
		Prompt:      weeklySummaryPrompt(stats),
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GenerateAll runs caption, hashtags and image prompt as independent
// concurrent requests. First error cancels the rest.
func (o *Orchestrator) GenerateAll(ctx context.Context, avatar domain.Avatar, topic string) (*Bundle, error) {
	var bundle Bundle
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		caption, err := o.Caption(ctx, avatar, topic, "", nil)
		bundle.Caption = caption
		return err
	})
	g.Go(func() error {
		hashtags, err := o.Hashtags(ctx, avatar.Niche, topic, 10)
		bundle.Hashtags = hashtags
		return err
	})
	g.Go(func() error {
		prompt, err := o.ImagePrompt(ctx, avatar, topic)
		bundle.ImagePrompt = prompt
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// Image generates a single image through the configured gateway.
func (o *Orchestrator) Image(ctx context.Context, prompt, aspectRatio string) (*image.Asset, error) {
	return o.images.Generate(ctx, image.Request{Prompt: prompt, AspectRatio: aspectRatio})
}

// Video submits a generation job and drives it to completion, returning the
// result video URL.
func (o *Orchestrator) Video(ctx context.Context, prompt, aspectRatio string, onProgress func(attempt, total int)) (string, error) {
	job, err := o.videos.Submit(ctx, video.Request{Prompt: prompt, AspectRatio: aspectRatio})
	if err != nil {
		return "", err
	}
	opts := o.pollOpts
	opts.OnProgress = onProgress
	return o.poller.Poll(ctx, job, opts)
}

func stringField(obj map[string]any, key string) string {
	v, _ := obj[key].(string)
	return strings.TrimSpace(v)
}

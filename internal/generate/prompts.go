package generate

import (
	"fmt"
	"strings"
	"time"

	"postpilot/internal/domain"
)

// maxContextChars caps optional free-form context interpolated into prompts
// so a long history never blows the provider's input budget.
const maxContextChars = 1200

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func persona(avatar domain.Avatar) string {
	var b strings.Builder
	b.WriteString("You write content for ")
	if avatar.Name != "" {
		b.WriteString(avatar.Name)
	} else {
		b.WriteString("a social media creator")
	}
	if avatar.Niche != "" {
		b.WriteString(", a creator in the ")
		b.WriteString(avatar.Niche)
		b.WriteString(" niche")
	}
	if avatar.Style != "" {
		b.WriteString(", with a ")
		b.WriteString(avatar.Style)
		b.WriteString(" tone")
	}
	b.WriteString(".")
	return b.String()
}

func captionPrompt(avatar domain.Avatar, topic, context string) string {
	var b strings.Builder
	b.WriteString(persona(avatar))
	b.WriteString(" Write one engaging social media caption about: ")
	b.WriteString(topic)
	b.WriteString(". Keep it under 200 characters, no hashtags, no quotes around the text.")
	if context != "" {
		b.WriteString(" For reference, recent posts:\n")
		b.WriteString(truncate(context, maxContextChars))
	}
	return b.String()
}

func hashtagsPrompt(niche, topic string, count int) string {
	if count <= 0 {
		count = 10
	}
	return fmt.Sprintf(
		"Generate %d relevant hashtags for a %s post about: %s. Answer with the hashtags only, space separated, each starting with #.",
		count, niche, topic)
}

func hashtagsFromImagePrompt(niche string) string {
	return fmt.Sprintf(
		"Look at this image and generate 10 relevant hashtags for a %s social media post of it. Answer with the hashtags only, space separated, each starting with #.",
		niche)
}

func imagePromptPrompt(avatar domain.Avatar, topic string) string {
	var b strings.Builder
	b.WriteString(persona(avatar))
	b.WriteString(" Write a detailed English image generation prompt for a photo about: ")
	b.WriteString(topic)
	b.WriteString(". Describe subject, setting, lighting and mood in one paragraph. Answer with the prompt only.")
	return b.String()
}

func videoPromptPrompt(avatar domain.Avatar, topic string) string {
	var b strings.Builder
	b.WriteString(persona(avatar))
	b.WriteString(" Write a short English video generation prompt for a clip about: ")
	b.WriteString(topic)
	b.WriteString(". Describe the scene and camera movement in two sentences. Answer with the prompt only.")
	return b.String()
}

func captionsPerPlatformPrompt(avatar domain.Avatar, topic string) string {
	var b strings.Builder
	b.WriteString(persona(avatar))
	b.WriteString(" Write one caption about \"")
	b.WriteString(topic)
	b.WriteString("\" adapted to each platform. Answer ONLY with a JSON object of the form ")
	b.WriteString(`{"instagram":"...","tiktok":"...","youtube":"...","facebook":"..."}.`)
	return b.String()
}

func videoIdeasPrompt(avatar domain.Avatar, topic string, count int) string {
	if count <= 0 {
		count = 5
	}
	var b strings.Builder
	b.WriteString(persona(avatar))
	fmt.Fprintf(&b, " Suggest %d short-form video ideas about: %s.", count, topic)
	b.WriteString(` Answer ONLY with a JSON array of the form [{"title":"...","hook":"...","description":"..."}].`)
	return b.String()
}

func videoHookPrompt(avatar domain.Avatar, ideaTitle string) string {
	var b strings.Builder
	b.WriteString(persona(avatar))
	b.WriteString(" Write one attention-grabbing opening hook, maximum 15 words, for a short video titled: ")
	b.WriteString(ideaTitle)
	b.WriteString(". Answer with the hook only.")
	return b.String()
}

func shortScriptPrompt(avatar domain.Avatar, ideaTitle, hook string) string {
	var b strings.Builder
	b.WriteString(persona(avatar))
	fmt.Fprintf(&b, " Write a 30 to 60 second short video script titled %q.", ideaTitle)
	if hook != "" {
		fmt.Fprintf(&b, " Open with this hook: %q.", hook)
	}
	b.WriteString(` Answer ONLY with a JSON object of the form {"hook":"...","context":"...","points":["..."],"cta":"...","productionNotes":"..."}.`)
	return b.String()
}

func campaignBatchPrompt(avatar domain.Avatar, topic string, count int) string {
	var b strings.Builder
	b.WriteString(persona(avatar))
	fmt.Fprintf(&b, " Plan a campaign of %d posts about: %s.", count, topic)
	b.WriteString(` Answer ONLY with a JSON object of the form {"posts":[{"caption":"...","hashtags":"#a #b","contentType":"image"}]}, contentType being "image" or "video".`)
	return b.String()
}

func variantsPrompt(avatar domain.Avatar, topic string, count int) string {
	if count <= 0 {
		count = 3
	}
	var b strings.Builder
	b.WriteString(persona(avatar))
	fmt.Fprintf(&b, " Write %d distinct caption variants about: %s.", count, topic)
	b.WriteString(` Answer ONLY with a JSON object of the form {"variants":["...","..."]}.`)
	return b.String()
}

func weeklySummaryPrompt(stats WeekStats) string {
	var b strings.Builder
	b.WriteString("Summarize this creator's publishing week in 3 short sentences, friendly and concrete.\n")
	fmt.Fprintf(&b, "Week of %s. Published: %d. Scheduled: %d. Drafts: %d. Failed: %d.\n",
		stats.WeekStart.Format("2006-01-02"), stats.Published, stats.Scheduled, stats.Drafts, stats.Failed)
	if len(stats.TopCaptions) > 0 {
		b.WriteString("Top posts:\n")
		b.WriteString(truncate(strings.Join(stats.TopCaptions, "\n"), maxContextChars))
	}
	return b.String()
}

// WeekStats feeds the weekly summary operation.
type WeekStats struct {
	WeekStart   time.Time
	Published   int
	Scheduled   int
	Drafts      int
	Failed      int
	TopCaptions []string
}

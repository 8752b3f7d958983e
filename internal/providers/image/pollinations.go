package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postpilot/internal/domain"
)

const pollinationsDefaultTimeout = 60 * time.Second

// PollinationsOptions controls how the Pollinations client is configured.
type PollinationsOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Seed       func() int64
}

// PollinationsGenerator calls Pollinations.ai, the keyless backend. The image
// is fetched directly, so the asset comes back as inline bytes rather than a
// remote URL.
type PollinationsGenerator struct {
	baseURL string
	client  *http.Client
	seed    func() int64
}

// NewPollinationsGenerator constructs a Pollinations image client.
func NewPollinationsGenerator(opts PollinationsOptions) *PollinationsGenerator {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://image.pollinations.ai"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: pollinationsDefaultTimeout}
	}
	seed := opts.Seed
	if seed == nil {
		seed = func() int64 { return time.Now().UnixNano() }
	}
	return &PollinationsGenerator{baseURL: baseURL, client: client, seed: seed}
}

// Generate fetches a freshly generated image as inline bytes.
func (p *PollinationsGenerator) Generate(ctx context.Context, req Request) (*Asset, error) {
	size := PollinationsSize(req.AspectRatio)
	endpoint := fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&nologo=true&seed=%d",
		p.baseURL, url.PathEscape(req.Prompt), size.Width, size.Height, p.seed())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pollinations: create request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pollinations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, &domain.ProviderError{Status: resp.StatusCode, Message: "pollinations request failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pollinations: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, &domain.GenerationError{Reason: "no image returned"}
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return &Asset{External: false, MIME: mime, Data: data}, nil
}

var _ Generator = (*PollinationsGenerator)(nil)

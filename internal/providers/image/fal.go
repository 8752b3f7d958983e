package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"postpilot/internal/domain"
)

const falDefaultTimeout = 60 * time.Second

// FalOptions controls how the fal.ai FLUX client is configured.
type FalOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// FalGenerator calls fal.ai's synchronous FLUX.1 schnell endpoint and returns
// the hosted URL of the generated image.
type FalGenerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type falImageRequest struct {
	Prompt    string `json:"prompt"`
	ImageSize string `json:"image_size"`
	NumImages int    `json:"num_images"`
}

type falImageResponse struct {
	Images []struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
	} `json:"images"`
}

type falErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// NewFalGenerator constructs a fal.ai image client.
func NewFalGenerator(opts FalOptions) *FalGenerator {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://fal.run"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: falDefaultTimeout}
	}
	return &FalGenerator{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		client:  client,
	}
}

// HasCredentials reports whether a premium key is configured. The gateway
// uses this as the backend capability check.
func (f *FalGenerator) HasCredentials() bool {
	return f != nil && f.apiKey != ""
}

// Generate performs a single synchronous generation round trip.
func (f *FalGenerator) Generate(ctx context.Context, req Request) (*Asset, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("fal: %w", domain.ErrMissingCredential)
	}

	payload := falImageRequest{
		Prompt:    req.Prompt,
		ImageSize: FalSize(req.AspectRatio),
		NumImages: 1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fal: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/fal-ai/flux/schnell", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fal: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+f.apiKey)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr falErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		message := apiErr.Detail
		if message == "" {
			message = apiErr.Message
		}
		return nil, &domain.ProviderError{Status: resp.StatusCode, Message: message}
	}

	var out falImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("fal: decode response: %w", err)
	}
	if len(out.Images) == 0 || out.Images[0].URL == "" {
		return nil, &domain.GenerationError{Reason: "no image returned"}
	}
	mime := out.Images[0].ContentType
	if mime == "" {
		mime = "image/jpeg"
	}
	return &Asset{URL: out.Images[0].URL, External: true, MIME: mime}, nil
}

var _ Generator = (*FalGenerator)(nil)

package video

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

const falDefaultTimeout = 30 * time.Second

// FalOptions controls how the fal.ai queue client is configured.
type FalOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// FalSubmitter enqueues jobs on fal.ai's async queue.
type FalSubmitter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type falQueueRequest struct {
	Input falQueueInput `json:"input"`
}

type falQueueInput struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type falQueueResponse struct {
	RequestID string `json:"request_id"`
	StatusURL string `json:"status_url"`
}

type falErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// falStatusResponse is the shape of a queue status poll. Completed payloads
// have carried the result URL in several places across model versions, so all
// known locations are checked in order.
type falStatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Output struct {
		Video struct {
			URL string `json:"url"`
		} `json:"video"`
		Videos []struct {
			URL string `json:"url"`
		} `json:"videos"`
		VideoURL string `json:"video_url"`
	} `json:"output"`
}

func (s *falStatusResponse) videoURL() string {
	if s.Output.Video.URL != "" {
		return s.Output.Video.URL
	}
	if len(s.Output.Videos) > 0 && s.Output.Videos[0].URL != "" {
		return s.Output.Videos[0].URL
	}
	return s.Output.VideoURL
}

// NewFalSubmitter constructs a fal.ai queue client.
func NewFalSubmitter(opts FalOptions) *FalSubmitter {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://queue.fal.run"
	}
	model := strings.Trim(opts.Model, "/")
	if model == "" {
		model = "fal-ai/ltx-video"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: falDefaultTimeout}
	}
	return &FalSubmitter{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		model:   model,
		client:  client,
	}
}

// Submit enqueues a generation request and returns the accepted job.
func (f *FalSubmitter) Submit(ctx context.Context, req Request) (*Job, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("fal queue: %w", domain.ErrMissingCredential)
	}

	body, err := json.Marshal(falQueueRequest{Input: falQueueInput{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
	}})
	if err != nil {
		return nil, fmt.Errorf("fal queue: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/"+f.model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fal queue: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+f.apiKey)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fal queue: %w", err)
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

	var out falQueueResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("fal queue: decode response: %w", err)
	}
	if out.RequestID == "" {
		return nil, &domain.GenerationError{Reason: "invalid queue response"}
	}
	statusURL := out.StatusURL
	if statusURL == "" {
		statusURL = fmt.Sprintf("%s/%s/requests/%s/status", f.baseURL, f.model, out.RequestID)
	}
	return &Job{
		ID:        out.RequestID,
		StatusURL: statusURL,
		State:     StateQueued,
		CreatedAt: time.Now(),
	}, nil
}

var _ Submitter = (*FalSubmitter)(nil)

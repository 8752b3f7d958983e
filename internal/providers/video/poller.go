package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"postpilot/internal/domain"
	"postpilot/internal/infra"
)

// PollOptions tunes the status polling loop.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
	// OnProgress is invoked once per attempt before the status request. It is
	// caller-side feedback only and never affects control flow.
	OnProgress func(attempt, total int)
}

// Poller watches queued jobs until they reach a terminal state.
type Poller struct {
	apiKey string
	client *http.Client
	logger infra.Logger
}

// NewPoller constructs a status poller sharing the queue credential.
func NewPoller(apiKey string, client *http.Client, logger infra.Logger) *Poller {
	if client == nil {
		client = &http.Client{Timeout: falDefaultTimeout}
	}
	return &Poller{apiKey: strings.TrimSpace(apiKey), client: client, logger: logger}
}

// Poll blocks until the job completes, fails, or the attempt budget is
// exhausted. Transient transport and status errors are skipped; the attempt
// budget is the hard bound on the loop. On success the result video URL is
// returned.
func (p *Poller) Poll(ctx context.Context, job *Job, opts PollOptions) (string, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = 6 * time.Second
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 100
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
		timer.Reset(interval)

		job.Attempts = attempt
		if opts.OnProgress != nil {
			opts.OnProgress(attempt, maxAttempts)
		}

		status, err := p.fetchStatus(ctx, job.StatusURL)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			p.logger.Warn().Err(err).Str("job_id", job.ID).Int("attempt", attempt).Msg("status poll failed")
			continue
		}

		switch status.Status {
		case "COMPLETED":
			job.State = StateCompleted
			url := status.videoURL()
			if url == "" {
				return "", &domain.GenerationError{Reason: "no video url in completed response"}
			}
			return url, nil
		case "FAILED":
			job.State = StateFailed
			reason := status.Error
			if reason == "" {
				reason = "generation failed"
			}
			return "", &domain.GenerationError{Reason: reason}
		case "IN_PROGRESS":
			job.State = StateRunning
		}
	}

	job.State = StateTimedOut
	return "", fmt.Errorf("job %s: %w", job.ID, domain.ErrPollTimeout)
}

func (p *Poller) fetchStatus(ctx context.Context, statusURL string) (*falStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Key "+p.apiKey)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var out falStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

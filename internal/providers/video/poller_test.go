package video

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"postpilot/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestPoller(transport roundTripFunc) *Poller {
	return NewPoller("key", &http.Client{Transport: transport}, zerolog.Nop())
}

func fastOpts() PollOptions {
	return PollOptions{Interval: time.Millisecond, MaxAttempts: 5}
}

func TestSubmitReturnsAcceptedJob(t *testing.T) {
	sub := NewFalSubmitter(FalOptions{
		APIKey: "key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.Header.Get("Authorization"); got != "Key key" {
				t.Fatalf("Authorization = %q", got)
			}
			var req falQueueRequest
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &req); err != nil {
				t.Fatalf("unmarshal request: %v", err)
			}
			if req.Input.Prompt != "a wave" || req.Input.AspectRatio != "9:16" {
				t.Fatalf("input = %+v", req.Input)
			}
			return jsonResponse(200, `{"request_id":"abc","status_url":"https://queue.fal.run/m/requests/abc/status"}`), nil
		})},
	})
	job, err := sub.Submit(context.Background(), Request{Prompt: "a wave", AspectRatio: "9:16"})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if job.ID != "abc" || job.State != StateQueued {
		t.Fatalf("job = %+v", job)
	}
}

func TestSubmitRejectsMissingRequestID(t *testing.T) {
	sub := NewFalSubmitter(FalOptions{
		APIKey: "key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{}`), nil
		})},
	})
	_, err := sub.Submit(context.Background(), Request{Prompt: "x"})
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *domain.GenerationError", err)
	}
}

func TestPollResultURLPriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "video object wins",
			body: `{"status":"COMPLETED","output":{"video":{"url":"https://v/1.mp4"},"videos":[{"url":"https://v/2.mp4"}],"video_url":"https://v/3.mp4"}}`,
			want: "https://v/1.mp4",
		},
		{
			name: "videos array next",
			body: `{"status":"COMPLETED","output":{"videos":[{"url":"https://v/2.mp4"}],"video_url":"https://v/3.mp4"}}`,
			want: "https://v/2.mp4",
		},
		{
			name: "flat field last",
			body: `{"status":"COMPLETED","output":{"video_url":"https://v/3.mp4"}}`,
			want: "https://v/3.mp4",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPoller(func(r *http.Request) (*http.Response, error) {
				return jsonResponse(200, tc.body), nil
			})
			url, err := p.Poll(context.Background(), &Job{ID: "j", StatusURL: "https://q/status"}, fastOpts())
			if err != nil {
				t.Fatalf("Poll returned error: %v", err)
			}
			if url != tc.want {
				t.Fatalf("url = %q, want %q", url, tc.want)
			}
		})
	}
}

func TestPollCompletedWithoutURLFails(t *testing.T) {
	p := newTestPoller(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":"COMPLETED","output":{}}`), nil
	})
	job := &Job{ID: "j", StatusURL: "https://q/status"}
	_, err := p.Poll(context.Background(), job, fastOpts())
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *domain.GenerationError", err)
	}
}

func TestPollFailedStatusIsTerminal(t *testing.T) {
	calls := 0
	p := newTestPoller(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(200, `{"status":"FAILED","error":"nsfw content rejected"}`), nil
	})
	job := &Job{ID: "j", StatusURL: "https://q/status"}
	_, err := p.Poll(context.Background(), job, fastOpts())
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *domain.GenerationError", err)
	}
	if genErr.Reason != "nsfw content rejected" {
		t.Fatalf("reason = %q, want the provider's message", genErr.Reason)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if job.State != StateFailed {
		t.Fatalf("state = %q", job.State)
	}
}

func TestPollFailedWithoutMessageGetsGenericReason(t *testing.T) {
	p := newTestPoller(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":"FAILED"}`), nil
	})
	_, err := p.Poll(context.Background(), &Job{ID: "j", StatusURL: "https://q/status"}, fastOpts())
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *domain.GenerationError", err)
	}
	if genErr.Reason != "generation failed" {
		t.Fatalf("reason = %q", genErr.Reason)
	}
}

func TestPollSkipsTransientErrors(t *testing.T) {
	calls := 0
	p := newTestPoller(func(r *http.Request) (*http.Response, error) {
		calls++
		switch calls {
		case 1:
			return nil, errors.New("connection reset")
		case 2:
			return jsonResponse(503, `{}`), nil
		default:
			return jsonResponse(200, `{"status":"COMPLETED","output":{"video_url":"https://v/ok.mp4"}}`), nil
		}
	})
	url, err := p.Poll(context.Background(), &Job{ID: "j", StatusURL: "https://q/status"}, fastOpts())
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if url != "https://v/ok.mp4" || calls != 3 {
		t.Fatalf("url = %q calls = %d", url, calls)
	}
}

func TestPollExhaustsAttemptBudget(t *testing.T) {
	progress := 0
	p := newTestPoller(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":"IN_PROGRESS"}`), nil
	})
	job := &Job{ID: "j", StatusURL: "https://q/status"}
	opts := fastOpts()
	opts.OnProgress = func(attempt, total int) { progress++ }
	_, err := p.Poll(context.Background(), job, opts)
	if !errors.Is(err, domain.ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if progress != opts.MaxAttempts {
		t.Fatalf("progress = %d, want %d", progress, opts.MaxAttempts)
	}
	if job.State != StateTimedOut {
		t.Fatalf("state = %q", job.State)
	}
}

func TestPollStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newTestPoller(func(r *http.Request) (*http.Response, error) {
		cancel()
		return jsonResponse(200, `{"status":"IN_PROGRESS"}`), nil
	})
	_, err := p.Poll(ctx, &Job{ID: "j", StatusURL: "https://q/status"}, PollOptions{Interval: time.Millisecond, MaxAttempts: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// Package video exposes the asynchronous video generation pipeline. A
// submission enqueues work on the provider's queue and returns a Job; the
// Poller then watches the job's status URL until a terminal state.
package video

import (
	"context"
	"time"
)

// State is the lifecycle position of a queued generation job.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Request describes a single video generation call.
type Request struct {
	Prompt      string
	AspectRatio string
}

// Job is a generation request accepted by the provider's queue.
type Job struct {
	ID        string
	StatusURL string
	State     State
	Attempts  int
	CreatedAt time.Time
}

// Submitter enqueues a generation request.
type Submitter interface {
	Submit(ctx context.Context, req Request) (*Job, error)
}

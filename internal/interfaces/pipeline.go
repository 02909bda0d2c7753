package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/mediascope/internal/models"
)

// RunState tracks an analysis run through the worker pool
type RunState string

const (
	RunStateQueued    RunState = "queued"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// RunStatus is a snapshot of one analysis run
type RunStatus struct {
	MediaID    string     `json:"media_id"`
	State      RunState   `json:"state"`
	Stage      string     `json:"stage,omitempty"`
	Progress   int        `json:"progress"`
	Error      string     `json:"error,omitempty"`
	QueuedAt   time.Time  `json:"queued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// PipelineService routes media items to their analysis pipeline and runs
// them on a bounded worker pool
type PipelineService interface {
	// Submit enqueues an analysis run. Returns an error when the queue is
	// full or the media type has no pipeline.
	Submit(ctx context.Context, media *models.Media) error

	// Run executes an analysis synchronously, bypassing the queue
	Run(ctx context.Context, media *models.Media) error

	// Status returns the run snapshot for a media item
	Status(mediaID string) (*RunStatus, bool)

	// ActiveRuns counts runs that are queued or currently executing
	ActiveRuns() int
}

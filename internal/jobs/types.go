// Package jobs defines the background ingestion job model and the queue
// abstractions used to run document parsing off the request path.
package jobs

import (
	"context"
	"time"

	"github.com/brfin/caixa-api/internal/ingest"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// IngestJob is one uploaded document awaiting extraction and persistence.
// The uploaded payload sits in a temp file owned by the job until the
// handler finishes with it.
type IngestJob struct {
	JobID string `json:"job_id"`

	// Kind selects the extraction strategy; resolved once at upload time.
	Kind ingest.DocumentKind `json:"kind"`

	// Filename is the original upload name, kept on every emitted record.
	Filename string `json:"filename"`

	// Path is the temp file holding the uploaded bytes.
	Path string `json:"path"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

// Publisher defines the interface for publishing jobs to a queue.
// The abstraction allows swapping the in-memory queue for a broker later.
type Publisher interface {
	// PublishIngest publishes a document ingestion job.
	PublishIngest(ctx context.Context, job *IngestJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs; the handler is called for each job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job failed and
// eligible for retry.
type JobHandler func(ctx context.Context, job *IngestJob) error

// JobStore tracks job state so callers can poll progress.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *IngestJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*IngestJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*IngestJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Kind   ingest.DocumentKind
	Status JobStatus
	Limit  int
	Offset int
}

package printer

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job statuses
const (
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Job records one finished print job. Jobs are never requeued.
type Job struct {
	ID           string        `json:"id"`
	PrinterID    string        `json:"printer_id"`
	Document     string        `json:"document"`
	Status       string        `json:"status"`
	BytesWritten int           `json:"bytes_written"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// History keeps the most recent jobs, newest last
type History struct {
	jobs  []*Job
	limit int
	mu    sync.Mutex
}

// DefaultHistoryLimit is used when NewHistory gets a non-positive limit
const DefaultHistoryLimit = 100

// NewHistory creates a job history
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Record stores the outcome of an Engine.Execute call
func (h *History) Record(printerID, document string, result *Result, err error) *Job {
	job := &Job{
		PrinterID: printerID,
		Document:  document,
		Status:    JobCompleted,
		CreatedAt: time.Now(),
	}
	if result != nil {
		job.ID = result.JobID
		job.BytesWritten = result.BytesWritten
		job.Duration = result.Duration
	}
	if err != nil {
		job.Status = JobFailed
		job.Error = err.Error()
		var te *TransportError
		if errors.As(err, &te) {
			job.BytesWritten = te.BytesWritten
		}
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.jobs = append(h.jobs, job)
	if len(h.jobs) > h.limit {
		h.jobs = h.jobs[len(h.jobs)-h.limit:]
	}
	c := *job
	return &c
}

// GetJob returns a job by ID
func (h *History) GetJob(jobID string) *Job {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, job := range h.jobs {
		if job.ID == jobID {
			jobCopy := *job
			return &jobCopy
		}
	}

	return nil
}

// GetAllJobs returns copies of all recorded jobs
func (h *History) GetAllJobs() []*Job {
	h.mu.Lock()
	defer h.mu.Unlock()

	jobs := make([]*Job, len(h.jobs))
	for i, job := range h.jobs {
		jobCopy := *job
		jobs[i] = &jobCopy
	}

	return jobs
}

// ClearCompleted removes completed jobs and keeps failures
func (h *History) ClearCompleted() {
	h.mu.Lock()
	defer h.mu.Unlock()

	filtered := make([]*Job, 0, len(h.jobs))
	for _, job := range h.jobs {
		if job.Status != JobCompleted {
			filtered = append(filtered, job)
		}
	}

	h.jobs = filtered
}

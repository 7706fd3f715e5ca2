package jobqueue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

type JobType string

const (
	JobTypePhotoThumbnail JobType = "photo_thumbnail"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job is the record stored under the job key while work is outstanding.
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	LastError   string          `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
}

func newJob(jobType JobType, payload any, now time.Time) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", jobType, err)
	}
	return &Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Status:      JobStatusPending,
		Payload:     raw,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Decode unmarshals the payload into v.
func (j *Job) Decode(v any) error {
	if len(j.Payload) == 0 {
		return fmt.Errorf("job %s has no payload", j.ID)
	}
	return json.Unmarshal(j.Payload, v)
}

func (j *Job) start(now time.Time) {
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.UpdatedAt = now
}

// fail records a failed attempt and reports whether another one is due.
func (j *Job) fail(err error, now time.Time) bool {
	j.Attempts++
	j.LastError = err.Error()
	j.UpdatedAt = now
	if j.Attempts < j.MaxAttempts {
		j.Status = JobStatusRetrying
		return true
	}
	j.Status = JobStatusFailed
	return false
}

func (j *Job) finish(now time.Time) {
	j.Status = JobStatusCompleted
	j.LastError = ""
	j.UpdatedAt = now
}

// runningSince falls back to the last update for records without a start.
func (j *Job) runningSince() time.Time {
	switch {
	case j.StartedAt != nil && !j.StartedAt.IsZero():
		return *j.StartedAt
	case !j.UpdatedAt.IsZero():
		return j.UpdatedAt
	default:
		return j.CreatedAt
	}
}

// ThumbnailPayload names the day whose picture needs a preview.
type ThumbnailPayload struct {
	UserID uint   `json:"user_id"`
	Date   string `json:"date"`
}

func (p ThumbnailPayload) Day() (calendar.Date, error) {
	return calendar.ParseDate(p.Date)
}

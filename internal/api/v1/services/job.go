package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apierrors "voicenotes/internal/api/errors"
	"voicenotes/internal/api/middleware"
	"voicenotes/internal/api/v1/dto"
	"voicenotes/internal/app/jobs"
	"voicenotes/internal/app/security"
)

type jobService struct {
	validator *security.Validator
	queue     jobs.Queue
}

// NewJobService creates the asynchronous ingestion service.
func NewJobService(validator *security.Validator, queue jobs.Queue) JobService {
	return &jobService{validator: validator, queue: queue}
}

func (s *jobService) EnqueueUpload(ctx context.Context, filename string, payload []byte, structured bool) (*dto.JobCreatedResponse, error) {
	info, rej := s.validator.Validate(filename, payload)
	if rej != nil {
		middleware.RecordRejection(string(rej.Kind))
		return nil, apierrors.FromRejection(rej)
	}
	middleware.RecordAccepted()

	job := &jobs.Job{
		ID:         uuid.NewString(),
		Filename:   info.Filename,
		Format:     info.Format,
		Payload:    payload,
		Structured: structured,
		Warning:    info.HeuristicWarning,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, apierrors.NewServiceUnavailableError("Job queue unavailable")
	}

	return &dto.JobCreatedResponse{ID: job.ID, Status: string(jobs.StatusQueued)}, nil
}

func (s *jobService) GetJob(ctx context.Context, id string) (*dto.JobStatusResponse, error) {
	state, err := s.queue.GetState(ctx, id)
	if errors.Is(err, jobs.ErrJobNotFound) {
		return nil, apierrors.NewNotFoundError("Job")
	}
	if err != nil {
		return nil, apierrors.NewInternalError("Internal server error occurred")
	}

	resp := dto.ToJobStatusResponse(state)
	return &resp, nil
}

// NewJobHandler adapts the ingestion service into the worker pool's handler.
// The queued payload already passed validation, but it is re-staged through
// the pipeline so temp-file hygiene is identical on both paths.
func NewJobHandler(notes NoteService) jobs.Handler {
	return func(ctx context.Context, job *jobs.Job) (string, error) {
		resp, err := notes.IngestUpload(ctx, job.Filename, job.Payload, job.Structured)
		if err != nil {
			return "", err
		}
		return resp.ID, nil
	}
}

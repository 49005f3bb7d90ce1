package dto

import (
	"time"

	"voicenotes/internal/app/jobs"
)

// JobCreatedResponse acknowledges an accepted background ingestion job.
type JobCreatedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// JobStatusResponse reports the state of a background ingestion job.
type JobStatusResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	NoteID    string    `json:"note_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToJobStatusResponse converts a queue state to its response DTO.
func ToJobStatusResponse(state *jobs.State) JobStatusResponse {
	return JobStatusResponse{
		ID:        state.ID,
		Status:    string(state.Status),
		NoteID:    state.NoteID,
		Error:     state.Error,
		UpdatedAt: state.UpdatedAt,
	}
}

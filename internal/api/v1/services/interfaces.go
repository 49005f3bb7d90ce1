package services

import (
	"context"
	"io"

	"voicenotes/internal/api/v1/dto"
)

// NoteService ingests uploads and manages stored notes.
type NoteService interface {
	// IngestUpload runs the validation pipeline on an untrusted upload,
	// transcribes it and stores the resulting note. With structured set, the
	// transcript is additionally reshaped into a structured note.
	IngestUpload(ctx context.Context, filename string, payload []byte, structured bool) (*dto.NoteResponse, error)

	// StructureTranscript reshapes an already-obtained transcript into a
	// structured note and stores it.
	StructureTranscript(ctx context.Context, transcript string) (*dto.NoteResponse, error)

	GetNote(ctx context.Context, id string) (*dto.NoteResponse, error)
	ListNotes(ctx context.Context, query dto.ListNotesQuery) (*dto.PaginatedNotesResponse, error)
	DeleteNote(ctx context.Context, id string) error
}

// ExportService writes stored notes to a spreadsheet.
type ExportService interface {
	ExportNotes(ctx context.Context, w io.Writer) error
}

// JobService runs ingestion asynchronously through the job queue.
type JobService interface {
	// EnqueueUpload validates the upload and queues it for background
	// processing. Validation failures reject immediately; only accepted
	// payloads enter the queue.
	EnqueueUpload(ctx context.Context, filename string, payload []byte, structured bool) (*dto.JobCreatedResponse, error)

	GetJob(ctx context.Context, id string) (*dto.JobStatusResponse, error)
}

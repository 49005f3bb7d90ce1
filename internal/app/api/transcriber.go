package api

import "context"

// Transcriber converts a validated local audio file into text. The path it
// receives has already been through the ingestion pipeline; implementations
// treat it as trusted.
type Transcriber interface {
	Transcribe(ctx context.Context, inputFilePath string) (string, error)
}

// NoteStructurer turns a raw transcript into a structured clinical note.
type NoteStructurer interface {
	StructureNote(ctx context.Context, transcript string) (string, error)
}

// TranscriptionError describes a failure in an external collaborator.
type TranscriptionError struct {
	Code      string
	Message   string
	Provider  string
	Retryable bool
}

// Error implements the error interface.
func (e *TranscriptionError) Error() string {
	return e.Provider + ": " + e.Code + ": " + e.Message
}

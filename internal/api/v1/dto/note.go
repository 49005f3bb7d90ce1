package dto

import (
	"time"

	"voicenotes/internal/app/model"
)

// NoteResponse represents an ingested note in API responses.
type NoteResponse struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	Format         string    `json:"format"`
	SizeBytes      int64     `json:"size_bytes"`
	Transcript     string    `json:"transcript"`
	StructuredNote string    `json:"structured_note,omitempty"`
	Warning        string    `json:"warning,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StructureNoteRequest asks for a structured note from an existing
// transcript.
type StructureNoteRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// ListNotesQuery represents query parameters for listing notes.
type ListNotesQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

// PaginatedNotesResponse represents one page of notes.
type PaginatedNotesResponse struct {
	Notes      []NoteResponse     `json:"notes"`
	Pagination PaginationResponse `json:"pagination"`
}

// PaginationResponse represents pagination metadata.
type PaginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Count int `json:"count"`
}

// ToNoteResponse converts a model to its response DTO.
func ToNoteResponse(n *model.Note) NoteResponse {
	return NoteResponse{
		ID:             n.ID,
		Filename:       n.Filename,
		Format:         n.Format,
		SizeBytes:      n.SizeBytes,
		Transcript:     n.Transcript,
		StructuredNote: n.StructuredNote,
		Warning:        n.Warning,
		CreatedAt:      n.CreatedAt,
	}
}

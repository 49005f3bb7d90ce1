package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apierrors "voicenotes/internal/api/errors"
	"voicenotes/internal/api/middleware"
	"voicenotes/internal/api/v1/dto"
	"voicenotes/internal/app/api"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
	"voicenotes/internal/app/security"
	"voicenotes/internal/app/storage"
)

// noteService wires the validation pipeline to the transcription
// collaborators and the note store.
type noteService struct {
	validator   *security.Validator
	transcriber api.Transcriber
	structurer  api.NoteStructurer
	dao         repository.NoteDAO
	archiver    storage.Archiver
	logger      *slog.Logger
}

// NewNoteService creates the ingestion service. A nil archiver disables
// archival.
func NewNoteService(
	validator *security.Validator,
	transcriber api.Transcriber,
	structurer api.NoteStructurer,
	dao repository.NoteDAO,
	archiver storage.Archiver,
	logger *slog.Logger,
) NoteService {
	if archiver == nil {
		archiver = storage.NoopArchiver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &noteService{
		validator:   validator,
		transcriber: transcriber,
		structurer:  structurer,
		dao:         dao,
		archiver:    archiver,
		logger:      logger,
	}
}

func (s *noteService) IngestUpload(ctx context.Context, filename string, payload []byte, structured bool) (*dto.NoteResponse, error) {
	var transcript string

	info, rej := s.validator.Stage(filename, payload, func(path string, info *security.Validated) error {
		start := time.Now()
		text, err := s.transcriber.Transcribe(ctx, path)
		if err != nil {
			return err
		}
		middleware.ObserveTranscription(time.Since(start))
		transcript = text
		return nil
	})
	if rej != nil {
		middleware.RecordRejection(string(rej.Kind))
		return nil, apierrors.FromRejection(rej)
	}
	middleware.RecordAccepted()

	note := &model.Note{
		ID:         uuid.NewString(),
		Filename:   info.Filename,
		Format:     info.Format,
		SizeBytes:  info.Size,
		Transcript: transcript,
		Warning:    info.HeuristicWarning,
		CreatedAt:  time.Now().UTC(),
	}

	if structured {
		structuredNote, err := s.structurer.StructureNote(ctx, transcript)
		if err != nil {
			return nil, s.mapCollaboratorError(err)
		}
		note.StructuredNote = structuredNote
	}

	if err := s.dao.Insert(ctx, note); err != nil {
		s.logger.Error("failed to store note", "note_id", note.ID, "error", err)
		return nil, apierrors.NewInternalError("Internal server error occurred")
	}

	// Archival is best effort; a cold-storage outage must not fail an
	// already-processed upload.
	if key, err := s.archiver.Archive(ctx, note.ID, note.Filename, note.Format, payload); err != nil {
		s.logger.Warn("failed to archive payload", "note_id", note.ID, "error", err)
	} else if key != "" {
		s.logger.Info("payload archived", "note_id", note.ID, "key", key)
	}

	resp := dto.ToNoteResponse(note)
	return &resp, nil
}

func (s *noteService) StructureTranscript(ctx context.Context, transcript string) (*dto.NoteResponse, error) {
	structuredNote, err := s.structurer.StructureNote(ctx, transcript)
	if err != nil {
		return nil, s.mapCollaboratorError(err)
	}

	note := &model.Note{
		ID:             uuid.NewString(),
		Transcript:     transcript,
		StructuredNote: structuredNote,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.dao.Insert(ctx, note); err != nil {
		s.logger.Error("failed to store note", "note_id", note.ID, "error", err)
		return nil, apierrors.NewInternalError("Internal server error occurred")
	}

	resp := dto.ToNoteResponse(note)
	return &resp, nil
}

func (s *noteService) GetNote(ctx context.Context, id string) (*dto.NoteResponse, error) {
	note, err := s.dao.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NewNotFoundError("Note")
	}
	if err != nil {
		return nil, apierrors.NewInternalError("Internal server error occurred")
	}

	resp := dto.ToNoteResponse(note)
	return &resp, nil
}

func (s *noteService) ListNotes(ctx context.Context, query dto.ListNotesQuery) (*dto.PaginatedNotesResponse, error) {
	offset := (query.Page - 1) * query.Limit
	notes, err := s.dao.List(ctx, query.Limit, offset)
	if err != nil {
		return nil, apierrors.NewInternalError("Internal server error occurred")
	}

	responses := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, dto.ToNoteResponse(&notes[i]))
	}

	return &dto.PaginatedNotesResponse{
		Notes: responses,
		Pagination: dto.PaginationResponse{
			Page:  query.Page,
			Limit: query.Limit,
			Count: len(responses),
		},
	}, nil
}

func (s *noteService) DeleteNote(ctx context.Context, id string) error {
	err := s.dao.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apierrors.NewNotFoundError("Note")
	}
	if err != nil {
		return apierrors.NewInternalError("Internal server error occurred")
	}
	return nil
}

// mapCollaboratorError hides upstream provider detail behind the generic
// processing message. The full error stays in the logs.
func (s *noteService) mapCollaboratorError(err error) error {
	var te *api.TranscriptionError
	if errors.As(err, &te) {
		s.logger.Error("collaborator call failed",
			"code", te.Code,
			"provider", te.Provider,
			"error", te.Message,
		)
	} else {
		s.logger.Error("collaborator call failed", "error", err)
	}
	return apierrors.NewServiceUnavailableError(security.GenericMessage(security.KindDownstreamProcessing))
}

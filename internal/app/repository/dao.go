package repository

import (
	"context"
	"errors"

	"voicenotes/internal/app/model"
)

// ErrNotFound is returned when a note id does not exist.
var ErrNotFound = errors.New("note not found")

// NoteDAO persists ingested notes.
type NoteDAO interface {
	Close() error

	Insert(ctx context.Context, note *model.Note) error

	GetByID(ctx context.Context, id string) (*model.Note, error)

	// List returns notes newest-first. A non-positive limit means no limit.
	List(ctx context.Context, limit, offset int) ([]model.Note, error)

	Delete(ctx context.Context, id string) error
}

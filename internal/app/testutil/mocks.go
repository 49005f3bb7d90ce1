// Package testutil provides in-memory fakes for the ingestion service's
// collaborators.
package testutil

import (
	"context"
	"sync"

	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
)

// StubTranscriber returns a canned transcript or error and records the paths
// it was called with.
type StubTranscriber struct {
	mu sync.Mutex

	Transcript string
	Err        error
	Calls      []string
}

func (s *StubTranscriber) Transcribe(ctx context.Context, inputFilePath string) (string, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, inputFilePath)
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	return s.Transcript, nil
}

// StubStructurer returns a canned structured note or error.
type StubStructurer struct {
	mu sync.Mutex

	Note  string
	Err   error
	Calls []string
}

func (s *StubStructurer) StructureNote(ctx context.Context, transcript string) (string, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, transcript)
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	return s.Note, nil
}

// MemoryNoteDAO is a map-backed NoteDAO.
type MemoryNoteDAO struct {
	mu    sync.Mutex
	notes map[string]model.Note
	order []string

	InsertErr error
}

func NewMemoryNoteDAO() *MemoryNoteDAO {
	return &MemoryNoteDAO{notes: make(map[string]model.Note)}
}

func (d *MemoryNoteDAO) Close() error { return nil }

func (d *MemoryNoteDAO) Insert(ctx context.Context, note *model.Note) error {
	if d.InsertErr != nil {
		return d.InsertErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes[note.ID] = *note
	d.order = append(d.order, note.ID)
	return nil
}

func (d *MemoryNoteDAO) GetByID(ctx context.Context, id string) (*model.Note, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	note, ok := d.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &note, nil
}

func (d *MemoryNoteDAO) List(ctx context.Context, limit, offset int) ([]model.Note, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Insertion order, newest last in storage, newest first out.
	notes := make([]model.Note, 0, len(d.order))
	for i := len(d.order) - 1; i >= 0; i-- {
		notes = append(notes, d.notes[d.order[i]])
	}

	if offset >= len(notes) {
		return []model.Note{}, nil
	}
	notes = notes[offset:]
	if limit > 0 && limit < len(notes) {
		notes = notes[:limit]
	}
	return notes, nil
}

func (d *MemoryNoteDAO) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.notes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(d.notes, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

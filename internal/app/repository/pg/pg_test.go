package pg

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
)

func TestNoteDBImplementsDAO(t *testing.T) {
	var _ repository.NoteDAO = (*NoteDB)(nil)
}

func newMockedDB(t *testing.T) (*NoteDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewNoteDBWithConn(db), mock
}

func sampleNote() *model.Note {
	return &model.Note{
		ID:         "0b9d7a1e-2f47-4f5a-9a6e-1c2d3e4f5a6b",
		Filename:   "visit_notes.mp3",
		Format:     "mp3",
		SizeBytes:  2048,
		Transcript: "patient reports improvement",
		CreatedAt:  time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestInsert(t *testing.T) {
	ndb, mock := newMockedDB(t)
	note := sampleNote()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes")).
		WithArgs(note.ID, note.Filename, note.Format, note.SizeBytes,
			note.Transcript, note.StructuredNote, note.Warning, note.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ndb.Insert(context.Background(), note)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPropagatesError(t *testing.T) {
	ndb, mock := newMockedDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes")).
		WillReturnError(errors.New("connection refused"))

	err := ndb.Insert(context.Background(), sampleNote())
	assert.Error(t, err)
}

func TestGetByID(t *testing.T) {
	ndb, mock := newMockedDB(t)
	note := sampleNote()

	columns := []string{"id", "filename", "format", "size_bytes", "transcript", "structured_note", "warning", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, filename, format, size_bytes, transcript, structured_note, warning, created_at")).
		WithArgs(note.ID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(note.ID, note.Filename, note.Format, note.SizeBytes,
				note.Transcript, note.StructuredNote, note.Warning, note.CreatedAt))

	got, err := ndb.GetByID(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.Filename, got.Filename)
	assert.Equal(t, note.Transcript, got.Transcript)
}

func TestGetByIDNotFound(t *testing.T) {
	ndb, mock := newMockedDB(t)

	columns := []string{"id", "filename", "format", "size_bytes", "transcript", "structured_note", "warning", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := ndb.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestList(t *testing.T) {
	ndb, mock := newMockedDB(t)
	note := sampleNote()

	columns := []string{"id", "filename", "format", "size_bytes", "transcript", "structured_note", "warning", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(note.ID, note.Filename, note.Format, note.SizeBytes,
				note.Transcript, note.StructuredNote, note.Warning, note.CreatedAt))

	notes, err := ndb.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)
}

func TestDelete(t *testing.T) {
	ndb, mock := newMockedDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes")).
		WithArgs("some-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, ndb.Delete(context.Background(), "some-id"))
}

func TestDeleteNotFound(t *testing.T) {
	ndb, mock := newMockedDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, ndb.Delete(context.Background(), "missing"), repository.ErrNotFound)
}

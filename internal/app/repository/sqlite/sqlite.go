package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id              TEXT PRIMARY KEY,
	filename        TEXT NOT NULL,
	format          TEXT NOT NULL,
	size_bytes      INTEGER NOT NULL,
	transcript      TEXT NOT NULL,
	structured_note TEXT NOT NULL DEFAULT '',
	warning         TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at);`

// NoteDB is the SQLite-backed note store.
type NoteDB struct {
	db *sql.DB
}

// NewNoteDB opens the database file and ensures the schema exists.
func NewNoteDB(dbFilePath string) (*NoteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &NoteDB{db: db}, nil
}

func (ndb *NoteDB) Close() error {
	return ndb.db.Close()
}

func (ndb *NoteDB) Insert(ctx context.Context, note *model.Note) error {
	insertSQL := `INSERT INTO notes (id, filename, format, size_bytes, transcript, structured_note, warning, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := ndb.db.ExecContext(ctx, insertSQL,
		note.ID, note.Filename, note.Format, note.SizeBytes,
		note.Transcript, note.StructuredNote, note.Warning, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

func (ndb *NoteDB) GetByID(ctx context.Context, id string) (*model.Note, error) {
	query := `SELECT id, filename, format, size_bytes, transcript, structured_note, warning, created_at
		FROM notes WHERE id = ?`
	var n model.Note
	err := ndb.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Filename, &n.Format, &n.SizeBytes,
		&n.Transcript, &n.StructuredNote, &n.Warning, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &n, nil
}

func (ndb *NoteDB) List(ctx context.Context, limit, offset int) ([]model.Note, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT id, filename, format, size_bytes, transcript, structured_note, warning, created_at
		FROM notes
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := ndb.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		var n model.Note
		err = rows.Scan(&n.ID, &n.Filename, &n.Format, &n.SizeBytes,
			&n.Transcript, &n.StructuredNote, &n.Warning, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db scan failed: %w", err)
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return notes, nil
}

func (ndb *NoteDB) Delete(ctx context.Context, id string) error {
	result, err := ndb.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

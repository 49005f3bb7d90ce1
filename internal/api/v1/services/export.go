package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tealeg/xlsx"

	"voicenotes/internal/app/repository"
)

// exportLimit bounds a single spreadsheet export.
const exportLimit = 10000

type exportService struct {
	dao repository.NoteDAO
}

// NewExportService creates a spreadsheet export service.
func NewExportService(dao repository.NoteDAO) ExportService {
	return &exportService{dao: dao}
}

// ExportNotes writes all stored notes as an xlsx workbook.
func (s *exportService) ExportNotes(ctx context.Context, w io.Writer) error {
	notes, err := s.dao.List(ctx, exportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch notes: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Notes")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "ID"
	headerRow.AddCell().Value = "Filename"
	headerRow.AddCell().Value = "Format"
	headerRow.AddCell().Value = "Size (bytes)"
	headerRow.AddCell().Value = "Transcript"
	headerRow.AddCell().Value = "Structured Note"
	headerRow.AddCell().Value = "Warning"
	headerRow.AddCell().Value = "Created At"

	for _, n := range notes {
		row := sheet.AddRow()
		row.AddCell().Value = n.ID
		row.AddCell().Value = n.Filename
		row.AddCell().Value = n.Format
		row.AddCell().Value = strconv.FormatInt(n.SizeBytes, 10)
		row.AddCell().Value = n.Transcript
		row.AddCell().Value = n.StructuredNote
		row.AddCell().Value = n.Warning
		row.AddCell().Value = n.CreatedAt.Format(time.RFC3339)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

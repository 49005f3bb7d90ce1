package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voicenotes/internal/api/errors"
	"voicenotes/internal/api/middleware"
	"voicenotes/internal/api/v1/dto"
	"voicenotes/internal/api/v1/services"
)

// NoteHandler handles note ingestion and retrieval endpoints.
type NoteHandler struct {
	notes  services.NoteService
	export services.ExportService
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(notes services.NoteService, export services.ExportService) *NoteHandler {
	return &NoteHandler{notes: notes, export: export}
}

// Upload handles POST /api/v1/notes/audio. It accepts a multipart audio
// upload, runs the full validation pipeline and transcribes synchronously.
func (h *NoteHandler) Upload(c *gin.Context) {
	filename, payload, err := readUpload(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	structured := c.PostForm("structured") == "true"

	response, err := h.notes.IngestUpload(c.Request.Context(), filename, payload, structured)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Structure handles POST /api/v1/notes. It turns a client-supplied
// transcript into a structured note.
func (h *NoteHandler) Structure(c *gin.Context) {
	var req dto.StructureNoteRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.notes.StructureTranscript(c.Request.Context(), req.Transcript)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Get handles GET /api/v1/notes/:id.
func (h *NoteHandler) Get(c *gin.Context) {
	response, err := h.notes.GetNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// List handles GET /api/v1/notes.
func (h *NoteHandler) List(c *gin.Context) {
	var query dto.ListNotesQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.notes.ListNotes(c.Request.Context(), query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /api/v1/notes/:id.
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.notes.DeleteNote(c.Request.Context(), c.Param("id")); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Export handles GET /api/v1/notes/export, streaming an xlsx workbook.
func (h *NoteHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("notes_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.export.ExportNotes(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; all we can do is log via the error
		// handler without a second body.
		_ = c.Error(err)
	}
}

// readUpload pulls the multipart file out of the request. The filename and
// bytes are untrusted; the service layer validates both.
func readUpload(c *gin.Context) (string, []byte, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return "", nil, errors.NewBadRequestError("No file uploaded")
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.NewBadRequestError("Failed to read uploaded file")
	}

	return header.Filename, payload, nil
}

package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicenotes/internal/api/middleware"
	"voicenotes/internal/api/v1/services"
	"voicenotes/internal/app/security"
	"voicenotes/internal/app/testutil"
)

func setupRouter(t *testing.T) (*gin.Engine, *testutil.MemoryNoteDAO) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	transcriber := &testutil.StubTranscriber{Transcript: "dictated text"}
	structurer := &testutil.StubStructurer{Note: "HISTORY:\ndictated text"}
	dao := testutil.NewMemoryNoteDAO()
	validator := security.NewValidator(security.Config{TempDir: t.TempDir()}, slog.Default())

	noteService := services.NewNoteService(validator, transcriber, structurer, dao, nil, slog.Default())
	handler := NewNoteHandler(noteService, services.NewExportService(dao))

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(slog.Default()))

	v1 := router.Group("/api/v1")
	notes := v1.Group("/notes")
	notes.POST("", handler.Structure)
	notes.POST("/audio", handler.Upload)
	notes.GET("/export", handler.Export)
	notes.GET("/:id", handler.Get)
	notes.GET("", handler.List)
	notes.DELETE("/:id", handler.Delete)

	return router, dao
}

func multipartBody(t *testing.T, filename string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func wavPayload() []byte {
	payload := []byte("RIFF\x24\x00\x00\x00WAVE")
	for len(payload) < 64 {
		payload = append(payload, byte(1+len(payload)%100))
	}
	return payload
}

func doUpload(t *testing.T, router *gin.Engine, filename string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, payload, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/audio", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAccepted(t *testing.T) {
	router, _ := setupRouter(t)

	w := doUpload(t, router, "visit.wav", wavPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "visit.wav", body["filename"])
	assert.Equal(t, "wav", body["format"])
	assert.Equal(t, "dictated text", body["transcript"])
	assert.NotEmpty(t, body["id"])
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		payload    []byte
		wantStatus int
		wantMsg    string
	}{
		{"traversal", "../../../etc/passwd.wav", wavPayload(), http.StatusBadRequest, "Invalid filename provided"},
		{"bad_extension", "malware.exe", wavPayload(), http.StatusBadRequest, "Invalid file format or content"},
		{"mismatched_signature", "song.mp3", wavPayload(), http.StatusBadRequest, "Invalid file format or content"},
		{"garbage_content", "clip.wav", []byte("this is not audio at all"), http.StatusBadRequest, "Invalid file format or content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupRouter(t)

			w := doUpload(t, router, tt.filename, tt.payload)
			require.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["message"])
			// The response never echoes the attacker-controlled name.
			assert.NotContains(t, w.Body.String(), "passwd")
		})
	}
}

func TestUploadMissingFile(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/audio", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStructureEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	payload := `{"transcript": "patient feels fine"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "HISTORY:\ndictated text", body["structured_note"])
}

func TestStructureEndpointValidation(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetListDelete(t *testing.T) {
	router, _ := setupRouter(t)

	w := doUpload(t, router, "visit.wav", wavPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"].(string)

	// Get
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// List
	req = httptest.NewRequest(http.MethodGet, "/api/v1/notes?page=1&limit=10", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var page map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page["notes"], 1)

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/notes/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Gone
	req = httptest.NewRequest(http.MethodGet, "/api/v1/notes/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doUpload(t, router, "visit.wav", wavPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes/export", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

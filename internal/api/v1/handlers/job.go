package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicenotes/internal/api/middleware"
	"voicenotes/internal/api/v1/services"
)

// JobHandler handles asynchronous ingestion endpoints.
type JobHandler struct {
	jobs services.JobService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Create handles POST /api/v1/jobs. The upload is validated inline and
// queued; processing happens in the worker pool.
func (h *JobHandler) Create(c *gin.Context) {
	filename, payload, err := readUpload(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	structured := c.PostForm("structured") == "true"

	response, err := h.jobs.EnqueueUpload(c.Request.Context(), filename, payload, structured)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, response)
}

// Get handles GET /api/v1/jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	response, err := h.jobs.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/tcg-inventory-sync/internal/services"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
)

type UploadHandler struct {
	syncService *services.SyncService
}

func NewUploadHandler(syncService *services.SyncService) *UploadHandler {
	return &UploadHandler{syncService: syncService}
}

// GetUpload returns the caller's upload job
func (h *UploadHandler) GetUpload(c *gin.Context) {
	job, err := h.syncService.GetJob(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && job.UserID != userID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetProgress returns live progress of the caller's job. Unknown, expired
// and other users' jobs report 0% "Starting...".
func (h *UploadHandler) GetProgress(c *gin.Context) {
	state, err := h.syncService.Progress(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

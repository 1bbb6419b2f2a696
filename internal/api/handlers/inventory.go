package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/tcg-inventory-sync/internal/ingest"
	"github.com/codyseavey/tcg-inventory-sync/internal/models"
	"github.com/codyseavey/tcg-inventory-sync/internal/services"
)

// UserContextKey is where the authenticated user id is stored on the gin context
const UserContextKey = "user"

// Largest snapshot or change page a client may request
const maxPageSize = 365

// SyncRequest is the JSON body of POST /api/inventory/sync
type SyncRequest struct {
	Records    []models.InventoryRecord `json:"records" binding:"required"`
	ReplaceAll bool                     `json:"replace_all"`
	FileName   string                   `json:"file_name"`
	Metadata   map[string]any           `json:"metadata"`
}

// InventoryResponse lists a user's holdings with their totals
type InventoryResponse struct {
	Holdings []models.HoldingRecord `json:"holdings"`
	services.Aggregates
}

type InventoryHandler struct {
	syncService    *services.SyncService
	maxUploadBytes int64
	log            *zap.Logger
	// spawn runs CSV batches after the upload response is written
	spawn func(func())
}

func NewInventoryHandler(syncService *services.SyncService, maxUploadBytes int64, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		syncService:    syncService,
		maxUploadBytes: maxUploadBytes,
		log:            log,
		spawn:          func(f func()) { go f() },
	}
}

func userID(c *gin.Context) string {
	return c.GetString(UserContextKey)
}

func syncMode(replaceAll bool) models.SyncMode {
	if replaceAll {
		return models.SyncModeReplaceAll
	}
	return models.SyncModeMerge
}

// SyncInventory applies a JSON batch synchronously and returns its summary
func (h *InventoryHandler) SyncInventory(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.syncService.SubmitBatch(c.Request.Context(), services.BatchRequest{
		UserID:   userID(c),
		Records:  req.Records,
		Mode:     syncMode(req.ReplaceAll),
		FileName: req.FileName,
		FileType: "application/json",
		Metadata: req.Metadata,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, services.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, result)
	case result != nil:
		c.JSON(http.StatusInternalServerError, result)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// UploadCSV accepts a multipart CSV export, creates an upload job and
// processes it in the background. Poll /api/uploads/:id/progress to follow it.
func (h *InventoryHandler) UploadCSV(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	parsed, err := ingest.ParseCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	replaceAll, _ := strconv.ParseBool(c.PostForm("replace_all"))
	req := services.BatchRequest{
		UserID:   userID(c),
		Records:  parsed.Records,
		Mode:     syncMode(replaceAll),
		FileName: fileHeader.Filename,
		FileSize: fileHeader.Size,
		FileType: "text/csv",
		Metadata: parsed.Metadata(),
	}

	job, err := h.syncService.CreateJob(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create upload job"})
		return
	}

	h.spawn(func() {
		if _, err := h.syncService.Run(context.Background(), job, req); err != nil {
			h.log.Warn("background upload finished with error", zap.String("job_id", job.ID), zap.Error(err))
		}
	})

	c.JSON(http.StatusAccepted, gin.H{
		"upload_id":     job.ID,
		"status":        job.Status,
		"total_records": len(parsed.Records),
		"skipped_rows":  parsed.SkippedRows,
		"replace_all":   replaceAll,
	})
}

// GetInventory lists the caller's holdings and their current totals
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	holdings, err := h.syncService.ListHoldings(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, InventoryResponse{
		Holdings:   holdings,
		Aggregates: services.ComputeAggregates(holdings),
	})
}

// GetSnapshots returns snapshot history, newest first
func (h *InventoryHandler) GetSnapshots(c *gin.Context) {
	limit := queryInt(c, "limit", services.DefaultHistoryLimit)
	history, err := h.syncService.Ledger().History(c.Request.Context(), userID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetChanges returns change records of the trailing days window
func (h *InventoryHandler) GetChanges(c *gin.Context) {
	days := queryInt(c, "days", 30)
	limit := queryInt(c, "limit", 50)
	changes, err := h.syncService.Ledger().RecentChanges(c.Request.Context(), userID(c), days, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": changes, "days": days})
}

// GetGrowth returns growth statistics for week, month or year
func (h *InventoryHandler) GetGrowth(c *gin.Context) {
	stats, err := h.syncService.Ledger().GrowthStats(c.Request.Context(), userID(c), c.DefaultQuery("period", "month"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// queryInt reads a positive integer query parameter capped at maxPageSize
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	if v > maxPageSize {
		return maxPageSize
	}
	return v
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/codyseavey/tcg-inventory-sync/internal/metrics"
	"github.com/codyseavey/tcg-inventory-sync/internal/models"
	"github.com/codyseavey/tcg-inventory-sync/internal/progress"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
)

// BatchRequest is one inventory batch handed over by an ingestion adapter
type BatchRequest struct {
	UserID   string
	Records  []models.InventoryRecord
	Mode     models.SyncMode
	FileName string
	FileSize int64
	FileType string
	// Metadata is adapter provenance stored on the snapshot
	Metadata map[string]any
}

// SyncService runs a batch through resolution, reconciliation and the
// ledger, and keeps its UploadJob and progress up to date.
type SyncService struct {
	store      store.Store
	resolver   *CatalogResolver
	reconciler *Reconciler
	ledger     *Ledger
	progress   *progress.Tracker
	log        *zap.Logger
}

// NewSyncService wires the pipeline over a single store
func NewSyncService(st store.Store, tracker *progress.Tracker, log *zap.Logger) *SyncService {
	resolver := NewCatalogResolver(st, log)
	return &SyncService{
		store:      st,
		resolver:   resolver,
		reconciler: NewReconciler(st, resolver, tracker, log),
		ledger:     NewLedger(st, log),
		progress:   tracker,
		log:        log,
	}
}

// Ledger exposes the snapshot ledger for read APIs
func (s *SyncService) Ledger() *Ledger {
	return s.ledger
}

// SubmitBatch creates a job for req and processes it synchronously
func (s *SyncService) SubmitBatch(ctx context.Context, req BatchRequest) (*models.BatchResult, error) {
	job, err := s.CreateJob(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, job, req)
}

// CreateJob records a pending upload job for req
func (s *SyncService) CreateJob(ctx context.Context, req BatchRequest) (*models.UploadJob, error) {
	mode := req.Mode
	if mode == "" {
		mode = models.SyncModeMerge
	}
	job := &models.UploadJob{
		UserID:       req.UserID,
		FileName:     req.FileName,
		FileSize:     req.FileSize,
		FileType:     req.FileType,
		Mode:         mode,
		Status:       models.UploadStatusPending,
		TotalRecords: len(req.Records),
	}
	if err := s.store.CreateUploadJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create upload job: %w", err)
	}
	s.progress.Publish(job.ID, 0, "Queued")
	return job, nil
}

// Run processes req under an already created job. The returned result is
// non-nil whenever the job reached a terminal state, including failures.
// Cancelling ctx does not stop a running batch: the job always ends
// completed or failed.
func (s *SyncService) Run(ctx context.Context, job *models.UploadJob, req BatchRequest) (*models.BatchResult, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	mode := job.Mode
	log := s.log.With(zap.String("job_id", job.ID), zap.String("user", job.UserID))

	result := &models.BatchResult{
		UploadID:   job.ID,
		TotalValue: decimal.Zero,
		Errors:     []models.RecordError{},
		ReplaceAll: mode == models.SyncModeReplaceAll,
	}

	job.Status = models.UploadStatusProcessing
	s.saveJob(ctx, job, log)
	s.progress.Publish(job.ID, 5, "Starting sync...")

	records, dropped := NormalizeRecords(req.Records)
	if dropped > 0 {
		log.Info("dropped unusable records", zap.Int("dropped", dropped))
	}
	job.TotalRecords = len(records)
	if len(records) == 0 {
		return s.fail(ctx, job, result, ErrEmptyBatch, start, log)
	}
	s.progress.Publish(job.ID, 15, fmt.Sprintf("Validated %d records", len(records)))

	recon, err := s.reconciler.Reconcile(ctx, job.ID, job.UserID, records, mode)
	if err != nil {
		return s.fail(ctx, job, result, err, start, log)
	}
	result.ItemsAdded = len(recon.Added)
	result.ItemsUpdated = len(recon.Updated)
	result.Errors = recon.Errors
	job.ItemsAdded = result.ItemsAdded
	job.ItemsUpdated = result.ItemsUpdated
	job.ErrorCount = len(recon.Errors)
	job.ProcessedItems = result.ItemsAdded + result.ItemsUpdated

	s.progress.Publish(job.ID, 92, "Recording snapshot...")
	holdings, err := s.store.ListHoldings(ctx, job.UserID)
	if err != nil {
		return s.fail(ctx, job, result, &LedgerError{Op: "list holdings", Err: err}, start, log)
	}
	agg := ComputeAggregates(holdings)

	meta := map[string]any{}
	for k, v := range req.Metadata {
		meta[k] = v
	}
	if dropped > 0 {
		meta["dropped_records"] = dropped
	}
	if recon.Removed > 0 {
		meta["cleared_holdings"] = recon.Removed
	}

	snap, _, err := s.ledger.Commit(ctx, job.UserID, agg,
		SourceInfo{FileName: job.FileName, FileSize: job.FileSize, Metadata: meta},
		CommitOutcome{Mode: mode, Added: result.ItemsAdded, Updated: result.ItemsUpdated, Errors: job.ErrorCount})
	if err != nil {
		// Holdings are already written; the next successful batch re-derives the snapshot
		return s.fail(ctx, job, result, err, start, log)
	}

	result.Success = true
	result.SnapshotID = &snap.ID
	result.TotalItems = snap.TotalItems
	result.TotalCards = snap.TotalCards
	result.TotalValue = snap.TotalValue
	result.Message = summaryMessage(result.ItemsAdded, result.ItemsUpdated, len(result.Errors))

	// Progress reaches 100 before the job turns terminal
	s.progress.Publish(job.ID, 100, "Completed")
	now := time.Now()
	job.Status = models.UploadStatusCompleted
	job.SnapshotID = &snap.ID
	job.CompletedAt = &now
	s.saveJob(ctx, job, log)

	metrics.BatchesTotal.WithLabelValues(string(mode), string(models.UploadStatusCompleted)).Inc()
	metrics.BatchDuration.Observe(time.Since(start).Seconds())

	log.Info("batch completed",
		zap.Int("added", result.ItemsAdded),
		zap.Int("updated", result.ItemsUpdated),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// fail moves job to failed and returns the failure alongside a result
func (s *SyncService) fail(ctx context.Context, job *models.UploadJob, result *models.BatchResult, cause error, start time.Time, log *zap.Logger) (*models.BatchResult, error) {
	msg := cause.Error()
	s.progress.Publish(job.ID, 100, "Failed: "+msg)

	now := time.Now()
	job.Status = models.UploadStatusFailed
	job.ErrorMessage = &msg
	job.CompletedAt = &now
	s.saveJob(ctx, job, log)

	metrics.BatchesTotal.WithLabelValues(string(job.Mode), string(models.UploadStatusFailed)).Inc()
	metrics.BatchDuration.Observe(time.Since(start).Seconds())

	if errors.Is(cause, ErrEmptyBatch) {
		log.Warn("batch rejected", zap.Error(cause))
	} else {
		log.Error("batch failed", zap.Error(cause))
	}

	result.Success = false
	result.Message = "Failed to process inventory: " + msg
	return result, cause
}

// saveJob persists job bookkeeping. A failed save is logged, not returned:
// the batch outcome stands on its own.
func (s *SyncService) saveJob(ctx context.Context, job *models.UploadJob, log *zap.Logger) {
	if err := s.store.SaveUploadJob(ctx, job); err != nil {
		log.Error("failed to save upload job", zap.String("status", string(job.Status)), zap.Error(err))
	}
}

func summaryMessage(added, updated, errCount int) string {
	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d items added", added))
	}
	if updated > 0 {
		parts = append(parts, fmt.Sprintf("%d items updated", updated))
	}
	if errCount > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", errCount))
	}
	if len(parts) == 0 {
		return "No changes made"
	}
	return "Successfully processed: " + strings.Join(parts, ", ")
}

// ListHoldings returns userID's holdings with their catalog entries
func (s *SyncService) ListHoldings(ctx context.Context, userID string) ([]models.HoldingRecord, error) {
	holdings, err := s.store.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if holdings == nil {
		holdings = []models.HoldingRecord{}
	}
	return holdings, nil
}

// GetJob returns an upload job, or store.ErrNotFound
func (s *SyncService) GetJob(ctx context.Context, id string) (*models.UploadJob, error) {
	return s.store.GetUploadJob(ctx, id)
}

// Progress returns the live progress of one of userID's jobs. Jobs that do
// not exist or belong to another user read as not yet started.
func (s *SyncService) Progress(ctx context.Context, userID, jobID string) (progress.State, error) {
	job, err := s.store.GetUploadJob(ctx, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return s.progress.Starting(jobID), nil
	}
	if err != nil {
		return progress.State{}, err
	}
	if job.UserID != userID {
		return s.progress.Starting(jobID), nil
	}
	return s.progress.Read(jobID), nil
}

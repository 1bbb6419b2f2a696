package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/codyseavey/tcg-inventory-sync/internal/metrics"
	"github.com/codyseavey/tcg-inventory-sync/internal/models"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
)

// Progress range owned by the reconciler; the orchestrator reports the rest
const (
	reconcileProgressStart = 20
	reconcileProgressEnd   = 90
)

// ProgressPublisher receives job progress updates
type ProgressPublisher interface {
	Publish(jobID string, percent int, status string)
}

// ReconciledItem is one record that was applied to a holding
type ReconciledItem struct {
	HoldingID      uint             `json:"holding_id"`
	CatalogEntryID uint             `json:"catalog_entry_id"`
	Name           string           `json:"name"`
	SetName        string           `json:"set_name"`
	Condition      models.Condition `json:"condition"`
	Quantity       int              `json:"quantity"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
}

// ReconciliationResult lists what a batch did to a user's holdings
type ReconciliationResult struct {
	Added   []ReconciledItem     `json:"added"`
	Updated []ReconciledItem     `json:"updated"`
	Errors  []models.RecordError `json:"errors"`
	// Removed is the number of holdings cleared before a replace-all batch
	Removed int64 `json:"removed"`
}

// Reconciler applies inventory records to holdings
type Reconciler struct {
	store    store.HoldingStore
	resolver *CatalogResolver
	progress ProgressPublisher
	log      *zap.Logger
}

// NewReconciler creates a reconciler. progress may be nil.
func NewReconciler(holdings store.HoldingStore, resolver *CatalogResolver, progress ProgressPublisher, log *zap.Logger) *Reconciler {
	return &Reconciler{store: holdings, resolver: resolver, progress: progress, log: log}
}

// Reconcile applies records to userID's holdings in input order.
//
// In merge mode a record overwrites the quantity and price of the holding
// with the same (card, condition) or creates it. In replace-all mode every
// holding of the user is deleted first, so the records become the complete
// inventory. Failing records are collected in the result and do not stop the
// batch; only a failed replace-all clear aborts it.
func (r *Reconciler) Reconcile(ctx context.Context, jobID, userID string, records []models.InventoryRecord, mode models.SyncMode) (*ReconciliationResult, error) {
	result := &ReconciliationResult{
		Added:   []ReconciledItem{},
		Updated: []ReconciledItem{},
		Errors:  []models.RecordError{},
	}
	log := r.log.With(zap.String("job_id", jobID), zap.String("user", userID))

	if mode == models.SyncModeReplaceAll {
		removed, err := r.store.DeleteHoldings(ctx, userID)
		if err != nil {
			return nil, &ReconciliationError{Err: fmt.Errorf("clear holdings: %w", err)}
		}
		result.Removed = removed
		metrics.RecordsTotal.WithLabelValues("removed").Add(float64(removed))
		log.Info("cleared holdings for replace-all", zap.Int64("removed", removed))
	}

	total := len(records)
	for i, rec := range records {
		idx := i + 1

		item, created, err := r.apply(ctx, userID, rec)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, models.RecordError{Item: rec.DisplayName, Error: err.Error()})
			metrics.RecordsTotal.WithLabelValues("error").Inc()
			log.Warn("failed to reconcile record",
				zap.Int("index", idx),
				zap.String("record", rec.DisplayName),
				zap.String("set", rec.SetName),
				zap.Error(err))
		case created:
			result.Added = append(result.Added, item)
			metrics.RecordsTotal.WithLabelValues("added").Inc()
		default:
			result.Updated = append(result.Updated, item)
			metrics.RecordsTotal.WithLabelValues("updated").Inc()
		}

		if r.progress != nil && isMilestone(idx, total) {
			percent := reconcileProgressStart + idx*(reconcileProgressEnd-reconcileProgressStart)/total
			r.progress.Publish(jobID, percent, fmt.Sprintf("Processing item %d of %d...", idx, total))
		}
	}

	log.Info("reconciled batch",
		zap.String("mode", string(mode)),
		zap.Int("added", len(result.Added)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// apply upserts one record, reporting whether a new holding was created
func (r *Reconciler) apply(ctx context.Context, userID string, rec models.InventoryRecord) (ReconciledItem, bool, error) {
	entry, err := r.resolver.Resolve(ctx, CatalogLookup{
		Name:       rec.DisplayName,
		SetName:    rec.SetName,
		Rarity:     rec.Rarity,
		ExternalID: rec.ExternalID,
		Game:       gameFor(rec),
	})
	if err != nil {
		return ReconciledItem{}, false, err
	}

	condition := models.NormalizeCondition(rec.Condition)
	item := ReconciledItem{
		CatalogEntryID: entry.ID,
		Name:           entry.Name,
		SetName:        entry.SetName,
		Condition:      condition,
		Quantity:       rec.Quantity,
		UnitPrice:      rec.UnitPrice,
	}

	existing, err := r.store.FindHolding(ctx, userID, entry.ID, condition)
	switch {
	case err == nil:
		if err := r.store.UpdateHolding(ctx, existing.ID, rec.Quantity, rec.UnitPrice); err != nil {
			return ReconciledItem{}, false, &ReconciliationError{Record: rec.DisplayName, Err: err}
		}
		item.HoldingID = existing.ID
		return item, false, nil
	case errors.Is(err, store.ErrNotFound):
		holding := &models.HoldingRecord{
			UserID:         userID,
			CatalogEntryID: entry.ID,
			Condition:      condition,
			Quantity:       rec.Quantity,
			UnitPrice:      rec.UnitPrice,
		}
		if err := r.store.InsertHolding(ctx, holding); err != nil {
			return ReconciledItem{}, false, &ReconciliationError{Record: rec.DisplayName, Err: err}
		}
		item.HoldingID = holding.ID
		return item, true, nil
	default:
		return ReconciledItem{}, false, &ReconciliationError{Record: rec.DisplayName, Err: err}
	}
}

// isMilestone reports whether progress is published after record idx (1-based)
func isMilestone(idx, total int) bool {
	return idx == 1 || idx == 10 || idx%50 == 0 || idx == total
}

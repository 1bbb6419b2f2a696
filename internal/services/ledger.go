package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
)

// Window lengths for growth statistics
var growthPeriods = map[string]int{
	"week":  7,
	"month": 30,
	"year":  365,
}

const (
	defaultGrowthPeriod = "month"
	recentChangesLimit  = 10
	// DefaultHistoryLimit caps snapshot history requests without an explicit limit
	DefaultHistoryLimit = 30
)

var hundred = decimal.NewFromInt(100)

// Aggregates are the inventory totals a snapshot records
type Aggregates struct {
	TotalItems   int             `json:"total_items"`
	TotalCards   int             `json:"total_cards"`
	TotalValue   decimal.Decimal `json:"total_value"`
	AvgCardValue decimal.Decimal `json:"avg_card_value"`
}

// ComputeAggregates totals a user's holdings. Average card value is zero
// for an empty inventory.
func ComputeAggregates(holdings []models.HoldingRecord) Aggregates {
	agg := Aggregates{TotalValue: decimal.Zero, AvgCardValue: decimal.Zero}
	for _, h := range holdings {
		agg.TotalItems++
		agg.TotalCards += h.Quantity
		agg.TotalValue = agg.TotalValue.Add(h.LineValue())
	}
	if agg.TotalCards > 0 {
		agg.AvgCardValue = agg.TotalValue.DivRound(decimal.NewFromInt(int64(agg.TotalCards)), 4)
	}
	return agg
}

// SourceInfo describes where a batch came from
type SourceInfo struct {
	FileName string
	FileSize int64
	Metadata map[string]any
}

// CommitOutcome is the reconciliation summary stored alongside a snapshot
type CommitOutcome struct {
	Mode    models.SyncMode
	Added   int
	Updated int
	Errors  int
}

// Ledger records daily snapshots and the change between consecutive ones
type Ledger struct {
	store store.LedgerStore
	log   *zap.Logger
	now   func() time.Time
}

// NewLedger creates a ledger over the snapshot store
func NewLedger(ledger store.LedgerStore, log *zap.Logger) *Ledger {
	return &Ledger{store: ledger, log: log, now: time.Now}
}

// Commit upserts today's snapshot for userID and the change record comparing
// it with the latest earlier snapshot. A second commit on the same day
// overwrites both rows.
func (l *Ledger) Commit(ctx context.Context, userID string, agg Aggregates, src SourceInfo, outcome CommitOutcome) (*models.Snapshot, *models.ChangeRecord, error) {
	now := l.now()
	today := now.Format(models.DateFormat)

	snapMeta := map[string]any{
		"sync_result": map[string]any{
			"items_added":   outcome.Added,
			"items_updated": outcome.Updated,
			"errors":        outcome.Errors,
			"replace_all":   outcome.Mode == models.SyncModeReplaceAll,
		},
	}
	for k, v := range src.Metadata {
		if k != "sync_result" {
			snapMeta[k] = v
		}
	}
	metadata, err := encodeMetadata(snapMeta)
	if err != nil {
		return nil, nil, &LedgerError{Op: "encode snapshot metadata", Err: err}
	}

	snap := &models.Snapshot{
		UserID:       userID,
		SnapshotDate: today,
		TotalItems:   agg.TotalItems,
		TotalCards:   agg.TotalCards,
		TotalValue:   agg.TotalValue,
		AvgCardValue: agg.AvgCardValue,
		FileName:     src.FileName,
		FileSize:     src.FileSize,
		Metadata:     metadata,
		UploadedAt:   now,
	}
	if err := l.store.UpsertSnapshot(ctx, snap); err != nil {
		return nil, nil, &LedgerError{Op: "upsert snapshot", Err: err}
	}

	prev, err := l.store.PreviousSnapshot(ctx, userID, today)
	switch {
	case errors.Is(err, store.ErrNotFound):
		prev = nil
	case err != nil:
		return snap, nil, &LedgerError{Op: "load previous snapshot", Err: err}
	}

	change, err := buildChange(snap, prev, outcome, src.FileName)
	if err != nil {
		return snap, nil, &LedgerError{Op: "encode change metadata", Err: err}
	}
	if err := l.store.UpsertChangeRecord(ctx, change); err != nil {
		return snap, nil, &LedgerError{Op: "upsert change record", Err: err}
	}

	l.log.Info("committed snapshot",
		zap.String("user", userID),
		zap.Uint("snapshot_id", snap.ID),
		zap.String("date", today),
		zap.String("change_type", string(change.ChangeType)),
		zap.Int("total_items", snap.TotalItems),
		zap.String("total_value", snap.TotalValue.StringFixed(2)))
	return snap, change, nil
}

// buildChange compares snap with prev. prev is nil for a user's first snapshot.
func buildChange(snap, prev *models.Snapshot, outcome CommitOutcome, sourceFile string) (*models.ChangeRecord, error) {
	replace := outcome.Mode == models.SyncModeReplaceAll
	change := &models.ChangeRecord{
		UserID:       snap.UserID,
		SnapshotID:   snap.ID,
		ChangeDate:   snap.SnapshotDate,
		ItemsAdded:   outcome.Added,
		ItemsUpdated: outcome.Updated,
		SourceFile:   sourceFile,
	}
	meta := map[string]any{
		"errors":      outcome.Errors,
		"replace_all": replace,
	}

	if prev == nil {
		change.TotalItemsChange = snap.TotalItems
		change.TotalCardsChange = snap.TotalCards
		change.TotalValueChange = snap.TotalValue
		change.AvgCardValueChange = snap.AvgCardValue
		change.TotalItemsPercentChange = 100
		change.TotalCardsPercentChange = 100
		change.TotalValuePercentChange = 100
		change.AvgCardValuePercentChange = 100
		change.ValueAdded = snap.TotalValue
		change.ValueRemoved = decimal.Zero
		change.ChangeType = models.ChangeTypeInitialUpload
		if replace {
			change.ChangeType = models.ChangeTypeReplaceAll
		}
	} else {
		prevID := prev.ID
		change.PreviousSnapshotID = &prevID
		change.TotalItemsChange = snap.TotalItems - prev.TotalItems
		change.TotalCardsChange = snap.TotalCards - prev.TotalCards
		change.TotalValueChange = snap.TotalValue.Sub(prev.TotalValue)
		change.AvgCardValueChange = snap.AvgCardValue.Sub(prev.AvgCardValue)
		change.TotalItemsPercentChange = percentChange(decimal.NewFromInt(int64(change.TotalItemsChange)), decimal.NewFromInt(int64(prev.TotalItems)))
		change.TotalCardsPercentChange = percentChange(decimal.NewFromInt(int64(change.TotalCardsChange)), decimal.NewFromInt(int64(prev.TotalCards)))
		change.TotalValuePercentChange = percentChange(change.TotalValueChange, prev.TotalValue)
		change.AvgCardValuePercentChange = percentChange(change.AvgCardValueChange, prev.AvgCardValue)
		change.ValueAdded = decimal.Max(decimal.Zero, change.TotalValueChange)
		change.ValueRemoved = decimal.Max(decimal.Zero, change.TotalValueChange.Neg())
		change.DaysSinceLastChange = daysBetween(prev.SnapshotDate, snap.SnapshotDate)
		change.ChangeType = models.ChangeTypeSync
		if replace {
			change.ChangeType = models.ChangeTypeReplaceAll
		}
		meta["previous_snapshot"] = map[string]any{
			"id":          prev.ID,
			"date":        prev.SnapshotDate,
			"total_items": prev.TotalItems,
			"total_value": prev.TotalValue.StringFixed(2),
		}
	}

	if replace && change.TotalItemsChange < 0 {
		change.ItemsRemoved = -change.TotalItemsChange
	}

	metadata, err := encodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	change.Metadata = metadata
	return change, nil
}

// percentChange is delta/previous*100 rounded to two places, or 0 when previous is 0
func percentChange(delta, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return delta.Div(previous).Mul(hundred).Round(2).InexactFloat64()
}

// daysBetween is the number of calendar days from one ISO date to another
func daysBetween(from, to string) int {
	a, errA := time.Parse(models.DateFormat, from)
	b, errB := time.Parse(models.DateFormat, to)
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

func encodeMetadata(v map[string]any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// GrowthStats sums the change records of the trailing week, month or year.
// Unknown periods fall back to month.
func (l *Ledger) GrowthStats(ctx context.Context, userID, period string) (*models.GrowthStats, error) {
	days, ok := growthPeriods[period]
	if !ok {
		period = defaultGrowthPeriod
		days = growthPeriods[period]
	}
	since := l.now().AddDate(0, 0, -days).Format(models.DateFormat)

	changes, err := l.store.ListChangeRecords(ctx, userID, since, 0)
	if err != nil {
		return nil, &LedgerError{Op: "list change records", Err: err}
	}

	stats := &models.GrowthStats{
		Period:         period,
		Days:           days,
		TotalChanges:   len(changes),
		ValueGrowth:    decimal.Zero,
		AvgValueChange: decimal.Zero,
		RecentChanges:  []models.ChangeRecord{},
	}
	if len(changes) == 0 {
		return stats, nil
	}

	for _, c := range changes {
		stats.ItemsGrowth += c.TotalItemsChange
		stats.CardsGrowth += c.TotalCardsChange
		stats.ValueGrowth = stats.ValueGrowth.Add(c.TotalValueChange)
	}
	n := len(changes)
	stats.AvgItemsChange = float64(stats.ItemsGrowth) / float64(n)
	stats.AvgCardsChange = float64(stats.CardsGrowth) / float64(n)
	stats.AvgValueChange = stats.ValueGrowth.DivRound(decimal.NewFromInt(int64(n)), 2)

	if n > recentChangesLimit {
		changes = changes[:recentChangesLimit]
	}
	stats.RecentChanges = changes
	return stats, nil
}

// History returns userID's snapshots newest first
func (l *Ledger) History(ctx context.Context, userID string, limit int) (*models.ValueHistoryResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	snapshots, err := l.store.ListSnapshots(ctx, userID, limit)
	if err != nil {
		return nil, &LedgerError{Op: "list snapshots", Err: err}
	}
	if snapshots == nil {
		snapshots = []models.Snapshot{}
	}
	return &models.ValueHistoryResponse{Snapshots: snapshots, Total: len(snapshots)}, nil
}

// RecentChanges returns change records of the last days days, newest first
func (l *Ledger) RecentChanges(ctx context.Context, userID string, days, limit int) ([]models.ChangeRecord, error) {
	if days <= 0 {
		days = growthPeriods[defaultGrowthPeriod]
	}
	since := l.now().AddDate(0, 0, -days).Format(models.DateFormat)
	changes, err := l.store.ListChangeRecords(ctx, userID, since, limit)
	if err != nil {
		return nil, &LedgerError{Op: "list change records", Err: err}
	}
	if changes == nil {
		changes = []models.ChangeRecord{}
	}
	return changes, nil
}

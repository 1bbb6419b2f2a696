package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/codyseavey/tcg-inventory-sync/internal/metrics"
	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

// Limited bounds the number of storage operations in flight across all
// batches. Callers block (honoring ctx) until a slot frees up.
type Limited struct {
	next Store
	sem  *semaphore.Weighted
}

// NewLimited wraps next so that at most size operations run concurrently
func NewLimited(next Store, size int) *Limited {
	if size < 1 {
		size = 1
	}
	return &Limited{next: next, sem: semaphore.NewWeighted(int64(size))}
}

func (l *Limited) acquire(ctx context.Context) (func(), error) {
	start := time.Now()
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	metrics.StoreWaitDuration.Observe(time.Since(start).Seconds())
	metrics.StoreInFlight.Inc()
	return func() {
		metrics.StoreInFlight.Dec()
		l.sem.Release(1)
	}, nil
}

func (l *Limited) FindCatalogEntry(ctx context.Context, nameKey, setKey string) (*models.CatalogEntry, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.FindCatalogEntry(ctx, nameKey, setKey)
}

func (l *Limited) InsertCatalogEntryIfAbsent(ctx context.Context, entry *models.CatalogEntry) (bool, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()
	return l.next.InsertCatalogEntryIfAbsent(ctx, entry)
}

func (l *Limited) FindHolding(ctx context.Context, userID string, catalogEntryID uint, condition models.Condition) (*models.HoldingRecord, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.FindHolding(ctx, userID, catalogEntryID, condition)
}

func (l *Limited) InsertHolding(ctx context.Context, holding *models.HoldingRecord) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.InsertHolding(ctx, holding)
}

func (l *Limited) UpdateHolding(ctx context.Context, id uint, quantity int, unitPrice decimal.Decimal) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.UpdateHolding(ctx, id, quantity, unitPrice)
}

func (l *Limited) DeleteHoldings(ctx context.Context, userID string) (int64, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()
	return l.next.DeleteHoldings(ctx, userID)
}

func (l *Limited) ListHoldings(ctx context.Context, userID string) ([]models.HoldingRecord, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.ListHoldings(ctx, userID)
}

func (l *Limited) UpsertSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.UpsertSnapshot(ctx, snapshot)
}

func (l *Limited) PreviousSnapshot(ctx context.Context, userID, date string) (*models.Snapshot, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.PreviousSnapshot(ctx, userID, date)
}

func (l *Limited) ListSnapshots(ctx context.Context, userID string, limit int) ([]models.Snapshot, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.ListSnapshots(ctx, userID, limit)
}

func (l *Limited) UpsertChangeRecord(ctx context.Context, change *models.ChangeRecord) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.UpsertChangeRecord(ctx, change)
}

func (l *Limited) ListChangeRecords(ctx context.Context, userID, since string, limit int) ([]models.ChangeRecord, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.ListChangeRecords(ctx, userID, since, limit)
}

func (l *Limited) CreateUploadJob(ctx context.Context, job *models.UploadJob) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.CreateUploadJob(ctx, job)
}

func (l *Limited) SaveUploadJob(ctx context.Context, job *models.UploadJob) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return l.next.SaveUploadJob(ctx, job)
}

func (l *Limited) GetUploadJob(ctx context.Context, id string) (*models.UploadJob, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.GetUploadJob(ctx, id)
}

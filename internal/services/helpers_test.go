package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
	"github.com/codyseavey/tcg-inventory-sync/internal/progress"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
	"github.com/codyseavey/tcg-inventory-sync/internal/testutil"
)

var errInjected = errors.New("injected storage fault")

// faultyStore fails selected operations of an otherwise working store
type faultyStore struct {
	store.Store
	failNameKey    string
	failSnapshot   bool
	failDeleteHold bool
}

func (f *faultyStore) FindCatalogEntry(ctx context.Context, nameKey, setKey string) (*models.CatalogEntry, error) {
	if f.failNameKey != "" && nameKey == f.failNameKey {
		return nil, errInjected
	}
	return f.Store.FindCatalogEntry(ctx, nameKey, setKey)
}

func (f *faultyStore) UpsertSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	if f.failSnapshot {
		return errInjected
	}
	return f.Store.UpsertSnapshot(ctx, snapshot)
}

func (f *faultyStore) DeleteHoldings(ctx context.Context, userID string) (int64, error) {
	if f.failDeleteHold {
		return 0, errInjected
	}
	return f.Store.DeleteHoldings(ctx, userID)
}

// recordingPublisher captures progress updates
type recordingPublisher struct {
	mu      sync.Mutex
	updates []int
	status  []string
}

func (p *recordingPublisher) Publish(jobID string, percent int, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, percent)
	p.status = append(p.status, status)
}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse(models.DateFormat, date)
	if err != nil {
		panic(err)
	}
	t = t.Add(12 * time.Hour)
	return func() time.Time { return t }
}

// newTestStore returns a store over a fresh in-memory database
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	return store.NewGormStore(testutil.NewDB(t))
}

// newTestService builds a pipeline over st with the ledger clock pinned to date
func newTestService(st store.Store, date string) *SyncService {
	svc := NewSyncService(st, progress.NewTracker(100, time.Minute), zap.NewNop())
	svc.ledger.now = fixedClock(date)
	return svc
}

func rec(name, set string, qty int, price string) models.InventoryRecord {
	return models.InventoryRecord{
		DisplayName: name,
		SetName:     set,
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// cancellingStore cancels the caller's context once the first holding is written
type cancellingStore struct {
	store.Store
	cancel context.CancelFunc
	once   sync.Once
}

func (c *cancellingStore) InsertHolding(ctx context.Context, holding *models.HoldingRecord) error {
	err := c.Store.InsertHolding(ctx, holding)
	c.once.Do(c.cancel)
	return err
}

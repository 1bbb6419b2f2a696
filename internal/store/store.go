// Package store is the repository boundary between the sync services and the
// relational database. Every method is a single storage round trip.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

// ErrNotFound is returned by lookups that match no row
var ErrNotFound = errors.New("not found")

// CatalogStore persists shared card definitions
type CatalogStore interface {
	FindCatalogEntry(ctx context.Context, nameKey, setKey string) (*models.CatalogEntry, error)
	// InsertCatalogEntryIfAbsent inserts entry unless its (name_key, set_key)
	// already exists. created is false when another writer got there first.
	InsertCatalogEntryIfAbsent(ctx context.Context, entry *models.CatalogEntry) (created bool, err error)
}

// HoldingStore persists per-user holdings
type HoldingStore interface {
	FindHolding(ctx context.Context, userID string, catalogEntryID uint, condition models.Condition) (*models.HoldingRecord, error)
	InsertHolding(ctx context.Context, holding *models.HoldingRecord) error
	UpdateHolding(ctx context.Context, id uint, quantity int, unitPrice decimal.Decimal) error
	DeleteHoldings(ctx context.Context, userID string) (int64, error)
	ListHoldings(ctx context.Context, userID string) ([]models.HoldingRecord, error)
}

// LedgerStore persists snapshots and change records
type LedgerStore interface {
	// UpsertSnapshot inserts or overwrites the (user, date) snapshot and
	// refreshes snapshot with the stored row.
	UpsertSnapshot(ctx context.Context, snapshot *models.Snapshot) error
	// PreviousSnapshot returns the latest snapshot dated strictly before date
	PreviousSnapshot(ctx context.Context, userID, date string) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context, userID string, limit int) ([]models.Snapshot, error)
	// UpsertChangeRecord inserts or overwrites the (user, snapshot) change record
	UpsertChangeRecord(ctx context.Context, change *models.ChangeRecord) error
	// ListChangeRecords returns change records dated on or after since, newest first
	ListChangeRecords(ctx context.Context, userID, since string, limit int) ([]models.ChangeRecord, error)
}

// JobStore persists upload job bookkeeping
type JobStore interface {
	CreateUploadJob(ctx context.Context, job *models.UploadJob) error
	SaveUploadJob(ctx context.Context, job *models.UploadJob) error
	GetUploadJob(ctx context.Context, id string) (*models.UploadJob, error)
}

// Store is the full repository used by the sync pipeline
type Store interface {
	CatalogStore
	HoldingStore
	LedgerStore
	JobStore
}

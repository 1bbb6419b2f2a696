package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DateFormat is the layout of SnapshotDate and ChangeDate.
// ISO dates sort lexically in date order, which the "previous snapshot" query relies on.
const DateFormat = "2006-01-02"

type ChangeType string

const (
	ChangeTypeInitialUpload ChangeType = "initial_upload"
	ChangeTypeSync          ChangeType = "sync"
	ChangeTypeReplaceAll    ChangeType = "replace_all"
)

// Snapshot is a user's daily inventory rollup. A second sync on the same
// date overwrites the aggregates of the existing row.
type Snapshot struct {
	ID           uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       string          `json:"user_id" gorm:"not null;size:128;uniqueIndex:idx_snapshot_user_date"`
	SnapshotDate string          `json:"snapshot_date" gorm:"not null;size:10;uniqueIndex:idx_snapshot_user_date,sort:desc"`
	TotalItems   int             `json:"total_items"`
	TotalCards   int             `json:"total_cards"`
	TotalValue   decimal.Decimal `json:"total_value" gorm:"type:numeric(14,2);not null"`
	AvgCardValue decimal.Decimal `json:"avg_card_value" gorm:"type:numeric(14,4);not null"`
	FileName     string          `json:"file_name,omitempty"`
	FileSize     int64           `json:"file_size,omitempty"`
	Metadata     datatypes.JSON  `json:"metadata,omitempty"`
	UploadedAt   time.Time       `json:"upload_timestamp"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ChangeRecord compares a snapshot with the one immediately before it for
// the same user. Exactly one exists per snapshot.
type ChangeRecord struct {
	ID                 uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID             string `json:"user_id" gorm:"not null;size:128;uniqueIndex:idx_change_user_snapshot;index:idx_change_user_date"`
	SnapshotID         uint   `json:"snapshot_id" gorm:"not null;uniqueIndex:idx_change_user_snapshot"`
	PreviousSnapshotID *uint  `json:"previous_snapshot_id"`
	ChangeDate         string `json:"change_date" gorm:"not null;size:10;index:idx_change_user_date,sort:desc"`

	TotalItemsChange   int             `json:"total_items_change"`
	TotalCardsChange   int             `json:"total_cards_change"`
	TotalValueChange   decimal.Decimal `json:"total_value_change" gorm:"type:numeric(14,2);not null"`
	AvgCardValueChange decimal.Decimal `json:"avg_card_value_change" gorm:"type:numeric(14,4);not null"`

	TotalItemsPercentChange   float64 `json:"total_items_percent_change"`
	TotalCardsPercentChange   float64 `json:"total_cards_percent_change"`
	TotalValuePercentChange   float64 `json:"total_value_percent_change"`
	AvgCardValuePercentChange float64 `json:"avg_card_value_percent_change"`

	ItemsAdded   int             `json:"items_added"`
	ItemsUpdated int             `json:"items_updated"`
	ItemsRemoved int             `json:"items_removed"`
	ValueAdded   decimal.Decimal `json:"value_added" gorm:"type:numeric(14,2);not null"`
	ValueRemoved decimal.Decimal `json:"value_removed" gorm:"type:numeric(14,2);not null"`

	DaysSinceLastChange int            `json:"days_since_last_change"`
	ChangeType          ChangeType     `json:"change_type" gorm:"not null;size:32"`
	SourceFile          string         `json:"source_file,omitempty"`
	Metadata            datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// GrowthStats aggregates the change records of a trailing window
type GrowthStats struct {
	Period         string          `json:"period"`
	Days           int             `json:"days"`
	TotalChanges   int             `json:"total_changes"`
	ItemsGrowth    int             `json:"items_growth"`
	CardsGrowth    int             `json:"cards_growth"`
	ValueGrowth    decimal.Decimal `json:"value_growth"`
	AvgItemsChange float64         `json:"avg_items_change"`
	AvgCardsChange float64         `json:"avg_cards_change"`
	AvgValueChange decimal.Decimal `json:"avg_value_change"`
	RecentChanges  []ChangeRecord  `json:"changes"`
}

// ValueHistoryResponse is the API response for snapshot history
type ValueHistoryResponse struct {
	Snapshots []Snapshot `json:"snapshots"`
	Total     int        `json:"total_snapshots"`
}

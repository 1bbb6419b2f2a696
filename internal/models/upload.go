package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SyncMode selects how a batch is applied to existing holdings
type SyncMode string

const (
	SyncModeMerge      SyncMode = "merge"
	SyncModeReplaceAll SyncMode = "replace_all"
)

// ParseSyncMode defaults anything other than "replace_all" to merge
func ParseSyncMode(s string) SyncMode {
	if SyncMode(s) == SyncModeReplaceAll {
		return SyncModeReplaceAll
	}
	return SyncModeMerge
}

type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed
func (s UploadStatus) IsTerminal() bool {
	return s == UploadStatusCompleted || s == UploadStatusFailed
}

// UploadJob tracks one ingestion batch from acceptance to its terminal state
type UploadJob struct {
	ID             string       `json:"id" gorm:"primaryKey;size:36"`
	UserID         string       `json:"user_id" gorm:"not null;size:128;index"`
	FileName       string       `json:"file_name,omitempty"`
	FileSize       int64        `json:"file_size,omitempty"`
	FileType       string       `json:"file_type,omitempty"`
	Mode           SyncMode     `json:"mode" gorm:"not null;size:16;default:'merge'"`
	Status         UploadStatus `json:"status" gorm:"not null;size:16;index"`
	TotalRecords   int          `json:"total_records"`
	ProcessedItems int          `json:"processed_items"`
	ItemsAdded     int          `json:"items_added"`
	ItemsUpdated   int          `json:"items_updated"`
	ErrorCount     int          `json:"error_count"`
	ErrorMessage   *string      `json:"error_message,omitempty" gorm:"type:text"`
	SnapshotID     *uint        `json:"snapshot_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}

// BeforeCreate assigns a random id to jobs created without one
func (j *UploadJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// InventoryRecord is one tokenized row handed over by an ingestion adapter
type InventoryRecord struct {
	DisplayName string          `json:"display_name"`
	SetName     string          `json:"set_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Condition   string          `json:"condition,omitempty"`
	Rarity      string          `json:"rarity,omitempty"`
	ExternalID  *string         `json:"external_id,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// RecordError is a per-record failure reported back to the caller
type RecordError struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// BatchResult is the summary returned for every submitted batch, including partial failures
type BatchResult struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	UploadID     string          `json:"upload_id"`
	SnapshotID   *uint           `json:"snapshot_id,omitempty"`
	TotalItems   int             `json:"total_items"`
	TotalCards   int             `json:"total_cards"`
	TotalValue   decimal.Decimal `json:"total_value"`
	ItemsAdded   int             `json:"items_added"`
	ItemsUpdated int             `json:"items_updated"`
	Errors       []RecordError   `json:"errors"`
	ReplaceAll   bool            `json:"replace_all"`
}

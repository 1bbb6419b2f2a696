package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

// GormStore implements Store on top of a gorm connection (SQLite or Postgres)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an already migrated connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) FindCatalogEntry(ctx context.Context, nameKey, setKey string) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := s.db.WithContext(ctx).
		Where("name_key = ? AND set_key = ?", nameKey, setKey).
		Order("id ASC").
		First(&entry).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

func (s *GormStore) InsertCatalogEntryIfAbsent(ctx context.Context, entry *models.CatalogEntry) (bool, error) {
	// The unique index on (name_key, set_key) arbitrates concurrent first sightings
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}, {Name: "set_key"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) FindHolding(ctx context.Context, userID string, catalogEntryID uint, condition models.Condition) (*models.HoldingRecord, error) {
	var holding models.HoldingRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND catalog_entry_id = ? AND condition = ?", userID, catalogEntryID, condition).
		First(&holding).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &holding, nil
}

func (s *GormStore) InsertHolding(ctx context.Context, holding *models.HoldingRecord) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(holding).Error
}

func (s *GormStore) UpdateHolding(ctx context.Context, id uint, quantity int, unitPrice decimal.Decimal) error {
	result := s.db.WithContext(ctx).Model(&models.HoldingRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity":   quantity,
			"unit_price": unitPrice,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteHoldings(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.HoldingRecord{})
	return result.RowsAffected, result.Error
}

func (s *GormStore) ListHoldings(ctx context.Context, userID string) ([]models.HoldingRecord, error) {
	var holdings []models.HoldingRecord
	err := s.db.WithContext(ctx).
		Preload("CatalogEntry").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&holdings).Error
	return holdings, err
}

func (s *GormStore) UpsertSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_items", "total_cards", "total_value", "avg_card_value",
			"file_name", "file_size", "metadata", "uploaded_at", "updated_at",
		}),
	}).Create(snapshot).Error
	if err != nil {
		return err
	}

	// Re-read so the caller sees the id of the row that won the conflict
	var stored models.Snapshot
	err = db.Where("user_id = ? AND snapshot_date = ?", snapshot.UserID, snapshot.SnapshotDate).
		First(&stored).Error
	if err != nil {
		return notFound(err)
	}
	*snapshot = stored
	return nil
}

func (s *GormStore) PreviousSnapshot(ctx context.Context, userID, date string) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date < ?", userID, date).
		Order("snapshot_date DESC").
		Order("id DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &snapshot, nil
}

func (s *GormStore) ListSnapshots(ctx context.Context, userID string, limit int) ([]models.Snapshot, error) {
	var snapshots []models.Snapshot
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("snapshot_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&snapshots).Error
	return snapshots, err
}

func (s *GormStore) UpsertChangeRecord(ctx context.Context, change *models.ChangeRecord) error {
	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "snapshot_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"previous_snapshot_id", "change_date",
			"total_items_change", "total_cards_change", "total_value_change", "avg_card_value_change",
			"total_items_percent_change", "total_cards_percent_change",
			"total_value_percent_change", "avg_card_value_percent_change",
			"items_added", "items_updated", "items_removed", "value_added", "value_removed",
			"days_since_last_change", "change_type", "source_file", "metadata", "updated_at",
		}),
	}).Create(change).Error
	if err != nil {
		return err
	}

	var stored models.ChangeRecord
	err = db.Where("user_id = ? AND snapshot_id = ?", change.UserID, change.SnapshotID).
		First(&stored).Error
	if err != nil {
		return notFound(err)
	}
	*change = stored
	return nil
}

func (s *GormStore) ListChangeRecords(ctx context.Context, userID, since string, limit int) ([]models.ChangeRecord, error) {
	var changes []models.ChangeRecord
	query := s.db.WithContext(ctx).
		Where("user_id = ? AND change_date >= ?", userID, since).
		Order("change_date DESC").
		Order("updated_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&changes).Error
	return changes, err
}

func (s *GormStore) CreateUploadJob(ctx context.Context, job *models.UploadJob) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *GormStore) SaveUploadJob(ctx context.Context, job *models.UploadJob) error {
	return s.db.WithContext(ctx).Save(job).Error
}

func (s *GormStore) GetUploadJob(ctx context.Context, id string) (*models.UploadJob, error) {
	var job models.UploadJob
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

// cleanupDuplicateCatalogEntries collapses catalog rows that share a
// (name_key, set_key) pair before AutoMigrate adds the unique index.
// Such rows can exist in databases created before catalog inserts became
// conflict-tolerant. Only unreferenced duplicates are removed.
func cleanupDuplicateCatalogEntries(db *gorm.DB, log *zap.Logger) error {
	m := db.Migrator()
	if !m.HasTable("catalog_entries") || !m.HasColumn("catalog_entries", "name_key") {
		return nil
	}

	// Rows written before keys were populated
	result := db.Exec(`UPDATE catalog_entries
		SET name_key = LOWER(TRIM(name)), set_key = LOWER(TRIM(set_name))
		WHERE name_key IS NULL OR name_key = ''`)
	if result.Error != nil {
		log.Warn("failed to backfill catalog keys", zap.Error(result.Error))
	}

	query := `DELETE FROM catalog_entries
		WHERE id NOT IN (
			SELECT MIN(id) FROM catalog_entries GROUP BY name_key, set_key
		)`
	if m.HasTable("holding_records") {
		query += ` AND id NOT IN (SELECT catalog_entry_id FROM holding_records)`
	}
	result = db.Exec(query)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Info("removed duplicate catalog entries", zap.Int64("rows", result.RowsAffected))
	}

	var remaining int64
	err := db.Raw(`SELECT COUNT(*) FROM (
			SELECT name_key, set_key FROM catalog_entries
			GROUP BY name_key, set_key HAVING COUNT(*) > 1
		) dup`).Scan(&remaining).Error
	if err != nil {
		return err
	}
	if remaining > 0 {
		return fmt.Errorf("%d catalog keys still have duplicate rows referenced by holdings", remaining)
	}
	return nil
}

// RunMigrations runs data fixes after schema changes. Safe to run repeatedly.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	fixes := []struct {
		name string
		sql  string
	}{
		{"holding conditions", `UPDATE holding_records SET condition = 'NM' WHERE condition IS NULL OR condition = ''`},
		{"catalog rarity", `UPDATE catalog_entries SET rarity = 'Unknown' WHERE rarity IS NULL OR rarity = ''`},
		{"upload modes", `UPDATE upload_jobs SET mode = 'merge' WHERE mode IS NULL OR mode = ''`},
	}

	for _, f := range fixes {
		result := db.Exec(f.sql)
		if result.Error != nil {
			return fmt.Errorf("migrate %s: %w", f.name, result.Error)
		}
		if result.RowsAffected > 0 {
			log.Info("normalized legacy rows", zap.String("fix", f.name), zap.Int64("rows", result.RowsAffected))
		}
	}
	return nil
}

// FailInterruptedUploads marks jobs that have sat in pending or processing
// for longer than staleAfter as failed. Only the serving process calls it;
// other processes sharing the database must not touch in-flight jobs.
func FailInterruptedUploads(db *gorm.DB, staleAfter time.Duration, log *zap.Logger) (int64, error) {
	now := time.Now()
	result := db.Model(&models.UploadJob{}).
		Where("status IN ? AND updated_at < ?",
			[]models.UploadStatus{models.UploadStatusPending, models.UploadStatusProcessing},
			now.Add(-staleAfter)).
		Updates(map[string]any{
			"status":        models.UploadStatusFailed,
			"error_message": "interrupted by restart",
			"completed_at":  now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("fail interrupted uploads: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Warn("marked interrupted uploads as failed", zap.Int64("rows", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

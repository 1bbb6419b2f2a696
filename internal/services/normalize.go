package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

// UnknownSet is stored for records that arrive without a set name
const UnknownSet = "Unknown"

// NormalizeRecords trims and defaults raw records and rounds prices to the
// cent. Rows without a name or with a non-positive quantity are dropped; the
// number dropped is returned.
// Input order is preserved.
func NormalizeRecords(records []models.InventoryRecord) ([]models.InventoryRecord, int) {
	out := make([]models.InventoryRecord, 0, len(records))
	dropped := 0

	for _, r := range records {
		r.DisplayName = strings.TrimSpace(r.DisplayName)
		if r.DisplayName == "" || r.Quantity <= 0 {
			dropped++
			continue
		}

		r.SetName = strings.TrimSpace(r.SetName)
		if r.SetName == "" {
			r.SetName = UnknownSet
		}
		r.Condition = string(models.NormalizeCondition(r.Condition))
		r.Rarity = strings.TrimSpace(r.Rarity)
		if r.Rarity == "" {
			r.Rarity = models.DefaultRarity
		}
		if r.UnitPrice.IsNegative() {
			r.UnitPrice = decimal.Zero
		}
		// Prices are stored as cents on every backend
		r.UnitPrice = r.UnitPrice.Round(2)
		if r.ExternalID != nil {
			id := strings.TrimSpace(*r.ExternalID)
			if id == "" {
				r.ExternalID = nil
			} else {
				r.ExternalID = &id
			}
		}
		r.Category = strings.TrimSpace(r.Category)

		out = append(out, r)
	}
	return out, dropped
}

// gameFor prefers an explicit category and falls back to keyword detection
func gameFor(r models.InventoryRecord) models.Game {
	if g, ok := models.ParseGame(r.Category); ok {
		return g
	}
	return models.DetectGame(r.DisplayName, r.SetName)
}

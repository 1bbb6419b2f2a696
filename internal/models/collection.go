package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Condition is the physical grade a seller lists a card under.
// Exports use both short codes ("NM") and long forms ("Near Mint Foil");
// the value is kept as supplied and is part of the holding identity.
type Condition string

const (
	ConditionNearMint      Condition = "NM"
	ConditionLightlyPlayed Condition = "LP"
	ConditionModerate      Condition = "MP"
	ConditionHeavilyPlayed Condition = "HP"
	ConditionDamaged       Condition = "DMG"
)

// NormalizeCondition trims the supplied grade and defaults empty values to NM
func NormalizeCondition(c string) Condition {
	c = strings.TrimSpace(c)
	if c == "" {
		return ConditionNearMint
	}
	return Condition(c)
}

// HoldingRecord is one user's position in one catalog entry under one condition.
// Quantity and UnitPrice are replaced on every sync, never accumulated.
type HoldingRecord struct {
	ID             uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         string          `json:"user_id" gorm:"not null;size:128;uniqueIndex:idx_holding_identity;index:idx_holding_user"`
	CatalogEntryID uint            `json:"catalog_entry_id" gorm:"not null;uniqueIndex:idx_holding_identity"`
	CatalogEntry   CatalogEntry    `json:"card" gorm:"foreignKey:CatalogEntryID"`
	Condition      Condition       `json:"condition" gorm:"not null;size:64;uniqueIndex:idx_holding_identity;default:'NM'"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2);not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LineValue is quantity times unit price
func (h HoldingRecord) LineValue() decimal.Decimal {
	return h.UnitPrice.Mul(decimal.NewFromInt(int64(h.Quantity)))
}

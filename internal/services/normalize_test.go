package services

import (
	"testing"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

func TestNormalizeRecords(t *testing.T) {
	blank := " "
	id := " 4521 "
	records := []models.InventoryRecord{
		{DisplayName: "  Sol Ring ", Quantity: 2, UnitPrice: dec("1.5"), ExternalID: &id},
		{DisplayName: "", Quantity: 3},
		{DisplayName: "No Stock", Quantity: 0},
		{DisplayName: "Refund", Quantity: 1, UnitPrice: dec("-4"), SetName: " Alpha ", Condition: " LP ", Rarity: " Rare ", ExternalID: &blank},
	}

	got, dropped := NormalizeRecords(records)
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if len(got) != 2 {
		t.Fatalf("kept %d records, want 2", len(got))
	}

	first := got[0]
	if first.DisplayName != "Sol Ring" || first.SetName != UnknownSet {
		t.Errorf("first = %q/%q, want Sol Ring/Unknown", first.DisplayName, first.SetName)
	}
	if first.Condition != "NM" || first.Rarity != models.DefaultRarity {
		t.Errorf("first defaults = %q/%q, want NM/Unknown", first.Condition, first.Rarity)
	}
	if first.ExternalID == nil || *first.ExternalID != "4521" {
		t.Errorf("ExternalID = %v, want 4521", first.ExternalID)
	}

	second := got[1]
	if !second.UnitPrice.IsZero() {
		t.Errorf("negative price = %s, want clamped to 0", second.UnitPrice)
	}
	if second.SetName != "Alpha" || second.Condition != "LP" || second.Rarity != "Rare" {
		t.Errorf("second = %+v", second)
	}
	if second.ExternalID != nil {
		t.Errorf("blank ExternalID should be dropped, got %q", *second.ExternalID)
	}
}

func TestNormalizeRoundsPriceToCents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"0.004", "0"},
		{"2.499", "2.5"},
		{"3.25", "3.25"},
	}
	for _, tt := range tests {
		got, _ := NormalizeRecords([]models.InventoryRecord{{DisplayName: "Card", Quantity: 1, UnitPrice: dec(tt.in)}})
		if !got[0].UnitPrice.Equal(dec(tt.want)) {
			t.Errorf("NormalizeRecords(price %s) = %s, want %s", tt.in, got[0].UnitPrice, tt.want)
		}
	}
}

func TestGameFor(t *testing.T) {
	tests := []struct {
		rec  models.InventoryRecord
		want models.Game
	}{
		{models.InventoryRecord{DisplayName: "Charizard", SetName: "Base Set", Category: "Pokemon"}, models.GamePokemon},
		{models.InventoryRecord{DisplayName: "Charizard", SetName: "Base Set"}, models.GamePokemon},
		{models.InventoryRecord{DisplayName: "Lightning Bolt", SetName: "Alpha", Category: "Magic: The Gathering"}, models.GameMagic},
		{models.InventoryRecord{DisplayName: "Something", SetName: "Unknown"}, models.GameMagic},
	}
	for _, tt := range tests {
		if got := gameFor(tt.rec); got != tt.want {
			t.Errorf("gameFor(%q, %q, %q) = %s, want %s", tt.rec.DisplayName, tt.rec.SetName, tt.rec.Category, got, tt.want)
		}
	}
}

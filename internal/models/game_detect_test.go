package models

import (
	"testing"
)

func TestDetectGame(t *testing.T) {
	tests := []struct {
		name     string
		product  string
		set      string
		expected Game
	}{
		{"Pokemon keyword in name", "Charizard (Holo)", "", GamePokemon},
		{"Pokemon set name", "Some Trainer", "Evolving Skies", GamePokemon},
		{"Pokemon multiword set", "Energy Card", "Sword & Shield", GamePokemon},
		{"Yu-Gi-Oh keyword", "Blue-Eyes White Dragon", "Legend of Blue Eyes", GameYugioh},
		{"Magic keyword", "Jace, the Mind Sculptor", "Worldwake", GameMagic},
		{"Magic set", "Lightning Bolt", "Revised", GameMagic},
		{"Unknown defaults to Magic", "Bolt", "SetA", GameMagic},
		{"Substring does not match word", "Flash", "Mirage", GameMagic},
		{"Case insensitive", "PIKACHU", "", GamePokemon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectGame(tt.product, tt.set)
			if result != tt.expected {
				t.Errorf("DetectGame(%q, %q) = %s, want %s", tt.product, tt.set, result, tt.expected)
			}
		})
	}
}

func TestParseGame(t *testing.T) {
	tests := []struct {
		in     string
		want   Game
		wantOK bool
	}{
		{"magic", GameMagic, true},
		{"MTG", GameMagic, true},
		{"Pokemon", GamePokemon, true},
		{"Pokémon", GamePokemon, true},
		{"Yu-Gi-Oh!", GameYugioh, true},
		{"", "", false},
		{"flesh and blood", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseGame(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseGame(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCatalogKey(t *testing.T) {
	name, set := CatalogKey("  Bolt ", "SetA")
	if name != "bolt" || set != "seta" {
		t.Errorf("CatalogKey = (%q, %q), want (\"bolt\", \"seta\")", name, set)
	}
}

func TestNormalizeCondition(t *testing.T) {
	if got := NormalizeCondition(""); got != ConditionNearMint {
		t.Errorf("NormalizeCondition(\"\") = %q, want NM", got)
	}
	if got := NormalizeCondition(" Lightly Played "); got != "Lightly Played" {
		t.Errorf("NormalizeCondition trims to %q", got)
	}
}

func TestParseSyncMode(t *testing.T) {
	if ParseSyncMode("replace_all") != SyncModeReplaceAll {
		t.Error("replace_all should parse to SyncModeReplaceAll")
	}
	if ParseSyncMode("") != SyncModeMerge || ParseSyncMode("bogus") != SyncModeMerge {
		t.Error("unknown modes should default to merge")
	}
}

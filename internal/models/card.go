package models

import (
	"strings"
	"time"
)

type Game string

const (
	GameMagic   Game = "magic"
	GamePokemon Game = "pokemon"
	GameYugioh  Game = "yugioh"
)

// DefaultRarity is stored when an import row carries no rarity column
const DefaultRarity = "Unknown"

// CatalogEntry is a card printing shared by every user's inventory.
// (NameKey, SetKey) is the identity: lower-cased name and set name.
type CatalogEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string    `json:"name" gorm:"not null"`
	SetName    string    `json:"set_name" gorm:"not null"`
	NameKey    string    `json:"-" gorm:"not null;uniqueIndex:idx_catalog_name_set"`
	SetKey     string    `json:"-" gorm:"not null;uniqueIndex:idx_catalog_name_set"`
	Rarity     string    `json:"rarity" gorm:"not null;default:'Unknown'"`
	ExternalID *string   `json:"external_id,omitempty" gorm:"index"`
	Game       Game      `json:"game" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CatalogKey returns the case-insensitive identity of a (name, set) pair
func CatalogKey(name, setName string) (string, string) {
	return strings.ToLower(strings.TrimSpace(name)), strings.ToLower(strings.TrimSpace(setName))
}

// ParseGame maps the category strings seen in exports to a Game.
// Returns false for empty or unrecognised values so callers can fall back to detection.
func ParseGame(s string) (Game, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "magic", "mtg", "magic: the gathering", "magic the gathering":
		return GameMagic, true
	case "pokemon", "pokémon", "ptcg":
		return GamePokemon, true
	case "yugioh", "yu-gi-oh", "yu-gi-oh!", "ygo":
		return GameYugioh, true
	default:
		return "", false
	}
}

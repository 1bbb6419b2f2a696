package models

import (
	"strings"
	"unicode"
)

// Keyword tables used when an export row has no category column.
// Matching is on whole words (or whole phrases), so "Flash" does not hit "ash".
var (
	pokemonKeywords = []string{
		"pikachu", "charizard", "blastoise", "venusaur", "pokemon", "pokémon",
		"team rocket", "gym leader", "bulbasaur", "squirtle", "charmander",
		"mew", "mewtwo", "lugia", "ho-oh", "rayquaza", "groudon", "kyogre",
		"arceus", "dialga", "palkia", "giratina", "reshiram", "zekrom", "kyurem",
	}

	pokemonSets = []string{
		"base set", "jungle", "fossil", "team rocket", "gym heroes", "gym challenge",
		"neo genesis", "neo discovery", "neo revelation", "neo destiny",
		"expedition", "aquapolis", "skyridge", "ex ruby", "ex sapphire",
		"ex dragon", "ex emerald", "ex unseen forces", "ex delta species",
		"ex holon phantoms", "ex crystal guardians", "ex dragon frontiers",
		"diamond & pearl", "mysterious treasures", "secret wonders",
		"majestic dawn", "stormfront", "platinum", "heartgold soulsilver",
		"call of legends", "black & white", "noble victories", "dark explorers",
		"plasma storm", "flashfire", "phantom forces", "primal clash",
		"roaring skies", "ancient origins", "breakpoint", "fates collide",
		"evolutions", "sun & moon", "burning shadows", "ultra prism",
		"lost thunder", "team up", "unbroken bonds", "hidden fates",
		"cosmic eclipse", "sword & shield", "rebel clash", "darkness ablaze",
		"vivid voltage", "battle styles", "chilling reign", "evolving skies",
		"fusion strike", "brilliant stars", "astral radiance", "lost origin",
		"silver tempest", "crown zenith", "scarlet & violet", "paldea evolved",
		"obsidian flames", "151", "paradox rift", "paldean fates",
		"temporal forces", "twilight masquerade", "shrouded fable",
	}

	yugiohKeywords = []string{
		"yugioh", "yu-gi-oh", "blue-eyes", "dark magician", "red-eyes",
		"exodia", "kuriboh", "synchro", "xyz", "pendulum", "special summon",
		"fusion summon", "link summon",
	}

	magicKeywords = []string{
		"planeswalker", "jace", "chandra", "liliana", "garruk", "ajani",
		"teferi", "karn", "urza", "yawgmoth", "bolas", "niv-mizzet",
		"gideon", "nissa", "sorin", "kiora", "ashiok", "tamiyo",
	}

	magicSets = []string{
		"alpha", "beta", "unlimited", "revised", "fourth edition", "core set",
		"masters", "arabian nights", "antiquities", "legends", "the dark",
		"ice age", "mirage", "tempest", "urza's saga", "mercadian masques",
		"invasion", "odyssey", "onslaught", "mirrodin", "kamigawa", "ravnica",
		"time spiral", "lorwyn", "shadowmoor", "shards of alara", "zendikar",
		"innistrad", "theros", "khans of tarkir", "kaladesh", "amonkhet",
		"ixalan", "dominaria", "war of the spark", "throne of eldraine",
		"ikoria", "kaldheim", "strixhaven", "streets of new capenna",
		"the brothers' war", "march of the machine", "wilds of eldraine",
		"murders at karlov manor", "outlaws of thunder junction",
		"bloomburrow", "duskmourn",
	}
)

// DetectGame guesses the game of a product from its name and set name.
// Pokemon wins over Yu-Gi-Oh! which wins over Magic; unknown products default to Magic.
func DetectGame(productName, setName string) Game {
	name := wordText(productName)
	set := wordText(setName)

	switch {
	case containsAny(name, pokemonKeywords), containsAny(set, pokemonSets):
		return GamePokemon
	case containsAny(name, yugiohKeywords):
		return GameYugioh
	case containsAny(name, magicKeywords), containsAny(set, magicSets):
		return GameMagic
	}
	return GameMagic
}

// wordText lower-cases s and pads every word with single spaces so phrase
// lookups can be done with strings.Contains on " phrase ".
func wordText(s string) string {
	var b strings.Builder
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '&' || r == '\'' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, " "+p+" ") {
			return true
		}
	}
	return false
}

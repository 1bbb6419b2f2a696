package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/codyseavey/tcg-inventory-sync/internal/metrics"
	"github.com/codyseavey/tcg-inventory-sync/internal/models"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
)

// CatalogLookup identifies a card printing plus the attributes used when it
// has to be created
type CatalogLookup struct {
	Name       string
	SetName    string
	Rarity     string
	ExternalID *string
	Game       models.Game
}

// CatalogResolver maps (name, set) pairs to shared catalog entries,
// creating them on first sighting
type CatalogResolver struct {
	store store.CatalogStore
	log   *zap.Logger
}

// NewCatalogResolver creates a resolver over the catalog store
func NewCatalogResolver(catalog store.CatalogStore, log *zap.Logger) *CatalogResolver {
	return &CatalogResolver{store: catalog, log: log}
}

// Resolve returns the catalog entry for lookup. Matching is case-insensitive
// on name and set. An existing entry is returned as stored; rarity and
// external id from the lookup only apply when the entry is created.
func (r *CatalogResolver) Resolve(ctx context.Context, lookup CatalogLookup) (*models.CatalogEntry, error) {
	name := strings.TrimSpace(lookup.Name)
	setName := strings.TrimSpace(lookup.SetName)
	if name == "" {
		return nil, ErrMissingName
	}
	nameKey, setKey := models.CatalogKey(name, setName)

	entry, err := r.store.FindCatalogEntry(ctx, nameKey, setKey)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, &ResolutionError{Name: name, SetName: setName, Err: err}
	}

	rarity := strings.TrimSpace(lookup.Rarity)
	if rarity == "" {
		rarity = models.DefaultRarity
	}
	game := lookup.Game
	if game == "" {
		game = models.GameMagic
	}

	candidate := &models.CatalogEntry{
		Name:       name,
		SetName:    setName,
		NameKey:    nameKey,
		SetKey:     setKey,
		Rarity:     rarity,
		ExternalID: lookup.ExternalID,
		Game:       game,
	}
	created, err := r.store.InsertCatalogEntryIfAbsent(ctx, candidate)
	if err != nil {
		return nil, &ResolutionError{Name: name, SetName: setName, Err: err}
	}
	if created {
		metrics.CatalogEntriesCreated.Inc()
		r.log.Debug("created catalog entry",
			zap.Uint("catalog_entry_id", candidate.ID),
			zap.String("name", name),
			zap.String("set", setName),
			zap.String("game", string(game)))
	}

	// Re-read in both cases: a concurrent writer may have won the insert
	entry, err = r.store.FindCatalogEntry(ctx, nameKey, setKey)
	if err != nil {
		return nil, &ResolutionError{Name: name, SetName: setName, Err: err}
	}
	return entry, nil
}

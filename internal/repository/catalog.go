package repository

import (
	"context"
	"fmt"
	"time"

	"cardquest/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"
)

const (
	catalogCacheTTL   = 15 * time.Minute
	catalogCacheSweep = 30 * time.Minute
	catalogListKey    = "__list"
)

// CatalogRepository reads the immutable card catalog. The catalog is seeded
// by the upload tooling and never written by this service, so reads are
// cached aggressively.
type CatalogRepository struct {
	db    *pgxpool.Pool
	cache *gocache.Cache
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{
		db:    db,
		cache: gocache.New(catalogCacheTTL, catalogCacheSweep),
	}
}

// GetByID retrieves a catalog card by ID
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*models.CatalogCard, error) {
	if cached, ok := r.cache.Get(id); ok {
		card := cached.(models.CatalogCard)
		return &card, nil
	}

	query := `
		SELECT id, name, ordinal, description, art_key
		FROM cards
		WHERE id = $1
	`
	var card models.CatalogCard
	err := r.db.QueryRow(ctx, query, id).Scan(
		&card.ID, &card.Name, &card.Ordinal, &card.Description, &card.ArtKey,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get catalog card: %w", err)
	}

	r.cache.SetDefault(card.ID, card)
	return &card, nil
}

// List retrieves the full catalog ordered by ordinal ascending
func (r *CatalogRepository) List(ctx context.Context) ([]models.CatalogCard, error) {
	if cached, ok := r.cache.Get(catalogListKey); ok {
		return cached.([]models.CatalogCard), nil
	}

	query := `
		SELECT id, name, ordinal, description, art_key
		FROM cards
		ORDER BY ordinal ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog cards: %w", err)
	}
	defer rows.Close()

	var cards []models.CatalogCard
	for rows.Next() {
		var card models.CatalogCard
		err := rows.Scan(&card.ID, &card.Name, &card.Ordinal, &card.Description, &card.ArtKey)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog cards: %w", err)
	}

	r.cache.SetDefault(catalogListKey, cards)
	for _, card := range cards {
		r.cache.SetDefault(card.ID, card)
	}
	return cards, nil
}

package repository

import (
	"context"
	"fmt"

	"cardquest/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FoundCardRepository handles database operations for found cards
type FoundCardRepository struct {
	db *pgxpool.Pool
}

// NewFoundCardRepository creates a new found card repository
func NewFoundCardRepository(db *pgxpool.Pool) *FoundCardRepository {
	return &FoundCardRepository{db: db}
}

// Create inserts a new found card
func (r *FoundCardRepository) Create(ctx context.Context, card *models.FoundCard) error {
	query := `
		INSERT INTO found_cards (id, owner_id, card_id, lat, lon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		card.ID, card.OwnerID, card.CardID, card.Location.Lat, card.Location.Lon, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create found card: %w", err)
	}
	return nil
}

// GetByID retrieves a found card by ID
func (r *FoundCardRepository) GetByID(ctx context.Context, id string) (*models.FoundCard, error) {
	query := `
		SELECT id, owner_id, card_id, lat, lon, created_at
		FROM found_cards
		WHERE id = $1
	`
	var card models.FoundCard
	err := r.db.QueryRow(ctx, query, id).Scan(
		&card.ID, &card.OwnerID, &card.CardID,
		&card.Location.Lat, &card.Location.Lon, &card.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get found card: %w", err)
	}
	return &card, nil
}

// FindByOwnerAndCard retrieves the owner's found card for a catalog card,
// or ErrNotFound. This backs the discovery engine's duplicate check.
func (r *FoundCardRepository) FindByOwnerAndCard(ctx context.Context, ownerID, cardID string) (*models.FoundCard, error) {
	query := `
		SELECT id, owner_id, card_id, lat, lon, created_at
		FROM found_cards
		WHERE owner_id = $1 AND card_id = $2
		LIMIT 1
	`
	var card models.FoundCard
	err := r.db.QueryRow(ctx, query, ownerID, cardID).Scan(
		&card.ID, &card.OwnerID, &card.CardID,
		&card.Location.Lat, &card.Location.Lon, &card.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find found card: %w", err)
	}
	return &card, nil
}

// ListByOwner retrieves all found cards for an owner
func (r *FoundCardRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.FoundCard, error) {
	query := `
		SELECT id, owner_id, card_id, lat, lon, created_at
		FROM found_cards
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list found cards: %w", err)
	}
	defer rows.Close()

	var cards []models.FoundCard
	for rows.Next() {
		var card models.FoundCard
		err := rows.Scan(
			&card.ID, &card.OwnerID, &card.CardID,
			&card.Location.Lat, &card.Location.Lon, &card.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan found card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating found cards: %w", err)
	}

	return cards, nil
}

// CreateAndDeleteQuest inserts a found card and deletes the given quest card
// in a single transaction, so a quest completion is never observable as
// only-deleted or only-inserted.
func (r *FoundCardRepository) CreateAndDeleteQuest(ctx context.Context, card *models.FoundCard, questID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO found_cards (id, owner_id, card_id, lat, lon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insert,
		card.ID, card.OwnerID, card.CardID, card.Location.Lat, card.Location.Lon, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create found card: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM quest_cards WHERE id = $1`, questID)
	if err != nil {
		return fmt.Errorf("failed to delete quest card: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit quest completion: %w", err)
	}
	return nil
}

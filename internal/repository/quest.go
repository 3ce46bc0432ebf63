package repository

import (
	"context"
	"fmt"

	"cardquest/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestCardRepository handles database operations for quest cards
type QuestCardRepository struct {
	db *pgxpool.Pool
}

// NewQuestCardRepository creates a new quest card repository
func NewQuestCardRepository(db *pgxpool.Pool) *QuestCardRepository {
	return &QuestCardRepository{db: db}
}

// Create inserts a new quest card
func (r *QuestCardRepository) Create(ctx context.Context, quest *models.QuestCard) error {
	query := `
		INSERT INTO quest_cards (id, quest_owner_id, original_found_card_id, card_id, lat, lon, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		quest.ID, quest.QuestOwnerID, quest.OriginalFoundCardID, quest.CardID,
		quest.Location.Lat, quest.Location.Lon, quest.Status, quest.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quest card: %w", err)
	}
	return nil
}

// FindLocked retrieves the owner's locked quest cards for a catalog card.
// More than one match means the quest uniqueness invariant was broken; the
// caller decides how to degrade, so all matches are returned.
func (r *QuestCardRepository) FindLocked(ctx context.Context, questOwnerID, cardID string) ([]models.QuestCard, error) {
	query := `
		SELECT id, quest_owner_id, original_found_card_id, card_id, lat, lon, status, created_at
		FROM quest_cards
		WHERE quest_owner_id = $1 AND card_id = $2 AND status = $3
		ORDER BY created_at ASC
	`
	return r.queryQuests(ctx, query, questOwnerID, cardID, models.QuestStatusLocked)
}

// FindByOwnerAndOrigin retrieves the quest a viewer holds against a specific
// shared found card, or ErrNotFound. This backs link-state classification
// and quest-acceptance idempotence.
func (r *QuestCardRepository) FindByOwnerAndOrigin(ctx context.Context, questOwnerID, foundCardID string) (*models.QuestCard, error) {
	query := `
		SELECT id, quest_owner_id, original_found_card_id, card_id, lat, lon, status, created_at
		FROM quest_cards
		WHERE quest_owner_id = $1 AND original_found_card_id = $2
		LIMIT 1
	`
	quests, err := r.queryQuests(ctx, query, questOwnerID, foundCardID)
	if err != nil {
		return nil, err
	}
	if len(quests) == 0 {
		return nil, ErrNotFound
	}
	return &quests[0], nil
}

// ListByOwner retrieves all quest cards for a quest owner
func (r *QuestCardRepository) ListByOwner(ctx context.Context, questOwnerID string) ([]models.QuestCard, error) {
	query := `
		SELECT id, quest_owner_id, original_found_card_id, card_id, lat, lon, status, created_at
		FROM quest_cards
		WHERE quest_owner_id = $1
		ORDER BY created_at DESC
	`
	return r.queryQuests(ctx, query, questOwnerID)
}

// Delete deletes a quest card by ID
func (r *QuestCardRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quest_cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quest card: %w", err)
	}
	return nil
}

func (r *QuestCardRepository) queryQuests(ctx context.Context, query string, args ...interface{}) ([]models.QuestCard, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quest cards: %w", err)
	}
	defer rows.Close()

	var quests []models.QuestCard
	for rows.Next() {
		var quest models.QuestCard
		err := rows.Scan(
			&quest.ID, &quest.QuestOwnerID, &quest.OriginalFoundCardID, &quest.CardID,
			&quest.Location.Lat, &quest.Location.Lon, &quest.Status, &quest.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quest card: %w", err)
		}
		quests = append(quests, quest)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quest cards: %w", err)
	}

	return quests, nil
}

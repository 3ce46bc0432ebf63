package repository

import (
	"context"
	"fmt"

	"cardquest/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRepository handles database operations for contact assignments
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Replace deletes any existing assignment for (user_id, contact_id) and
// inserts the new one in a single transaction, keeping at most one active
// assignment per contact.
func (r *AssignmentRepository) Replace(ctx context.Context, assignment *models.Assignment) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`DELETE FROM contact_assignments WHERE user_id = $1 AND contact_id = $2 RETURNING id`,
		assignment.UserID, assignment.ContactID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete prior assignment: %w", err)
	}
	var replaced []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan replaced assignment: %w", err)
		}
		replaced = append(replaced, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating replaced assignments: %w", err)
	}

	insert := `
		INSERT INTO contact_assignments (id, user_id, contact_id, contact_name, assigned_card_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insert,
		assignment.ID, assignment.UserID, assignment.ContactID,
		assignment.ContactName, assignment.AssignedCardID, assignment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}
	return replaced, nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `
		SELECT id, user_id, contact_id, contact_name, assigned_card_id, created_at
		FROM contact_assignments
		WHERE id = $1
	`
	var a models.Assignment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.ContactID, &a.ContactName, &a.AssignedCardID, &a.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

// ListByUser retrieves all assignments for a user
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	query := `
		SELECT id, user_id, contact_id, contact_name, assigned_card_id, created_at
		FROM contact_assignments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		err := rows.Scan(&a.ID, &a.UserID, &a.ContactID, &a.ContactName, &a.AssignedCardID, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// Delete deletes an assignment by ID. Deleting an absent assignment is not
// an error; the desired end state is reached either way.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM contact_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

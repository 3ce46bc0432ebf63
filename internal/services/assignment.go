package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardquest/internal/models"
	"cardquest/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type assignmentStore interface {
	Replace(ctx context.Context, assignment *models.Assignment) ([]string, error)
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Assignment, error)
	Delete(ctx context.Context, id string) error
}

type assignmentFoundStore interface {
	FindByOwnerAndCard(ctx context.Context, ownerID, cardID string) (*models.FoundCard, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.FoundCard, error)
}

type catalogLister interface {
	List(ctx context.Context) ([]models.CatalogCard, error)
}

// OwnedCard is a choice offered when assigning a card to a contact.
type OwnedCard struct {
	CardID string `json:"card_id"`
	Name   string `json:"name"`
}

// AssignmentService maps a user's phone contacts to their owned cards.
type AssignmentService struct {
	assignments assignmentStore
	founds      assignmentFoundStore
	catalog     catalogLister
	hub         eventPublisher
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	assignments assignmentStore,
	founds assignmentFoundStore,
	catalog catalogLister,
	hub eventPublisher,
) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		founds:      founds,
		catalog:     catalog,
		hub:         hub,
	}
}

// Assign assigns an owned card to a contact, replacing any prior assignment
// for the same contact. The calling surface only offers owned cards, but
// ownership is re-checked here anyway.
func (s *AssignmentService) Assign(ctx context.Context, userID, contactID, contactName, cardID string) (*models.Assignment, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}
	if contactID == "" || cardID == "" {
		return nil, fmt.Errorf("contact_id and card_id are required")
	}

	owned, err := s.founds.FindByOwnerAndCard(ctx, userID, cardID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned == nil {
		return nil, ErrCardNotOwned
	}

	assignment := &models.Assignment{
		ID:             uuid.New().String(),
		UserID:         userID,
		ContactID:      contactID,
		ContactName:    contactName,
		AssignedCardID: cardID,
		CreatedAt:      time.Now(),
	}

	replaced, err := s.assignments.Replace(ctx, assignment)
	if err != nil {
		return nil, err
	}

	for _, id := range replaced {
		s.hub.Publish(userID, Event{Collection: CollectionAssignments, Op: OpRemoved, ID: id})
	}
	s.hub.Publish(userID, Event{Collection: CollectionAssignments, Op: OpAdded, ID: assignment.ID, Doc: assignment})

	log.Info().
		Str("user_id", userID).
		Str("contact_id", contactID).
		Str("card_id", cardID).
		Int("replaced", len(replaced)).
		Msg("Card assigned to contact")
	return assignment, nil
}

// Unassign removes an assignment. Removing one that is already gone is a
// success; the desired end state is reached.
func (s *AssignmentService) Unassign(ctx context.Context, userID, assignmentID string) error {
	if userID == "" {
		return ErrIdentityRequired
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment.UserID != userID {
		// Never mutate across users; to this caller the row does not exist.
		return ErrNotFound
	}

	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		return err
	}

	s.hub.Publish(userID, Event{Collection: CollectionAssignments, Op: OpRemoved, ID: assignmentID})

	log.Info().
		Str("user_id", userID).
		Str("assignment_id", assignmentID).
		Msg("Assignment removed")
	return nil
}

// OwnedCards lists the user's owned cards joined to catalog names, the
// choices offered by the assignment surface. Cards whose catalog entry is
// missing are skipped.
func (s *AssignmentService) OwnedCards(ctx context.Context, userID string) ([]OwnedCard, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(catalog))
	for _, card := range catalog {
		names[card.ID] = card.Name
	}

	founds, err := s.founds.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned := make([]OwnedCard, 0, len(founds))
	for _, found := range founds {
		name, ok := names[found.CardID]
		if !ok {
			log.Warn().
				Str("card_id", found.CardID).
				Str("found_card_id", found.ID).
				Msg("Found card references missing catalog entry")
			continue
		}
		owned = append(owned, OwnedCard{CardID: found.CardID, Name: name})
	}
	return owned, nil
}

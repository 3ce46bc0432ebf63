package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardquest/internal/models"
	"cardquest/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LinkState classifies a viewer against a shared found card.
type LinkState string

const (
	// LinkOwner: the viewer is the one who found the card.
	LinkOwner LinkState = "owner"
	// LinkQuestPending: the viewer already accepted a quest for this card.
	LinkQuestPending LinkState = "quest_pending"
	// LinkUnclaimed: the viewer may accept a quest.
	LinkUnclaimed LinkState = "unclaimed"
)

// LinkResolution is the state of a shared card link for one viewer.
type LinkResolution struct {
	State     LinkState           `json:"state"`
	FoundCard *models.FoundCard   `json:"found_card"`
	Card      *models.CatalogCard `json:"card"`
	Quest     *models.QuestCard   `json:"quest,omitempty"`
}

type linkFoundStore interface {
	GetByID(ctx context.Context, id string) (*models.FoundCard, error)
	FindByOwnerAndCard(ctx context.Context, ownerID, cardID string) (*models.FoundCard, error)
}

type linkQuestStore interface {
	FindByOwnerAndOrigin(ctx context.Context, questOwnerID, foundCardID string) (*models.QuestCard, error)
	Create(ctx context.Context, quest *models.QuestCard) error
}

// LinkService resolves shared found-card links and handles quest
// acceptance. Resolving a share URL is the only entry point into the quest
// lifecycle.
type LinkService struct {
	founds    linkFoundStore
	quests    linkQuestStore
	users     discoveryUserStore
	catalog   catalogReader
	hub       eventPublisher
	notifier  Notifier
	publicURL string
}

// NewLinkService creates a new link service
func NewLinkService(
	founds linkFoundStore,
	quests linkQuestStore,
	users discoveryUserStore,
	catalog catalogReader,
	hub eventPublisher,
	notifier Notifier,
	publicURL string,
) *LinkService {
	return &LinkService{
		founds:    founds,
		quests:    quests,
		users:     users,
		catalog:   catalog,
		hub:       hub,
		notifier:  notifier,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// ShareURL builds the external URL embedding a found card id.
func (s *LinkService) ShareURL(foundCardID string) string {
	return fmt.Sprintf("%s/card/%s", s.publicURL, foundCardID)
}

// ResolveLink reads the referenced found card and its catalog card and
// classifies the viewer as owner, quest-pending, or unclaimed.
func (s *LinkService) ResolveLink(ctx context.Context, foundCardID, viewerID string) (*LinkResolution, error) {
	if viewerID == "" {
		return nil, ErrIdentityRequired
	}

	found, err := s.founds.GetByID(ctx, foundCardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve link: %w", err)
	}

	// The catalog is expected immutable, but a deleted entry must not
	// crash resolution.
	card, err := s.catalog.GetByID(ctx, found.CardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCatalogMissing
		}
		return nil, fmt.Errorf("failed to load catalog card: %w", err)
	}

	resolution := &LinkResolution{FoundCard: found, Card: card}

	if found.OwnerID == viewerID {
		resolution.State = LinkOwner
		return resolution, nil
	}

	quest, err := s.quests.FindByOwnerAndOrigin(ctx, viewerID, foundCardID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check quest state: %w", err)
	}
	if quest != nil {
		resolution.State = LinkQuestPending
		resolution.Quest = quest
		return resolution, nil
	}

	resolution.State = LinkUnclaimed
	return resolution, nil
}

// AcceptQuest creates a locked quest card for the viewer, copying the card
// id and location from the shared found card. Valid only from the unclaimed
// state; the state is re-derived here so a repeated link click never creates
// a duplicate quest.
func (s *LinkService) AcceptQuest(ctx context.Context, foundCardID, viewerID string) (*models.QuestCard, error) {
	resolution, err := s.ResolveLink(ctx, foundCardID, viewerID)
	if err != nil {
		return nil, err
	}

	switch resolution.State {
	case LinkOwner:
		return nil, ErrOwnCard
	case LinkQuestPending:
		return nil, ErrQuestExists
	}

	// A quest for a card the viewer already owns is meaningless: scanning
	// it again would be rejected as a duplicate and the quest would never
	// resolve.
	owned, err := s.founds.FindByOwnerAndCard(ctx, viewerID, resolution.FoundCard.CardID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned != nil {
		return nil, ErrAlreadyOwned
	}

	quest := &models.QuestCard{
		ID:                  uuid.New().String(),
		QuestOwnerID:        viewerID,
		OriginalFoundCardID: foundCardID,
		CardID:              resolution.FoundCard.CardID,
		Location:            resolution.FoundCard.Location,
		Status:              models.QuestStatusLocked,
		CreatedAt:           time.Now(),
	}

	if err := s.quests.Create(ctx, quest); err != nil {
		return nil, err
	}

	s.hub.Publish(viewerID, Event{Collection: CollectionQuestCards, Op: OpAdded, ID: quest.ID, Doc: quest})

	go s.notifySharer(resolution.FoundCard.OwnerID, resolution.Card.Name)

	log.Info().
		Str("viewer_id", viewerID).
		Str("found_card_id", foundCardID).
		Str("quest_id", quest.ID).
		Msg("Quest accepted")
	return quest, nil
}

func (s *LinkService) notifySharer(sharerID, cardName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sharer, err := s.users.GetByID(ctx, sharerID)
	if err != nil || sharer.PushToken == nil {
		return
	}

	if err := s.notifier.Push(*sharer.PushToken, "Quest accepted",
		fmt.Sprintf("A friend took on the quest for %q.", cardName)); err != nil {
		log.Error().Err(err).Str("user_id", sharerID).Msg("Failed to push quest acceptance")
	}
}

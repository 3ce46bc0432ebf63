package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cardquest/internal/models"
	"cardquest/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ScanResult classifies what a scan turned out to be.
type ScanResult string

const (
	ScanNewCard        ScanResult = "new_card"
	ScanQuestCompleted ScanResult = "quest_completed"
	ScanAlreadyOwned   ScanResult = "already_owned"
)

// ScanOutcome is the result of resolving a scanned code.
type ScanOutcome struct {
	Result    ScanResult        `json:"result"`
	CardID    string            `json:"card_id"`
	FoundCard *models.FoundCard `json:"found_card,omitempty"`
}

type discoveryFoundStore interface {
	FindByOwnerAndCard(ctx context.Context, ownerID, cardID string) (*models.FoundCard, error)
	GetByID(ctx context.Context, id string) (*models.FoundCard, error)
	Create(ctx context.Context, card *models.FoundCard) error
	CreateAndDeleteQuest(ctx context.Context, card *models.FoundCard, questID string) error
}

type discoveryQuestStore interface {
	FindLocked(ctx context.Context, questOwnerID, cardID string) ([]models.QuestCard, error)
}

type discoveryUserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type catalogReader interface {
	GetByID(ctx context.Context, id string) (*models.CatalogCard, error)
}

type eventPublisher interface {
	Publish(userID string, event Event)
}

// DiscoveryService decides what a scanned code means for a user: a
// duplicate, a quest completion, or a fresh discovery, and performs the
// corresponding writes.
type DiscoveryService struct {
	founds   discoveryFoundStore
	quests   discoveryQuestStore
	users    discoveryUserStore
	catalog  catalogReader
	hub      eventPublisher
	notifier Notifier

	// One scan in flight per owner. Two concurrent scans for the same user
	// would race on the duplicate and quest checks and could double-insert.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(
	founds discoveryFoundStore,
	quests discoveryQuestStore,
	users discoveryUserStore,
	catalog catalogReader,
	hub eventPublisher,
	notifier Notifier,
) *DiscoveryService {
	return &DiscoveryService{
		founds:   founds,
		quests:   quests,
		users:    users,
		catalog:  catalog,
		hub:      hub,
		notifier: notifier,
		inFlight: make(map[string]struct{}),
	}
}

// ResolveScan resolves a scanned code for an owner, in strict order:
// duplicate check, quest completion check, discovery write. A quest
// completion and a fresh discovery both end in a found card; the quest row
// is deleted in the same transaction as the insert.
func (s *DiscoveryService) ResolveScan(ctx context.Context, code, ownerID string, position *models.Location) (*ScanOutcome, error) {
	if ownerID == "" {
		return nil, ErrIdentityRequired
	}
	if position == nil {
		return nil, ErrLocationRequired
	}

	if !s.acquire(ownerID) {
		return nil, ErrScanInFlight
	}
	defer s.release(ownerID)

	// 1. Duplicate check: the table does not enforce (owner, card)
	// uniqueness, this pre-check does.
	existing, err := s.founds.FindByOwnerAndCard(ctx, ownerID, code)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		log.Info().
			Str("owner_id", ownerID).
			Str("card_id", code).
			Msg("Scan rejected, card already owned")
		return &ScanOutcome{Result: ScanAlreadyOwned, CardID: code}, nil
	}

	// 2. Quest completion check
	quests, err := s.quests.FindLocked(ctx, ownerID, code)
	if err != nil {
		return nil, fmt.Errorf("quest check failed: %w", err)
	}
	if len(quests) > 1 {
		// Invariant violation: at most one quest may exist per
		// (owner, found card). Complete the oldest and leave the rest.
		log.Warn().
			Str("owner_id", ownerID).
			Str("card_id", code).
			Int("count", len(quests)).
			Msg("Multiple locked quests for one card")
	}

	found := &models.FoundCard{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CardID:    code,
		Location:  *position,
		CreatedAt: time.Now(),
	}

	// 3. Discovery write
	if len(quests) > 0 {
		quest := quests[0]
		if err := s.founds.CreateAndDeleteQuest(ctx, found, quest.ID); err != nil {
			return nil, err
		}

		s.hub.Publish(ownerID, Event{Collection: CollectionQuestCards, Op: OpRemoved, ID: quest.ID})
		s.hub.Publish(ownerID, Event{Collection: CollectionFoundCards, Op: OpAdded, ID: found.ID, Doc: found})

		go s.notifySharer(quest.OriginalFoundCardID, ownerID, code)

		log.Info().
			Str("owner_id", ownerID).
			Str("card_id", code).
			Str("quest_id", quest.ID).
			Msg("Quest completed")
		return &ScanOutcome{Result: ScanQuestCompleted, CardID: code, FoundCard: found}, nil
	}

	if err := s.founds.Create(ctx, found); err != nil {
		return nil, err
	}

	s.hub.Publish(ownerID, Event{Collection: CollectionFoundCards, Op: OpAdded, ID: found.ID, Doc: found})

	log.Info().
		Str("owner_id", ownerID).
		Str("card_id", code).
		Str("found_card_id", found.ID).
		Msg("New card discovered")
	return &ScanOutcome{Result: ScanNewCard, CardID: code, FoundCard: found}, nil
}

// notifySharer pushes a best-effort notification to the user who shared the
// card behind a just-completed quest.
func (s *DiscoveryService) notifySharer(originalFoundCardID, scannerID, cardID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	origin, err := s.founds.GetByID(ctx, originalFoundCardID)
	if err != nil || origin.OwnerID == scannerID {
		return
	}

	sharer, err := s.users.GetByID(ctx, origin.OwnerID)
	if err != nil || sharer.PushToken == nil {
		return
	}

	cardName := cardID
	if card, err := s.catalog.GetByID(ctx, cardID); err == nil {
		cardName = card.Name
	}

	if err := s.notifier.Push(*sharer.PushToken, "Quest completed",
		fmt.Sprintf("A friend found %q on their own.", cardName)); err != nil {
		log.Error().Err(err).Str("user_id", origin.OwnerID).Msg("Failed to push quest completion")
	}
}

func (s *DiscoveryService) acquire(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[ownerID]; busy {
		return false
	}
	s.inFlight[ownerID] = struct{}{}
	return true
}

func (s *DiscoveryService) release(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, ownerID)
}

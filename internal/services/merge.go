package services

import (
	"context"
	"sort"

	"cardquest/internal/models"

	"github.com/rs/zerolog/log"
)

// The merge functions are pure projections over snapshots of the catalog and
// the per-user stores. Subscription deltas for the different collections may
// arrive in any order, so every view must be a function of the latest
// snapshots only; a transient frame rendered from a stale snapshot corrects
// itself when the next delta lands.

// MergeDeck produces one entry per catalog card, ordinal ascending, with the
// viewer's ownership state attached. Output length always equals catalog
// size.
func MergeDeck(catalog []models.CatalogCard, owned []models.FoundCard) []models.MergedCard {
	byCard := make(map[string]*models.FoundCard, len(owned))
	for i := range owned {
		if prior, dup := byCard[owned[i].CardID]; dup {
			// Duplicate found cards for one catalog card should be
			// impossible; keep the first, surface the breakage.
			log.Warn().
				Str("card_id", owned[i].CardID).
				Str("kept", prior.ID).
				Str("ignored", owned[i].ID).
				Msg("Duplicate found cards for one catalog card")
			continue
		}
		byCard[owned[i].CardID] = &owned[i]
	}

	deck := make([]models.MergedCard, 0, len(catalog))
	for _, card := range catalog {
		entry := models.MergedCard{Card: card}
		if found, ok := byCard[card.ID]; ok {
			entry.Found = true
			entry.FoundCard = found
		}
		deck = append(deck, entry)
	}

	sort.SliceStable(deck, func(i, j int) bool {
		return deck[i].Card.Ordinal < deck[j].Card.Ordinal
	})
	return deck
}

// MergeContacts attaches each phone contact's assignment, resolved to a
// catalog card name. A dangling assignment degrades to no assignment shown.
func MergeContacts(contacts []models.PhoneContact, assignments []models.Assignment, catalog []models.CatalogCard) []models.MergedContact {
	byContact := make(map[string]models.Assignment, len(assignments))
	for _, a := range assignments {
		byContact[a.ContactID] = a
	}
	names := make(map[string]string, len(catalog))
	for _, card := range catalog {
		names[card.ID] = card.Name
	}

	merged := make([]models.MergedContact, 0, len(contacts))
	for _, contact := range contacts {
		entry := models.MergedContact{PhoneContact: contact}
		if a, ok := byContact[contact.ID]; ok {
			if name, ok := names[a.AssignedCardID]; ok {
				entry.Assignment = &models.ContactAssignment{
					AssignmentID: a.ID,
					CardID:       a.AssignedCardID,
					CardName:     name,
				}
			} else {
				log.Warn().
					Str("assignment_id", a.ID).
					Str("card_id", a.AssignedCardID).
					Msg("Assignment references missing catalog entry")
			}
		}
		merged = append(merged, entry)
	}
	return merged
}

// SplitMapMarkers splits found and quest cards into the two disjoint pin
// sets for the map, keyed by record id. A quest for a card the user already
// owns violates the quest invariants and is dropped rather than rendered
// alongside the owned pin.
func SplitMapMarkers(owned []models.FoundCard, quests []models.QuestCard) models.MapMarkers {
	ownedCards := make(map[string]struct{}, len(owned))
	markers := models.MapMarkers{
		Owned: make([]models.MapMarker, 0, len(owned)),
		Quest: make([]models.MapMarker, 0, len(quests)),
	}

	for _, f := range owned {
		ownedCards[f.CardID] = struct{}{}
		markers.Owned = append(markers.Owned, models.MapMarker{ID: f.ID, CardID: f.CardID, Location: f.Location})
	}

	for _, q := range quests {
		if _, clash := ownedCards[q.CardID]; clash {
			log.Warn().
				Str("quest_id", q.ID).
				Str("card_id", q.CardID).
				Msg("Quest exists for an already-owned card")
			continue
		}
		markers.Quest = append(markers.Quest, models.MapMarker{ID: q.ID, CardID: q.CardID, Location: q.Location})
	}
	return markers
}

type viewQuestStore interface {
	ListByOwner(ctx context.Context, questOwnerID string) ([]models.QuestCard, error)
}

// ViewService loads the latest store snapshots and applies the merge
// projections for the HTTP surface.
type ViewService struct {
	catalog     catalogLister
	founds      assignmentFoundStore
	quests      viewQuestStore
	assignments assignmentStore
	media       *MediaService
}

// NewViewService creates a new view service
func NewViewService(
	catalog catalogLister,
	founds assignmentFoundStore,
	quests viewQuestStore,
	assignments assignmentStore,
	media *MediaService,
) *ViewService {
	return &ViewService{
		catalog:     catalog,
		founds:      founds,
		quests:      quests,
		assignments: assignments,
		media:       media,
	}
}

// Deck returns the merged deck view for a user
func (s *ViewService) Deck(ctx context.Context, userID string) ([]models.MergedCard, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.founds.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	deck := MergeDeck(catalog, owned)
	for i := range deck {
		deck[i].ArtURL = s.media.ArtURL(ctx, deck[i].Card.ArtKey)
	}
	return deck, nil
}

// Map returns the owned and pending-quest marker sets for a user
func (s *ViewService) Map(ctx context.Context, userID string) (*models.MapMarkers, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}

	owned, err := s.founds.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	quests, err := s.quests.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	markers := SplitMapMarkers(owned, quests)
	return &markers, nil
}

// Contacts merges the device's contact list with the user's assignments
func (s *ViewService) Contacts(ctx context.Context, userID string, contacts []models.PhoneContact) ([]models.MergedContact, error) {
	if userID == "" {
		return nil, ErrIdentityRequired
	}

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return MergeContacts(contacts, assignments, catalog), nil
}

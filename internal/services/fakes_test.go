package services

import (
	"context"
	"sync"

	"cardquest/internal/models"
	"cardquest/internal/repository"
)

// In-memory stores backing the service tests. Each implements the store
// interface the service under test consumes.

type fakeQuests struct {
	mu     sync.Mutex
	quests map[string]models.QuestCard
	errAll error
}

func newFakeQuests() *fakeQuests {
	return &fakeQuests{quests: make(map[string]models.QuestCard)}
}

func (f *fakeQuests) Create(ctx context.Context, quest *models.QuestCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errAll != nil {
		return f.errAll
	}
	f.quests[quest.ID] = *quest
	return nil
}

func (f *fakeQuests) FindLocked(ctx context.Context, questOwnerID, cardID string) ([]models.QuestCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errAll != nil {
		return nil, f.errAll
	}
	var matches []models.QuestCard
	for _, q := range f.quests {
		if q.QuestOwnerID == questOwnerID && q.CardID == cardID && q.Status == models.QuestStatusLocked {
			matches = append(matches, q)
		}
	}
	return matches, nil
}

func (f *fakeQuests) FindByOwnerAndOrigin(ctx context.Context, questOwnerID, foundCardID string) (*models.QuestCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errAll != nil {
		return nil, f.errAll
	}
	for _, q := range f.quests {
		if q.QuestOwnerID == questOwnerID && q.OriginalFoundCardID == foundCardID {
			quest := q
			return &quest, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeQuests) ListByOwner(ctx context.Context, questOwnerID string) ([]models.QuestCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []models.QuestCard
	for _, q := range f.quests {
		if q.QuestOwnerID == questOwnerID {
			matches = append(matches, q)
		}
	}
	return matches, nil
}

func (f *fakeQuests) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.quests, id)
	return nil
}

func (f *fakeQuests) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.quests)
}

type fakeFounds struct {
	mu        sync.Mutex
	cards     map[string]models.FoundCard
	quests    *fakeQuests
	createErr error
	creates   int
}

func newFakeFounds(quests *fakeQuests) *fakeFounds {
	return &fakeFounds{cards: make(map[string]models.FoundCard), quests: quests}
}

func (f *fakeFounds) Create(ctx context.Context, card *models.FoundCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.creates++
	f.cards[card.ID] = *card
	return nil
}

func (f *fakeFounds) GetByID(ctx context.Context, id string) (*models.FoundCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if card, ok := f.cards[id]; ok {
		return &card, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFounds) FindByOwnerAndCard(ctx context.Context, ownerID, cardID string) (*models.FoundCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, card := range f.cards {
		if card.OwnerID == ownerID && card.CardID == cardID {
			found := card
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFounds) ListByOwner(ctx context.Context, ownerID string) ([]models.FoundCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []models.FoundCard
	for _, card := range f.cards {
		if card.OwnerID == ownerID {
			matches = append(matches, card)
		}
	}
	return matches, nil
}

func (f *fakeFounds) CreateAndDeleteQuest(ctx context.Context, card *models.FoundCard, questID string) error {
	if err := f.Create(ctx, card); err != nil {
		return err
	}
	return f.quests.Delete(ctx, questID)
}

func (f *fakeFounds) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cards)
}

type fakeAssignments struct {
	mu          sync.Mutex
	assignments map[string]models.Assignment
}

func newFakeAssignments() *fakeAssignments {
	return &fakeAssignments{assignments: make(map[string]models.Assignment)}
}

func (f *fakeAssignments) Replace(ctx context.Context, assignment *models.Assignment) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var replaced []string
	for id, a := range f.assignments {
		if a.UserID == assignment.UserID && a.ContactID == assignment.ContactID {
			delete(f.assignments, id)
			replaced = append(replaced, id)
		}
	}
	f.assignments[assignment.ID] = *assignment
	return replaced, nil
}

func (f *fakeAssignments) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.assignments[id]; ok {
		return &a, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAssignments) ListByUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []models.Assignment
	for _, a := range f.assignments {
		if a.UserID == userID {
			matches = append(matches, a)
		}
	}
	return matches, nil
}

func (f *fakeAssignments) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.assignments, id)
	return nil
}

type fakeCatalog struct {
	cards []models.CatalogCard
}

func (f *fakeCatalog) GetByID(ctx context.Context, id string) (*models.CatalogCard, error) {
	for _, card := range f.cards {
		if card.ID == id {
			c := card
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCatalog) List(ctx context.Context) ([]models.CatalogCard, error) {
	return f.cards, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]models.User)}
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

type fakeHub struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakeHub) Publish(userID string, event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeHub) published() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	pushes []string
}

func (f *fakeNotifier) Push(deviceToken, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, title)
	return nil
}

package services

import (
	"context"
	"testing"

	"cardquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssignmentFixture(catalog []models.CatalogCard) (*AssignmentService, *fakeFounds, *fakeAssignments, *fakeHub) {
	quests := newFakeQuests()
	founds := newFakeFounds(quests)
	assignments := newFakeAssignments()
	hub := &fakeHub{}
	svc := NewAssignmentService(assignments, founds, &fakeCatalog{cards: catalog}, hub)
	return svc, founds, assignments, hub
}

func TestAssignRequiresOwnership(t *testing.T) {
	svc, _, assignments, _ := newAssignmentFixture(magicianCatalog)

	_, err := svc.Assign(context.Background(), "user-a", "contact-1", "Ana", "m1")
	assert.ErrorIs(t, err, ErrCardNotOwned)

	all, err := assignments.ListByUser(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAssignReplacesPriorAssignment(t *testing.T) {
	catalog := []models.CatalogCard{
		{ID: "m1", Name: "The Magician", Ordinal: 1},
		{ID: "m2", Name: "The Empress", Ordinal: 3},
	}
	svc, founds, assignments, hub := newAssignmentFixture(catalog)
	seedFound(t, founds, "f1", "user-a", "m1")
	seedFound(t, founds, "f2", "user-a", "m2")

	first, err := svc.Assign(context.Background(), "user-a", "contact-1", "Ana", "m1")
	require.NoError(t, err)

	second, err := svc.Assign(context.Background(), "user-a", "contact-1", "Ana", "m2")
	require.NoError(t, err)

	all, err := assignments.ListByUser(context.Background(), "user-a")
	require.NoError(t, err)
	require.Len(t, all, 1, "re-assignment leaves exactly one assignment per contact")
	assert.Equal(t, "m2", all[0].AssignedCardID)
	assert.Equal(t, second.ID, all[0].ID)

	// Subscribers see the replacement as removed-then-added.
	events := hub.published()
	require.Len(t, events, 3)
	assert.Equal(t, OpAdded, events[0].Op)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, OpRemoved, events[1].Op)
	assert.Equal(t, first.ID, events[1].ID)
	assert.Equal(t, OpAdded, events[2].Op)
	assert.Equal(t, second.ID, events[2].ID)
}

func TestUnassignIsIdempotent(t *testing.T) {
	svc, founds, assignments, _ := newAssignmentFixture(magicianCatalog)
	seedFound(t, founds, "f1", "user-a", "m1")

	assignment, err := svc.Assign(context.Background(), "user-a", "contact-1", "Ana", "m1")
	require.NoError(t, err)

	require.NoError(t, svc.Unassign(context.Background(), "user-a", assignment.ID))

	all, err := assignments.ListByUser(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Empty(t, all)

	// Removing an already-removed assignment reaches the same end state.
	assert.NoError(t, svc.Unassign(context.Background(), "user-a", assignment.ID))
}

func TestUnassignNeverCrossesUsers(t *testing.T) {
	svc, founds, assignments, _ := newAssignmentFixture(magicianCatalog)
	seedFound(t, founds, "f1", "user-a", "m1")

	assignment, err := svc.Assign(context.Background(), "user-a", "contact-1", "Ana", "m1")
	require.NoError(t, err)

	err = svc.Unassign(context.Background(), "user-b", assignment.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := assignments.ListByUser(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Len(t, all, 1, "another user's unassign must not delete the row")
}

func TestOwnedCardsSkipsMissingCatalogEntries(t *testing.T) {
	svc, founds, _, _ := newAssignmentFixture(magicianCatalog)
	seedFound(t, founds, "f1", "user-a", "m1")
	seedFound(t, founds, "f2", "user-a", "not-in-catalog")

	owned, err := svc.OwnedCards(context.Background(), "user-a")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, OwnedCard{CardID: "m1", Name: "The Magician"}, owned[0])
}

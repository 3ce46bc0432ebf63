package services

import (
	"context"
	"testing"

	"cardquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShareAndQuestLifecycle walks the full share → accept → re-find →
// assign flow across the services, sharing one set of in-memory stores.
func TestShareAndQuestLifecycle(t *testing.T) {
	ctx := context.Background()
	catalog := []models.CatalogCard{
		{ID: "m1", Name: "The Magician", Ordinal: 1},
		{ID: "m2", Name: "The High Priestess", Ordinal: 2},
	}

	quests := newFakeQuests()
	founds := newFakeFounds(quests)
	assignments := newFakeAssignments()
	users := newFakeUsers()
	cat := &fakeCatalog{cards: catalog}
	hub := &fakeHub{}
	notifier := &fakeNotifier{}

	discovery := NewDiscoveryService(founds, quests, users, cat, hub, notifier)
	links := NewLinkService(founds, quests, users, cat, hub, notifier, "https://cards.example.com")
	assigning := NewAssignmentService(assignments, founds, cat, hub)

	// U scans m1 in the wild.
	outcome, err := discovery.ResolveScan(ctx, "m1", "U", pos(19.0, -99.0))
	require.NoError(t, err)
	require.Equal(t, ScanNewCard, outcome.Result)
	sharedID := outcome.FoundCard.ID

	// U shares it; V resolves the link and sees an unclaimed card.
	assert.Equal(t, "https://cards.example.com/card/"+sharedID, links.ShareURL(sharedID))
	resolution, err := links.ResolveLink(ctx, sharedID, "V")
	require.NoError(t, err)
	require.Equal(t, LinkUnclaimed, resolution.State)

	// V accepts the quest.
	quest, err := links.AcceptQuest(ctx, sharedID, "V")
	require.NoError(t, err)
	assert.Equal(t, models.QuestStatusLocked, quest.Status)
	assert.Equal(t, sharedID, quest.OriginalFoundCardID)

	resolution, err = links.ResolveLink(ctx, sharedID, "V")
	require.NoError(t, err)
	assert.Equal(t, LinkQuestPending, resolution.State)

	// V re-finds the card at the real location.
	outcome, err = discovery.ResolveScan(ctx, "m1", "V", pos(19.0001, -99.0002))
	require.NoError(t, err)
	assert.Equal(t, ScanQuestCompleted, outcome.Result)
	assert.Equal(t, 0, quests.count())

	// V is now an owner on the link, and their deck shows the card found.
	resolution, err = links.ResolveLink(ctx, outcome.FoundCard.ID, "V")
	require.NoError(t, err)
	assert.Equal(t, LinkOwner, resolution.State)

	vOwned, err := founds.ListByOwner(ctx, "V")
	require.NoError(t, err)
	deck := MergeDeck(catalog, vOwned)
	require.Len(t, deck, 2)
	assert.True(t, deck[0].Found)
	assert.False(t, deck[1].Found)

	// V assigns m1 to Ana, then replaces it with a second card.
	first, err := assigning.Assign(ctx, "V", "ana", "Ana", "m1")
	require.NoError(t, err)

	_, err = discovery.ResolveScan(ctx, "m2", "V", pos(19.2, -99.2))
	require.NoError(t, err)
	second, err := assigning.Assign(ctx, "V", "ana", "Ana", "m2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	vAssignments, err := assignments.ListByUser(ctx, "V")
	require.NoError(t, err)
	require.Len(t, vAssignments, 1)
	assert.Equal(t, "m2", vAssignments[0].AssignedCardID)

	merged := MergeContacts(
		[]models.PhoneContact{{ID: "ana", Name: "Ana"}},
		vAssignments,
		catalog,
	)
	require.Len(t, merged, 1)
	require.NotNil(t, merged[0].Assignment)
	assert.Equal(t, "The High Priestess", merged[0].Assignment.CardName)
}

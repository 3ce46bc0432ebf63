package services

import (
	"context"
	"testing"
	"time"

	"cardquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkFixture(catalog []models.CatalogCard) (*LinkService, *fakeFounds, *fakeQuests) {
	quests := newFakeQuests()
	founds := newFakeFounds(quests)
	svc := NewLinkService(founds, quests, newFakeUsers(), &fakeCatalog{cards: catalog}, &fakeHub{}, &fakeNotifier{}, "https://cards.example.com/")
	return svc, founds, quests
}

func seedFound(t *testing.T, founds *fakeFounds, id, ownerID, cardID string) {
	t.Helper()
	require.NoError(t, founds.Create(context.Background(), &models.FoundCard{
		ID:        id,
		OwnerID:   ownerID,
		CardID:    cardID,
		Location:  models.Location{Lat: 19.0, Lon: -99.0},
		CreatedAt: time.Now(),
	}))
}

var magicianCatalog = []models.CatalogCard{
	{ID: "m1", Name: "The Magician", Ordinal: 1, Description: "A new beginning."},
}

func TestResolveLinkStates(t *testing.T) {
	svc, founds, quests := newLinkFixture(magicianCatalog)
	seedFound(t, founds, "f1", "owner", "m1")

	t.Run("owner", func(t *testing.T) {
		resolution, err := svc.ResolveLink(context.Background(), "f1", "owner")
		require.NoError(t, err)
		assert.Equal(t, LinkOwner, resolution.State)
		assert.Equal(t, "The Magician", resolution.Card.Name)
	})

	t.Run("unclaimed", func(t *testing.T) {
		resolution, err := svc.ResolveLink(context.Background(), "f1", "viewer")
		require.NoError(t, err)
		assert.Equal(t, LinkUnclaimed, resolution.State)
		assert.Nil(t, resolution.Quest)
	})

	t.Run("quest pending", func(t *testing.T) {
		require.NoError(t, quests.Create(context.Background(), &models.QuestCard{
			ID:                  "q1",
			QuestOwnerID:        "viewer",
			OriginalFoundCardID: "f1",
			CardID:              "m1",
			Status:              models.QuestStatusLocked,
		}))
		resolution, err := svc.ResolveLink(context.Background(), "f1", "viewer")
		require.NoError(t, err)
		assert.Equal(t, LinkQuestPending, resolution.State)
		require.NotNil(t, resolution.Quest)
		assert.Equal(t, "q1", resolution.Quest.ID)
	})
}

func TestResolveLinkMissingReferences(t *testing.T) {
	svc, founds, _ := newLinkFixture(magicianCatalog)

	_, err := svc.ResolveLink(context.Background(), "gone", "viewer")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ResolveLink(context.Background(), "f1", "")
	assert.ErrorIs(t, err, ErrIdentityRequired)

	// Found card pointing at a catalog entry that no longer exists.
	seedFound(t, founds, "f2", "owner", "deleted-card")
	_, err = svc.ResolveLink(context.Background(), "f2", "viewer")
	assert.ErrorIs(t, err, ErrCatalogMissing)
}

func TestAcceptQuestCreatesLockedQuest(t *testing.T) {
	svc, founds, quests := newLinkFixture(magicianCatalog)
	seedFound(t, founds, "f1", "owner", "m1")

	quest, err := svc.AcceptQuest(context.Background(), "f1", "viewer")
	require.NoError(t, err)

	assert.Equal(t, "viewer", quest.QuestOwnerID)
	assert.Equal(t, "f1", quest.OriginalFoundCardID)
	assert.Equal(t, "m1", quest.CardID)
	assert.Equal(t, models.QuestStatusLocked, quest.Status)
	assert.Equal(t, models.Location{Lat: 19.0, Lon: -99.0}, quest.Location, "location copied from the shared found card")
	assert.Equal(t, 1, quests.count())
}

func TestAcceptQuestIsIdempotent(t *testing.T) {
	svc, founds, quests := newLinkFixture(magicianCatalog)
	seedFound(t, founds, "f1", "owner", "m1")

	_, err := svc.AcceptQuest(context.Background(), "f1", "viewer")
	require.NoError(t, err)

	_, err = svc.AcceptQuest(context.Background(), "f1", "viewer")
	assert.ErrorIs(t, err, ErrQuestExists)
	assert.Equal(t, 1, quests.count(), "repeated link clicks must not create duplicate quests")
}

func TestAcceptQuestRefusals(t *testing.T) {
	svc, founds, quests := newLinkFixture(magicianCatalog)
	seedFound(t, founds, "f1", "owner", "m1")

	// The sharer clicking their own link.
	_, err := svc.AcceptQuest(context.Background(), "f1", "owner")
	assert.ErrorIs(t, err, ErrOwnCard)

	// A viewer who already owns the same catalog card.
	seedFound(t, founds, "f2", "viewer", "m1")
	_, err = svc.AcceptQuest(context.Background(), "f1", "viewer")
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	assert.Equal(t, 0, quests.count())
}

func TestShareURL(t *testing.T) {
	svc, _, _ := newLinkFixture(magicianCatalog)
	assert.Equal(t, "https://cards.example.com/card/f1", svc.ShareURL("f1"))
}

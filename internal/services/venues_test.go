package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platescout/internal/events"
	"platescout/internal/models"
	"platescout/internal/remote"
	"platescout/internal/repositories/venues"
)

func venueDoc(id, name, category string, offer bool) remote.Document {
	return remote.Document{ID: id, Fields: map[string]any{
		"name":       name,
		"typeOfFood": category,
		"rating":     4.5,
		"offer":      offer,
	}}
}

func TestVenues_EmptyLocalFetchesRemote(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.put(remote.CollectionVenues, venueDoc("v1", "Golden Dragon", "Chinese", false))
	store.put(remote.CollectionVenues, venueDoc("v2", "La Piazza", "Italian", true))
	store.put(remote.CollectionVenues, venueDoc("v3", "Taco Loco", "Mexican", false))

	svc, db := newTestServices(t, store)

	got, err := svc.Venues.Venues(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	rows, err := venues.NewSQLiteRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestVenue_LocalServedThenRefreshed(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.put(remote.CollectionVenues, venueDoc("v1", "Golden Dragon (renamed)", "Chinese", false))

	svc, db := newTestServices(t, store)
	repo := venues.NewSQLiteRepository(db)
	require.NoError(t, repo.Upsert(ctx, &models.Venue{ID: "v1", Name: "Golden Dragon", UpdatedAt: time.Now()}))

	ch, unsub := svc.Bus.Subscribe(events.VenuesChanged)
	defer unsub()

	got, err := svc.Venues.Venue(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "Golden Dragon", got.Name, "local copy is served immediately")

	svc.Wait()

	refreshed, err := repo.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "Golden Dragon (renamed)", refreshed.Name)

	select {
	case <-ch:
	default:
		t.Fatal("expected a venues-changed signal after the refresh")
	}
}

func TestVenuesByCategory_SyncFetchOnEmptyLocal(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.put(remote.CollectionVenues, venueDoc("v1", "Golden Dragon", "Chinese", false))
	store.put(remote.CollectionVenues, venueDoc("v2", "La Piazza", "Italian", true))

	svc, _ := newTestServices(t, store)

	got, err := svc.Venues.VenuesByCategory(ctx, "Italian")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "La Piazza", got[0].Name)
}

func TestVenuesWithOffer_SyncFetchOnEmptyLocal(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.put(remote.CollectionVenues, venueDoc("v1", "Golden Dragon", "Chinese", false))
	store.put(remote.CollectionVenues, venueDoc("v2", "La Piazza", "Italian", true))

	svc, _ := newTestServices(t, store)

	got, err := svc.Venues.VenuesWithOffer(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].ID)
}

func TestVenues_RemoteFailureWithoutLocalFallback(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.err = assert.AnError

	svc, _ := newTestServices(t, store)

	_, err := svc.Venues.Venues(ctx)
	require.Error(t, err)
}

func TestVenue_PlaceholderFromReviewSyncIsNotServed(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.put(remote.CollectionVenues, venueDoc("v9", "Sumaq Grill", "Peruvian", false))
	store.put(remote.CollectionReviews, remote.Document{ID: "r1", Fields: map[string]any{
		"user_id":       "someone-else",
		"restaurant_id": "v9",
		"stars":         int64(5),
		"createdAt":     time.Now().Unix(),
	}})

	svc, _ := newTestServices(t, store)

	// syncing the venue's reviews creates an id-only parent row for v9
	_, err := svc.Reviews.VenueReviews(ctx, "v9")
	require.NoError(t, err)

	got, err := svc.Venues.Venue(ctx, "v9")
	require.NoError(t, err)
	assert.Equal(t, "Sumaq Grill", got.Name, "the placeholder must not shadow the synchronous fetch")
}

func TestVenueCommit_CancelledBeforeWrite(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	svc, db := newTestServices(t, store)
	repo := venues.NewSQLiteRepository(db)

	ch, unsub := svc.Bus.Subscribe(events.VenuesChanged)
	defer unsub()

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	err := svc.Venues.commit(cancelled, []remote.Document{venueDoc("v1", "Golden Dragon", "Chinese", false)})
	require.ErrorIs(t, err, context.Canceled)

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows, "a cancelled refresh must not write")

	select {
	case <-ch:
		t.Fatal("a cancelled refresh must not broadcast")
	default:
	}
}

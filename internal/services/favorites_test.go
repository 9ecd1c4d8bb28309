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
	"platescout/internal/repositories/favorites"
)

func TestFavoriteVenueIDs_NormalizesLegacyFlatEncoding(t *testing.T) {
	ctx := context.Background()
	now := time.Now().Unix()

	store := newFakeStore()
	store.put(remote.CollectionUsers, remote.Document{ID: testUserID, Fields: map[string]any{
		"name":                      "Sam",
		"favorite_restaurants.v1":   now - 100,
		"favorite_restaurants.v2":   now,
		"unrelated_field.with.dots": "ignored",
	}})

	svc, _ := newTestServices(t, store)

	ids, err := svc.Favorites.FavoriteVenueIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "v1"}, ids, "newest first")
}

func TestFavoriteVenueIDs_LocalServedThenRefreshed(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := newFakeStore()
	store.put(remote.CollectionUsers, remote.Document{ID: testUserID, Fields: map[string]any{
		"favorite_restaurants": map[string]any{"v2": now.Unix()},
	}})

	svc, db := newTestServices(t, store)
	repo := favorites.NewSQLiteRepository(db)
	require.NoError(t, repo.Upsert(ctx, &models.Favorite{UserID: testUserID, VenueID: "v1", AddedAt: now}))

	ch, unsub := svc.Bus.Subscribe(events.FavoritesChanged)
	defer unsub()

	ids, err := svc.Favorites.FavoriteVenueIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, ids, "local copy is served immediately")

	svc.Wait()

	// the remote set is authoritative and replaced the local mirror
	refreshed, err := repo.ListByUser(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, refreshed, 1)
	assert.Equal(t, "v2", refreshed[0].VenueID)

	select {
	case <-ch:
	default:
		t.Fatal("expected a favorites-changed signal after the refresh")
	}
}

func TestAddFavorite_WritesNestedEncoding(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newTestServices(t, store)

	require.NoError(t, svc.Favorites.Add(ctx, "v9"))

	require.Len(t, store.sets, 1)
	assert.Equal(t, remote.CollectionUsers, store.sets[0].collection)
	assert.Equal(t, testUserID, store.sets[0].id)

	nested, ok := store.sets[0].fields[remote.FavoritesField].(map[string]any)
	require.True(t, ok, "new writes use the nested encoding only")
	assert.Contains(t, nested, "v9")

	fav, err := svc.Favorites.IsFavorite(ctx, "v9")
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestRemoveFavorite_DeletesBothEncodings(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newTestServices(t, store)

	require.NoError(t, svc.Favorites.Add(ctx, "v9"))
	require.NoError(t, svc.Favorites.Remove(ctx, "v9"))

	require.Len(t, store.deletes, 1)
	paths := store.deletes[0].paths
	require.Len(t, paths, 2)
	assert.Equal(t, remote.FieldPath{"favorite_restaurants", "v9"}, paths[0])
	assert.Equal(t, remote.FieldPath{"favorite_restaurants.v9"}, paths[1])

	fav, err := svc.Favorites.IsFavorite(ctx, "v9")
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestRemoveFavorite_RemoteFailureLeavesLocalUntouched(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, db := newTestServices(t, store)

	require.NoError(t, svc.Favorites.Add(ctx, "v9"))

	store.mu.Lock()
	store.err = assert.AnError
	store.mu.Unlock()

	require.Error(t, svc.Favorites.Remove(ctx, "v9"))

	local, err := favorites.NewSQLiteRepository(db).ListByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, local, 1, "a failed remote delete must not be mirrored")
}

func TestIsFavorite_ColdMirrorFetchesRemote(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := newFakeStore()
	store.put(remote.CollectionUsers, remote.Document{ID: testUserID, Fields: map[string]any{
		"favorite_restaurants": map[string]any{"v1": now.Unix()},
	}})

	svc, db := newTestServices(t, store)

	fav, err := svc.Favorites.IsFavorite(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, fav, "a cold local mirror must not report false for a remote favorite")

	local, err := favorites.NewSQLiteRepository(db).ListByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, local, 1, "the fetch hydrates the mirror")
}

func TestRefreshFavorites_CancelledBeforeCommit(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := newFakeStore()
	store.put(remote.CollectionUsers, remote.Document{ID: testUserID, Fields: map[string]any{
		"favorite_restaurants": map[string]any{"v2": now.Unix()},
	}})

	svc, db := newTestServices(t, store)
	repo := favorites.NewSQLiteRepository(db)
	require.NoError(t, repo.Upsert(ctx, &models.Favorite{UserID: testUserID, VenueID: "v1", AddedAt: now}))

	ch, unsub := svc.Bus.Subscribe(events.FavoritesChanged)
	defer unsub()

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	err := svc.Favorites.refreshFavorites(cancelled, testUserID)
	require.ErrorIs(t, err, context.Canceled)

	local, err := repo.ListByUser(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, "v1", local[0].VenueID, "stale in-flight results must not replace the mirror")

	select {
	case <-ch:
		t.Fatal("a cancelled refresh must not broadcast")
	default:
	}
}

package reviews

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platescout/internal/models"
	"platescout/internal/storage"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	rev := &models.Review{
		ID:        "r1",
		UserID:    "u1",
		VenueID:   "v1",
		Stars:     4,
		Comment:   "solid",
		CreatedAt: time.Unix(3000, 0).UTC(),
	}
	require.NoError(t, r.Upsert(ctx, rev))

	got, err := r.GetByID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Stars)
	assert.Equal(t, "solid", got.Comment)

	// explicit edit
	rev.Stars = 5
	rev.Comment = "actually great"
	require.NoError(t, r.Upsert(ctx, rev))

	got, err = r.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stars)
	assert.Equal(t, "actually great", got.Comment)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUpsert_ToleratesMissingParents(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// neither user u9 nor venue v9 exists locally yet
	rev := &models.Review{ID: "r1", UserID: "u9", VenueID: "v9", Stars: 3, CreatedAt: time.Now()}
	require.NoError(t, r.Upsert(ctx, rev))

	got, err := r.GetByID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v9", got.VenueID)
}

func TestListByVenue_NewestFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for i, id := range []string{"r1", "r2", "r3"} {
		rev := &models.Review{
			ID: id, UserID: "u1", VenueID: "v1", Stars: 3,
			CreatedAt: time.Unix(int64(1000*(i+1)), 0),
		}
		require.NoError(t, r.Upsert(ctx, rev))
	}
	other := &models.Review{ID: "r4", UserID: "u1", VenueID: "v2", Stars: 1, CreatedAt: time.Unix(9999, 0)}
	require.NoError(t, r.Upsert(ctx, other))

	got, err := r.ListByVenue(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"r3", "r2", "r1"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestListByUser_EmptyWhenNone(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	got, err := r.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

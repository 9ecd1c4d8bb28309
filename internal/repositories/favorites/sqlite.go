package favorites

import (
	"context"
	"fmt"
	"time"

	"platescout/internal/dbx"
	"platescout/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ensureParents(ctx context.Context, userID, venueID string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id) VALUES (?)`, userID); err != nil {
		return fmt.Errorf("failed to ensure favorite user: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO venues (id) VALUES (?)`, venueID); err != nil {
		return fmt.Errorf("failed to ensure favorite venue: %w", err)
	}
	return nil
}

// Upsert inserts or refreshes a favorite pair. Placeholder parent rows keep
// foreign keys satisfied for venues not yet synced locally.
func (r *SQLiteRepository) Upsert(ctx context.Context, f *models.Favorite) error {
	if err := r.ensureParents(ctx, f.UserID, f.VenueID); err != nil {
		return err
	}

	query := `INSERT INTO favorites (user_id, venue_id, added_at)
			VALUES (?, ?, ?)
			ON CONFLICT(user_id, venue_id) DO UPDATE SET added_at = excluded.added_at
	`
	_, err := r.db.ExecContext(ctx, query, f.UserID, f.VenueID, f.AddedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return nil
}

// Remove deletes a favorite pair; absent pairs are a no-op.
func (r *SQLiteRepository) Remove(ctx context.Context, userID, venueID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND venue_id = ?`, userID, venueID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// ListByUser returns a user's favorites, newest first.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, venue_id, added_at FROM favorites WHERE user_id = ? ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select favorites: %w", err)
	}
	defer rows.Close()

	var result []models.Favorite
	for rows.Next() {
		var f models.Favorite
		var addedAt int64
		if err := rows.Scan(&f.UserID, &f.VenueID, &addedAt); err != nil {
			return nil, err
		}
		f.AddedAt = time.Unix(addedAt, 0).UTC()
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceAll deletes the user's current favorites and inserts favs. Callers
// wanting atomicity run it inside dbx.WithTx with a tx-bound repository.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, userID string, favs []models.Favorite) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	for i := range favs {
		if err := r.Upsert(ctx, &favs[i]); err != nil {
			return err
		}
	}
	return nil
}

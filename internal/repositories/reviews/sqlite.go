package reviews

import (
	"context"
	"database/sql"
	"errors"
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

// Upsert inserts or updates a review row by id. Placeholder parent rows are
// created first so foreign keys hold while the venue or author is still
// syncing; a later parent upsert fills them in.
func (r *SQLiteRepository) Upsert(ctx context.Context, rev *models.Review) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id) VALUES (?)`, rev.UserID); err != nil {
		return fmt.Errorf("failed to ensure review author: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO venues (id) VALUES (?)`, rev.VenueID); err != nil {
		return fmt.Errorf("failed to ensure review venue: %w", err)
	}

	query := `INSERT INTO reviews (id, user_id, venue_id, stars, comment, image_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
				venue_id = excluded.venue_id,
				stars = excluded.stars,
				comment = excluded.comment,
				image_url = excluded.image_url,
				created_at = excluded.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		rev.ID, rev.UserID, rev.VenueID, rev.Stars, rev.Comment, rev.ImageURL, rev.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}
	return nil
}

const reviewColumns = `id, user_id, venue_id, stars, comment, image_url, created_at`

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	rev := &models.Review{}
	var createdAt int64
	err := row.Scan(&rev.ID, &rev.UserID, &rev.VenueID, &rev.Stars, &rev.Comment, &rev.ImageURL, &createdAt)
	if err != nil {
		return nil, err
	}
	rev.CreatedAt = time.Unix(createdAt, 0).UTC()
	return rev, nil
}

// GetByID returns a review by id. Absence is reported as nil, not an error.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)

	rev, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return rev, nil
}

// ListByVenue returns a venue's reviews ordered newest first.
func (r *SQLiteRepository) ListByVenue(ctx context.Context, venueID string) ([]models.Review, error) {
	return r.selectReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE venue_id = ? ORDER BY created_at DESC`, venueID)
}

// ListByUser returns a user's reviews ordered newest first.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return r.selectReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *SQLiteRepository) selectReviews(ctx context.Context, query string, args ...any) ([]models.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select reviews: %w", err)
	}
	defer rows.Close()

	var result []models.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

package venues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"platescout/internal/dbx"
	"platescout/internal/models"
)

// inClauseLimit caps the number of parameters per IN clause, mirroring the
// remote store's 10-item batch limit.
const inClauseLimit = 10

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts or updates a venue row by id.
func (r *SQLiteRepository) Upsert(ctx context.Context, v *models.Venue) error {
	query := `INSERT INTO venues (id, name, category, rating, has_offer, address, opening_time, closing_time, image_url, lat, lon, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				category = excluded.category,
				rating = excluded.rating,
				has_offer = excluded.has_offer,
				address = excluded.address,
				opening_time = excluded.opening_time,
				closing_time = excluded.closing_time,
				image_url = excluded.image_url,
				lat = excluded.lat,
				lon = excluded.lon,
				updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.Name, v.Category, v.Rating, v.HasOffer, v.Address,
		v.OpeningTime, v.ClosingTime, v.ImageURL, v.Lat, v.Lon, v.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert venue: %w", err)
	}
	return nil
}

const venueColumns = `id, name, category, rating, has_offer, address, opening_time, closing_time, image_url, lat, lon, updated_at`

func scanVenue(row interface{ Scan(...any) error }) (*models.Venue, error) {
	v := &models.Venue{}
	var hasOffer int
	var opening, closing sql.NullInt64
	var updatedAt int64
	err := row.Scan(&v.ID, &v.Name, &v.Category, &v.Rating, &hasOffer,
		&v.Address, &opening, &closing, &v.ImageURL, &v.Lat, &v.Lon, &updatedAt)
	if err != nil {
		return nil, err
	}
	v.HasOffer = hasOffer != 0
	if opening.Valid {
		t := int(opening.Int64)
		v.OpeningTime = &t
	}
	if closing.Valid {
		t := int(closing.Int64)
		v.ClosingTime = &t
	}
	v.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return v, nil
}

// Reads skip rows with an empty name: those are id-only placeholder parents
// created by review/favorite upserts, not fetched venues, and serving one
// would shadow the synchronous remote fetch the caller expects on a miss.
// A fetched venue always carries a name.

// GetByID returns a venue by id. Absence is reported as nil, not an error.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ? AND name <> ''`, id)

	v, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return v, nil
}

// GetMany returns the venues matching ids, one query per chunk of at most
// inClauseLimit ids.
func (r *SQLiteRepository) GetMany(ctx context.Context, ids []string) ([]models.Venue, error) {
	var result []models.Venue

	for start := 0; start < len(ids); start += inClauseLimit {
		end := min(start+inClauseLimit, len(ids))
		chunk := ids[start:end]

		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = placeholders[:len(placeholders)-1]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		chunkResult, err := r.selectVenues(ctx,
			`SELECT `+venueColumns+` FROM venues WHERE id IN (`+placeholders+`) AND name <> ''`, args...)
		if err != nil {
			return nil, err
		}
		result = append(result, chunkResult...)
	}

	return result, nil
}

// List returns all venues ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]models.Venue, error) {
	return r.selectVenues(ctx, `SELECT `+venueColumns+` FROM venues WHERE name <> '' ORDER BY name`)
}

// ListByCategory returns venues in the given category ordered by name.
func (r *SQLiteRepository) ListByCategory(ctx context.Context, category string) ([]models.Venue, error) {
	return r.selectVenues(ctx, `SELECT `+venueColumns+` FROM venues WHERE category = ? AND name <> '' ORDER BY name`, category)
}

// ListWithOffer returns venues with an active offer ordered by name.
func (r *SQLiteRepository) ListWithOffer(ctx context.Context) ([]models.Venue, error) {
	return r.selectVenues(ctx, `SELECT `+venueColumns+` FROM venues WHERE has_offer = 1 AND name <> '' ORDER BY name`)
}

func (r *SQLiteRepository) selectVenues(ctx context.Context, query string, args ...any) ([]models.Venue, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select venues: %w", err)
	}
	defer rows.Close()

	var result []models.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

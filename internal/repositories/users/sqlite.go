package users

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

// Upsert inserts or updates a user row by id.
func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (id, name, email, role, budget, diet, profile_picture_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				email = excluded.email,
				role = excluded.role,
				budget = excluded.budget,
				diet = excluded.diet,
				profile_picture_url = excluded.profile_picture_url,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.Role, u.Budget, u.Diet, u.AvatarURL,
		u.CreatedAt.Unix(), u.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, role, budget, diet, profile_picture_url, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var createdAt, updatedAt int64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Budget, &u.Diet, &u.AvatarURL, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	u.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return u, nil
}

// Reads skip rows with an empty name: those are id-only placeholder parents
// created by review/favorite upserts, not fetched profiles. A profile whose
// remote document carries no display name is re-fetched on every read, which
// costs a round trip but never serves a ghost record.

// GetByID returns a user by id. Absence is reported as nil, not an error.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? AND name <> ''`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetMany returns the users matching ids, issuing one query per chunk of at
// most inClauseLimit ids.
func (r *SQLiteRepository) GetMany(ctx context.Context, ids []string) ([]models.User, error) {
	var result []models.User

	for start := 0; start < len(ids); start += inClauseLimit {
		end := min(start+inClauseLimit, len(ids))
		chunk := ids[start:end]

		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = placeholders[:len(placeholders)-1]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		rows, err := r.db.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`) AND name <> ''`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to select users: %w", err)
		}

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			result = append(result, *u)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return result, nil
}

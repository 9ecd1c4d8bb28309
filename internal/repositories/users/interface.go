package users

import (
	"context"

	"platescout/internal/models"
)

// Repository describes CRUD and query operations for user records.
// Implementations are typically backed by the local SQLite database.
type Repository interface {
	// Upsert inserts a new user or updates an existing one by id.
	// Calling it twice with the same payload leaves the row unchanged.
	Upsert(ctx context.Context, u *models.User) error

	// GetByID returns a user by id, or nil when no row exists.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetMany returns the users whose ids are in the given list, chunking
	// the IN clause to stay within the batch parameter limit. Missing ids
	// are silently absent from the result.
	GetMany(ctx context.Context, ids []string) ([]models.User, error)
}

package venues

import (
	"context"

	"platescout/internal/models"
)

// Repository describes CRUD and query operations for venue records.
type Repository interface {
	// Upsert inserts a new venue or updates an existing one by id.
	Upsert(ctx context.Context, v *models.Venue) error

	// GetByID returns a venue by id, or nil when no row exists.
	GetByID(ctx context.Context, id string) (*models.Venue, error)

	// GetMany returns the venues whose ids are in the given list, chunked
	// to the batch parameter limit.
	GetMany(ctx context.Context, ids []string) ([]models.Venue, error)

	// List returns all venues ordered by name.
	List(ctx context.Context) ([]models.Venue, error)

	// ListByCategory returns venues in the given category ordered by name.
	ListByCategory(ctx context.Context, category string) ([]models.Venue, error)

	// ListWithOffer returns venues with an active offer ordered by name.
	ListWithOffer(ctx context.Context) ([]models.Venue, error)
}

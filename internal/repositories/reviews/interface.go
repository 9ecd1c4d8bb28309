package reviews

import (
	"context"

	"platescout/internal/models"
)

// Repository describes CRUD and query operations for review records.
type Repository interface {
	// Upsert inserts a new review or updates an existing one by id.
	// A review may arrive before its venue or author has been synced
	// locally; implementations must accept it anyway.
	Upsert(ctx context.Context, rev *models.Review) error

	// GetByID returns a review by id, or nil when no row exists.
	GetByID(ctx context.Context, id string) (*models.Review, error)

	// ListByVenue returns a venue's reviews, newest first.
	ListByVenue(ctx context.Context, venueID string) ([]models.Review, error)

	// ListByUser returns a user's reviews, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Review, error)
}

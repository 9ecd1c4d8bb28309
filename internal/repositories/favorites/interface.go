package favorites

import (
	"context"

	"platescout/internal/models"
)

// Repository describes operations over the user→venue favorites relation.
type Repository interface {
	// Upsert inserts or refreshes a favorite; the (user, venue) pair is
	// the key, so repeating a call only updates the added-at timestamp.
	Upsert(ctx context.Context, f *models.Favorite) error

	// Remove deletes a favorite. Removing an absent pair is not an error.
	Remove(ctx context.Context, userID, venueID string) error

	// ListByUser returns a user's favorites ordered by added time,
	// newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Favorite, error)

	// ReplaceAll makes the local set for userID equal to favs. Used when a
	// remote refresh arrives, since the remote copy is authoritative and
	// may have dropped pairs.
	ReplaceAll(ctx context.Context, userID string, favs []models.Favorite) error
}

package models

import "time"

// Review is an append-mostly record; rows change only via explicit edit.
// Cascade-deleted locally when the parent venue row is removed.
type Review struct {
	ID      string
	UserID  string
	VenueID string

	// Stars is the integer star rating, 1–5.
	Stars int

	Comment  string
	ImageURL *string

	CreatedAt time.Time
}

// ReviewInput carries caller-supplied fields for creating or editing a
// review. Validation tags are enforced by the review service.
type ReviewInput struct {
	VenueID string `validate:"required"`
	Stars   int    `validate:"required,min=1,max=5"`
	Comment string `validate:"max=2000"`

	// Photo optionally holds raw image bytes to upload alongside the review.
	Photo []byte `validate:"-"`
}

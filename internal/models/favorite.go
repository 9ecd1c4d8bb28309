package models

import "time"

// Favorite links a user to a venue. The (UserID, VenueID) pair is the
// composite primary key; AddedAt orders "list favorites" newest first.
type Favorite struct {
	UserID  string
	VenueID string
	AddedAt time.Time
}

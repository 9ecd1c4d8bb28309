package models

import "time"

// Venue is a restaurant record. Upserted whenever a fresher remote copy is
// fetched; last applied write wins.
type Venue struct {
	ID       string
	Name     string
	Category string

	// Rating is the aggregate star rating, 0–5. Zero means unrated.
	Rating float64

	// HasOffer reports an active promotional offer.
	HasOffer bool

	Address *string

	// OpeningTime and ClosingTime are integer times of day encoded as HHMM
	// (e.g. 930 for 09:30, 2200 for 22:00).
	OpeningTime *int
	ClosingTime *int

	ImageURL *string

	Lat *float64
	Lon *float64

	UpdatedAt time.Time
}

// Package models defines the records persisted by the local store and
// exchanged with the remote document store.
package models

import "time"

// User is a profile record. It is never deleted by this subsystem; account
// lifecycle is an external concern.
type User struct {
	// ID is the stable identity, shared with the remote document id.
	ID string

	Name  string
	Email string
	Role  string

	// Budget and Diet are optional preference fields; nil maps to column NULL.
	Budget *string
	Diet   *string

	// AvatarURL references the profile picture in the blob store.
	AvatarURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileInput carries caller-supplied fields for a profile update.
type ProfileInput struct {
	Name   string `validate:"required,max=100"`
	Email  string `validate:"omitempty,email"`
	Budget *string
	Diet   *string

	// Avatar optionally holds raw image bytes for a new profile picture.
	Avatar []byte `validate:"-"`
}

// ProfileSummary is the lightweight projection cached for list rendering:
// display name plus avatar reference, keyed by user id.
type ProfileSummary struct {
	ID        string
	Name      string
	AvatarURL string
}

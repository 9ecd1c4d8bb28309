package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platescout/internal/common"
	"platescout/internal/models"
)

func TestDocument_NumericCoercion(t *testing.T) {
	doc := &Document{ID: "d", Fields: map[string]any{
		"asFloat": float64(4),
		"asInt":   int(4),
		"asInt64": int64(4),
	}}

	for _, key := range []string{"asFloat", "asInt", "asInt64"} {
		f, ok := doc.Float(key)
		require.True(t, ok, key)
		assert.Equal(t, 4.0, f, key)

		n, ok := doc.Int(key)
		require.True(t, ok, key)
		assert.Equal(t, 4, n, key)
	}
}

func TestDocument_BoolCoercion(t *testing.T) {
	doc := &Document{ID: "d", Fields: map[string]any{
		"real":    true,
		"numeric": float64(1),
		"zero":    float64(0),
	}}

	b, ok := doc.Bool("real")
	require.True(t, ok)
	assert.True(t, b)

	b, ok = doc.Bool("numeric")
	require.True(t, ok)
	assert.True(t, b)

	b, ok = doc.Bool("zero")
	require.True(t, ok)
	assert.False(t, b)
}

func TestDocument_TimeCoercion(t *testing.T) {
	doc := &Document{ID: "d", Fields: map[string]any{
		"epoch":  float64(1000),
		"string": "2024-05-01T10:00:00Z",
		"junk":   "yesterday",
	}}

	got, ok := doc.Time("epoch")
	require.True(t, ok)
	assert.Equal(t, time.Unix(1000, 0).UTC(), got)

	got, ok = doc.Time("string")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got)

	_, ok = doc.Time("junk")
	assert.False(t, ok)
}

func TestDecodeVenue_FullDocument(t *testing.T) {
	doc := &Document{ID: "v1", Fields: map[string]any{
		"name":         "Trattoria Roma",
		"typeOfFood":   "italian",
		"rating":       float64(4.5),
		"offer":        true,
		"address":      "12 Via Roma",
		"opening_time": float64(930),
		"closing_time": float64(2200),
		"imageUrl":     "images/v1.jpg",
		"lat":          float64(41.9),
		"lon":          float64(12.5),
	}}

	v, err := DecodeVenue(doc)
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, "Trattoria Roma", v.Name)
	assert.Equal(t, "italian", v.Category)
	assert.Equal(t, 4.5, v.Rating)
	assert.True(t, v.HasOffer)
	require.NotNil(t, v.OpeningTime)
	assert.Equal(t, 930, *v.OpeningTime)
	require.NotNil(t, v.Lat)
	assert.Equal(t, 41.9, *v.Lat)
}

func TestDecodeVenue_IntegerEncodedNumbers(t *testing.T) {
	// a legacy writer stored rating and the offer flag as integers
	doc := &Document{ID: "v1", Fields: map[string]any{
		"name":   "Snack Bar",
		"rating": int64(4),
		"offer":  float64(1),
	}}

	v, err := DecodeVenue(doc)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Rating)
	assert.True(t, v.HasOffer)
}

func TestDecodeVenue_MissingName(t *testing.T) {
	doc := &Document{ID: "v1", Fields: map[string]any{"rating": 4.0}}

	_, err := DecodeVenue(doc)
	assert.ErrorIs(t, err, common.ErrDecode)
}

func TestDecodeReview_RoundTrip(t *testing.T) {
	doc := &Document{ID: "r1", Fields: map[string]any{
		"user_id":       "u1",
		"restaurant_id": "v1",
		"stars":         float64(5),
		"comment":       "excellent",
		"imageURL":      "images/r1.jpg",
		"createdAt":     float64(1000),
	}}

	r, err := DecodeReview(doc)
	require.NoError(t, err)
	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, "v1", r.VenueID)
	assert.Equal(t, 5, r.Stars)
	require.NotNil(t, r.ImageURL)
	assert.Equal(t, "images/r1.jpg", *r.ImageURL)
	assert.Equal(t, time.Unix(1000, 0).UTC(), r.CreatedAt)

	// encode mirrors the remote field names
	fields := EncodeReview(r)
	assert.Equal(t, "v1", fields["restaurant_id"])
	assert.Equal(t, int64(1000), fields["createdAt"])
}

func TestDecodeReview_MissingReferences(t *testing.T) {
	_, err := DecodeReview(&Document{ID: "r1", Fields: map[string]any{"stars": 4.0}})
	assert.ErrorIs(t, err, common.ErrDecode)

	_, err = DecodeReview(&Document{ID: "r1", Fields: map[string]any{"user_id": "u1"}})
	assert.ErrorIs(t, err, common.ErrDecode)
}

func TestDecodeUser_OptionalFields(t *testing.T) {
	doc := &Document{ID: "u1", Fields: map[string]any{
		"name":  "Dana",
		"email": "dana@example.com",
	}}

	u, err := DecodeUser(doc)
	require.NoError(t, err)
	assert.Equal(t, "Dana", u.Name)
	assert.Nil(t, u.Budget)
	assert.Nil(t, u.AvatarURL)

	s := Summary(u)
	assert.Equal(t, "Dana", s.Name)
	assert.Empty(t, s.AvatarURL)
}

func TestEncodeUserProfile_Timestamps(t *testing.T) {
	u := &models.User{
		ID:        "u1",
		Name:      "Dana",
		Email:     "dana@example.com",
		CreatedAt: time.Unix(1000, 0).UTC(),
		UpdatedAt: time.Unix(2000, 0).UTC(),
	}

	fields := EncodeUserProfile(u)
	assert.Equal(t, int64(1000), fields["createdAt"])
	assert.Equal(t, int64(2000), fields["updatedAt"])

	// unknown creation time is left for the remote side, never written as zero
	u.CreatedAt = time.Time{}
	fields = EncodeUserProfile(u)
	assert.NotContains(t, fields, "createdAt")
}

package remote

import (
	"fmt"

	"platescout/internal/common"
	"platescout/internal/models"
)

// Remote field names. Venue and review documents predate the mobile client
// and keep their historical spellings (typeOfFood, restaurant_id, and the
// imageUrl/imageURL casing split).
const (
	venueFieldName     = "name"
	venueFieldCategory = "typeOfFood"
	venueFieldRating   = "rating"
	venueFieldOffer    = "offer"
	venueFieldAddress  = "address"
	venueFieldOpening  = "opening_time"
	venueFieldClosing  = "closing_time"
	venueFieldImage    = "imageUrl"
	venueFieldLat      = "lat"
	venueFieldLon      = "lon"

	reviewFieldUser    = "user_id"
	reviewFieldVenue   = "restaurant_id"
	reviewFieldStars   = "stars"
	reviewFieldComment = "comment"
	reviewFieldImage   = "imageURL"
	reviewFieldCreated = "createdAt"

	userFieldName    = "name"
	userFieldEmail   = "email"
	userFieldRole    = "role"
	userFieldBudget  = "budget"
	userFieldDiet    = "diet"
	userFieldAvatar  = "profilePictureURL"
	userFieldCreated = "createdAt"
	userFieldUpdated = "updatedAt"
)

// Query field names exported for repository-layer lookups.
const (
	FieldVenueCategory = venueFieldCategory
	FieldVenueOffer    = venueFieldOffer
	FieldReviewUser    = reviewFieldUser
	FieldReviewVenue   = reviewFieldVenue
)

// DecodeVenue converts a venue document into a typed record. The document id
// is the venue id; a missing name is a decode error, everything else is
// optional.
func DecodeVenue(doc *Document) (*models.Venue, error) {
	name, ok := doc.Str(venueFieldName)
	if !ok {
		return nil, fmt.Errorf("venue %s: missing %s: %w", doc.ID, venueFieldName, common.ErrDecode)
	}

	v := &models.Venue{ID: doc.ID, Name: name}

	v.Category, _ = doc.Str(venueFieldCategory)
	v.Rating, _ = doc.Float(venueFieldRating)
	v.HasOffer, _ = doc.Bool(venueFieldOffer)

	if s, ok := doc.Str(venueFieldAddress); ok {
		v.Address = &s
	}
	if n, ok := doc.Int(venueFieldOpening); ok {
		v.OpeningTime = &n
	}
	if n, ok := doc.Int(venueFieldClosing); ok {
		v.ClosingTime = &n
	}
	if s, ok := doc.Str(venueFieldImage); ok {
		v.ImageURL = &s
	}
	if f, ok := doc.Float(venueFieldLat); ok {
		v.Lat = &f
	}
	if f, ok := doc.Float(venueFieldLon); ok {
		v.Lon = &f
	}

	// venue documents carry no update timestamp; the caller stamps the
	// fetch time before mirroring locally
	return v, nil
}

// DecodeReview converts a review document into a typed record. Author and
// venue references are required.
func DecodeReview(doc *Document) (*models.Review, error) {
	userID, ok := doc.Str(reviewFieldUser)
	if !ok {
		return nil, fmt.Errorf("review %s: missing %s: %w", doc.ID, reviewFieldUser, common.ErrDecode)
	}
	venueID, ok := doc.Str(reviewFieldVenue)
	if !ok {
		return nil, fmt.Errorf("review %s: missing %s: %w", doc.ID, reviewFieldVenue, common.ErrDecode)
	}

	r := &models.Review{ID: doc.ID, UserID: userID, VenueID: venueID}

	r.Stars, _ = doc.Int(reviewFieldStars)
	r.Comment, _ = doc.Str(reviewFieldComment)
	if s, ok := doc.Str(reviewFieldImage); ok {
		r.ImageURL = &s
	}
	if t, ok := doc.Time(reviewFieldCreated); ok {
		r.CreatedAt = t
	}

	return r, nil
}

// EncodeReview produces the remote field map for a review write.
func EncodeReview(r *models.Review) map[string]any {
	fields := map[string]any{
		reviewFieldUser:    r.UserID,
		reviewFieldVenue:   r.VenueID,
		reviewFieldStars:   r.Stars,
		reviewFieldComment: r.Comment,
		reviewFieldCreated: r.CreatedAt.Unix(),
	}
	if r.ImageURL != nil {
		fields[reviewFieldImage] = *r.ImageURL
	}
	return fields
}

// DecodeUser converts a user document into a typed record. Only the id is
// required; profile fields may be absent on freshly provisioned accounts.
func DecodeUser(doc *Document) (*models.User, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("user document without id: %w", common.ErrDecode)
	}

	u := &models.User{ID: doc.ID}

	u.Name, _ = doc.Str(userFieldName)
	u.Email, _ = doc.Str(userFieldEmail)
	u.Role, _ = doc.Str(userFieldRole)

	if s, ok := doc.Str(userFieldBudget); ok {
		u.Budget = &s
	}
	if s, ok := doc.Str(userFieldDiet); ok {
		u.Diet = &s
	}
	if s, ok := doc.Str(userFieldAvatar); ok {
		u.AvatarURL = &s
	}
	if t, ok := doc.Time(userFieldCreated); ok {
		u.CreatedAt = t
	}
	if t, ok := doc.Time(userFieldUpdated); ok {
		u.UpdatedAt = t
	}

	return u, nil
}

// EncodeUserProfile produces the remote field map for a profile update.
// Nil optional fields are omitted, leaving the remote value untouched.
func EncodeUserProfile(u *models.User) map[string]any {
	fields := map[string]any{
		userFieldName:    u.Name,
		userFieldEmail:   u.Email,
		userFieldUpdated: u.UpdatedAt.Unix(),
	}
	// freshly provisioned accounts get their creation stamp on first save;
	// an unknown creation time (zero or pre-epoch) is never written
	if u.CreatedAt.Unix() > 0 {
		fields[userFieldCreated] = u.CreatedAt.Unix()
	}
	if u.Role != "" {
		fields[userFieldRole] = u.Role
	}
	if u.Budget != nil {
		fields[userFieldBudget] = *u.Budget
	}
	if u.Diet != nil {
		fields[userFieldDiet] = *u.Diet
	}
	if u.AvatarURL != nil {
		fields[userFieldAvatar] = *u.AvatarURL
	}
	return fields
}

// Summary projects a decoded user into the cacheable profile summary.
func Summary(u *models.User) models.ProfileSummary {
	s := models.ProfileSummary{ID: u.ID, Name: u.Name}
	if u.AvatarURL != nil {
		s.AvatarURL = *u.AvatarURL
	}
	return s
}

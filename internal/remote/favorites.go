package remote

import (
	"strings"
	"time"
)

// FavoritesField is the user-document field holding the favorite-venues
// relation in its current encoding: a nested map from venue id to the
// added-at timestamp.
const FavoritesField = "favorite_restaurants"

// favoritesFlatPrefix is the legacy encoding: one flat top-level field per
// favorite, literally named "favorite_restaurants.<venue id>", holding the
// added-at timestamp.
const favoritesFlatPrefix = FavoritesField + "."

// ParseFavorites normalizes both favorite encodings into one canonical
// venue-id → added-at mapping. When the nested map is present and non-empty
// it is used exclusively; otherwise the flat fields are scanned. Entries
// whose timestamps cannot be coerced are skipped.
func ParseFavorites(doc *Document) map[string]time.Time {
	result := make(map[string]time.Time)

	if nested, ok := doc.Map(FavoritesField); ok && len(nested) > 0 {
		for venueID, raw := range nested {
			if t, ok := coerceTime(raw); ok {
				result[venueID] = t
			}
		}
		return result
	}

	for field, raw := range doc.Fields {
		venueID, found := strings.CutPrefix(field, favoritesFlatPrefix)
		if !found || venueID == "" {
			continue
		}
		if t, ok := coerceTime(raw); ok {
			result[venueID] = t
		}
	}

	return result
}

// FavoriteWrite returns the field map for adding a favorite. New writes use
// the nested-map encoding only.
func FavoriteWrite(venueID string, addedAt time.Time) map[string]any {
	return map[string]any{
		FavoritesField: map[string]any{venueID: addedAt.Unix()},
	}
}

// FavoriteDeletePaths returns the field paths to delete when removing a
// favorite. Both encodings are targeted: existing documents may still hold
// the legacy flat field, and deleting only one would leave a stale favorite
// visible to an old reader.
func FavoriteDeletePaths(venueID string) []FieldPath {
	return []FieldPath{
		{FavoritesField, venueID},       // nested map entry
		{favoritesFlatPrefix + venueID}, // legacy flat field
	}
}

package remote

import "context"

// Collection names in the remote document store. Venues keep their legacy
// remote name.
const (
	CollectionUsers   = "users"
	CollectionVenues  = "restaurants"
	CollectionReviews = "reviews"
)

// BatchLimit is the maximum number of ids the remote store accepts in a
// single id-list lookup. Larger requests are rejected, so callers chunk.
const BatchLimit = 10

// FieldPath addresses a field inside a document. A single segment names a
// top-level field (which may itself contain dots, as the legacy flat
// favorites encoding does); multiple segments descend into nested maps.
type FieldPath []string

// Store is the narrow contract to the remote document store. Implementations
// must map absence to common.ErrNotFound and transport failures to
// common.ErrRemoteUnavailable so read paths can fall back to local data.
type Store interface {
	// Get fetches a single document by id.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// GetMany fetches documents by id list; len(ids) must not exceed
	// BatchLimit. Missing ids are silently absent from the result.
	GetMany(ctx context.Context, collection string, ids []string) ([]Document, error)

	// QueryByField fetches all documents whose field equals value.
	QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error)

	// List fetches every document in the collection.
	List(ctx context.Context, collection string) ([]Document, error)

	// Set merges fields into the document, creating it if absent.
	Set(ctx context.Context, collection, id string, fields map[string]any) error

	// DeleteFields removes the given field paths from the document.
	// Missing paths are ignored.
	DeleteFields(ctx context.Context, collection, id string, paths ...FieldPath) error
}

// Blobs is the narrow contract to the remote object store.
type Blobs interface {
	// Upload stores data under key.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// DownloadURL returns a short-lived URL from which key can be fetched.
	DownloadURL(ctx context.Context, key string) (string, error)
}

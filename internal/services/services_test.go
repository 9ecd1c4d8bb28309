package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"platescout/internal/common"
	"platescout/internal/config"
	"platescout/internal/logging"
	"platescout/internal/remote"
	"platescout/internal/session"
	"platescout/internal/storage"
)

// fakeStore is an in-memory remote.Store recording writes and counting
// batch lookups.
type fakeStore struct {
	mu           sync.Mutex
	docs         map[string]map[string]remote.Document
	err          error
	getManyCalls int
	sets         []setCall
	deletes      []deleteCall
}

type setCall struct {
	collection string
	id         string
	fields     map[string]any
}

type deleteCall struct {
	collection string
	id         string
	paths      []remote.FieldPath
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]map[string]remote.Document{}}
}

func (f *fakeStore) put(collection string, doc remote.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]remote.Document{}
	}
	f.docs[collection][doc.ID] = doc
}

func (f *fakeStore) Get(ctx context.Context, collection, id string) (*remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[collection][id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &doc, nil
}

func (f *fakeStore) GetMany(ctx context.Context, collection string, ids []string) ([]remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(ids) > remote.BatchLimit {
		return nil, errors.New("batch too large")
	}
	f.getManyCalls++

	var out []remote.Document
	for _, id := range ids {
		if doc, ok := f.docs[collection][id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeStore) QueryByField(ctx context.Context, collection, field string, value any) ([]remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []remote.Document
	for _, doc := range f.docs[collection] {
		if doc.Fields[field] == value {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeStore) List(ctx context.Context, collection string) ([]remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []remote.Document
	for _, doc := range f.docs[collection] {
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}

	if f.docs[collection] == nil {
		f.docs[collection] = map[string]remote.Document{}
	}
	doc, ok := f.docs[collection][id]
	if !ok {
		doc = remote.Document{ID: id, Fields: map[string]any{}}
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	f.docs[collection][id] = doc

	f.sets = append(f.sets, setCall{collection: collection, id: id, fields: fields})
	return nil
}

func (f *fakeStore) DeleteFields(ctx context.Context, collection, id string, paths ...remote.FieldPath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}

	if doc, ok := f.docs[collection][id]; ok {
		for _, p := range paths {
			switch len(p) {
			case 1:
				delete(doc.Fields, p[0])
			case 2:
				if nested, ok := doc.Fields[p[0]].(map[string]any); ok {
					delete(nested, p[1])
				}
			}
		}
	}

	f.deletes = append(f.deletes, deleteCall{collection: collection, id: id, paths: paths})
	return nil
}

// fakeBlobs records uploads and hands out deterministic URLs.
type fakeBlobs struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{uploads: map[string][]byte{}}
}

func (f *fakeBlobs) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[key] = data
	return nil
}

func (f *fakeBlobs) DownloadURL(ctx context.Context, key string) (string, error) {
	return "https://blobs.test/" + key, nil
}

const testUserID = "user-1"

func newTestServices(t *testing.T, store remote.Store) (*Services, *sql.DB) {
	t.Helper()

	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RefreshTimeout = 5 * time.Second

	svc := New(cfg, db, store, newFakeBlobs(), session.Static(testUserID), logging.Discard())
	t.Cleanup(svc.Wait)
	return svc, db
}

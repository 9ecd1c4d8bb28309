package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"platescout/internal/common"
)

// HTTPStore implements Store against the backend's document REST API.
//
// Endpoints:
//
//	GET    {base}/{collection}/{id}
//	GET    {base}/{collection}?ids=a,b,c
//	GET    {base}/{collection}?field=f&value=<json>
//	GET    {base}/{collection}
//	PATCH  {base}/{collection}/{id}            (merge fields)
//	POST   {base}/{collection}/{id}/delete-fields
type HTTPStore struct {
	base string
	key  string
	hc   *http.Client
}

// NewHTTPStore returns a Store talking to the document API at base.
func NewHTTPStore(base, apiKey string) *HTTPStore {
	return &HTTPStore{
		base: strings.TrimRight(base, "/"),
		key:  apiKey,
		hc:   &http.Client{Timeout: 20 * time.Second},
	}
}

// httpDocument is the wire shape of a document.
type httpDocument struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

func (d httpDocument) toDocument() Document {
	fields := d.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return Document{ID: d.ID, Fields: fields}
}

func (s *HTTPStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var out httpDocument
	if err := s.do(ctx, http.MethodGet, s.docURL(collection, id), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	doc := out.toDocument()
	return &doc, nil
}

func (s *HTTPStore) GetMany(ctx context.Context, collection string, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > BatchLimit {
		return nil, fmt.Errorf("id list of %d exceeds batch limit %d", len(ids), BatchLimit)
	}

	q := url.Values{"ids": {strings.Join(ids, ",")}}
	return s.list(ctx, s.collectionURL(collection)+"?"+q.Encode())
}

func (s *HTTPStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query value: %w", err)
	}
	q := url.Values{"field": {field}, "value": {string(encoded)}}
	return s.list(ctx, s.collectionURL(collection)+"?"+q.Encode())
}

func (s *HTTPStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.list(ctx, s.collectionURL(collection))
}

func (s *HTTPStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	body := map[string]any{"fields": fields}
	return s.do(ctx, http.MethodPatch, s.docURL(collection, id), body, nil)
}

func (s *HTTPStore) DeleteFields(ctx context.Context, collection, id string, paths ...FieldPath) error {
	if len(paths) == 0 {
		return nil
	}
	body := map[string]any{"paths": paths}
	return s.do(ctx, http.MethodPost, s.docURL(collection, id)+"/delete-fields", body, nil)
}

func (s *HTTPStore) collectionURL(collection string) string {
	return s.base + "/" + url.PathEscape(collection)
}

func (s *HTTPStore) docURL(collection, id string) string {
	return s.collectionURL(collection) + "/" + url.PathEscape(id)
}

func (s *HTTPStore) list(ctx context.Context, u string) ([]Document, error) {
	var out []httpDocument
	if err := s.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(out))
	for _, d := range out {
		docs = append(docs, d.toDocument())
	}
	return docs, nil
}

// do performs one request and decodes a JSON response into out (when out is
// non-nil). Transport errors and 5xx responses map to ErrRemoteUnavailable;
// 404 maps to ErrNotFound and 401/403 to ErrUnauthorized.
func (s *HTTPStore) do(ctx context.Context, method, u string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.key != "" {
		req.Header.Set("X-API-Key", s.key)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return common.ErrUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", common.ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecode, err)
	}
	return nil
}

// Package remote defines the narrow contract to the remote document and
// blob stores, the typed decode step for the loosely-typed documents they
// return, and the reconciliation of legacy field encodings.
package remote

import (
	"time"
)

// Document is a schema-flexible record fetched from the remote store: an id
// plus a bag of fields read by string key. Accessors coerce defensively,
// since the remote store may represent numbers as integer or floating point
// depending on how the document was written.
type Document struct {
	ID     string
	Fields map[string]any
}

// Str returns the string field for key.
func (d *Document) Str(key string) (string, bool) {
	v, ok := d.Fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns the numeric field for key, accepting any integer or float
// representation.
func (d *Document) Float(key string) (float64, bool) {
	v, ok := d.Fields[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Int returns the numeric field for key truncated to int.
func (d *Document) Int(key string) (int, bool) {
	f, ok := d.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns the boolean field for key. Numeric 0/1 is accepted, since
// legacy writers stored flags as numbers.
func (d *Document) Bool(key string) (bool, bool) {
	v, ok := d.Fields[key]
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	default:
		if f, ok := d.Float(key); ok {
			return f != 0, true
		}
		return false, false
	}
}

// Map returns the nested map field for key.
func (d *Document) Map(key string) (map[string]any, bool) {
	v, ok := d.Fields[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Time returns the timestamp field for key. Timestamps travel either as
// epoch seconds (integer or float) or as an RFC 3339 string.
func (d *Document) Time(key string) (time.Time, bool) {
	if f, ok := d.Float(key); ok {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), true
	}
	if s, ok := d.Str(key); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func coerceTime(v any) (time.Time, bool) {
	d := Document{Fields: map[string]any{"v": v}}
	return d.Time("v")
}

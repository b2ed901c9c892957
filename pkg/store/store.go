// Package store provides the document store adapter used by the cache
// service and the background refresh scheduler. It exposes minimal CRUD
// primitives over named collections and stamps lifecycle timestamps on
// every write.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates a connectivity or I/O failure at the store
// layer. Callers do not retry at this layer; request-path callers surface
// it and the scheduler skips the affected item.
var ErrUnavailable = errors.New("document store unavailable")

// Record is a single document in a collection. The application-level key
// is the "id" field; the store-internal identifier is never present in
// records returned from reads.
type Record map[string]any

// Filter selects records by exact field match.
type Filter map[string]any

// Store is the document store contract consumed by the cache service and
// the scheduler. Implementations must be safe for concurrent use by
// request-path callers and the background refresh task.
type Store interface {
	// FindOne returns the first record matching filter, or nil if none match.
	FindOne(ctx context.Context, collection string, filter Filter) (Record, error)

	// FindAll returns matching records in insertion order. limit == 0 means
	// unbounded; skip offsets the result window.
	FindAll(ctx context.Context, collection string, filter Filter, limit, skip int64) ([]Record, error)

	// InsertOne stamps createdAt and inserts the document, returning the
	// store-internal identifier (distinct from the document's "id" field).
	InsertOne(ctx context.Context, collection string, document Record) (string, error)

	// UpdateOne applies a partial field update to the first record matching
	// filter, unconditionally overwriting updatedAt. Reports whether a
	// matching record was modified.
	UpdateOne(ctx context.Context, collection string, filter Filter, update Record) (bool, error)

	// FindOrCreate returns the existing match or inserts document and reads
	// it back. Not atomic against two callers racing on the same filter;
	// acceptable because callers key on stable entity ids and a duplicate
	// insert converges on the next merge-upsert.
	FindOrCreate(ctx context.Context, collection string, filter Filter, document Record) (Record, error)

	// CountDocuments counts records matching filter (nil counts all).
	CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error)
}

// Clone returns a shallow copy of a record. Writes stamp timestamps on a
// clone so the caller's map is never mutated.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the application-level id field, or "" if absent or not a string.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// UpdatedAt returns the record's updatedAt field as a time, reporting
// whether it was present and parseable. Stored values may be native times
// (records written by this process or read back from the store) or ISO
// strings (records normalized from upstream payloads).
func (r Record) UpdatedAt() (time.Time, bool) {
	return parseTime(r["updatedAt"])
}

// CreatedAt returns the record's createdAt field as a time, reporting
// whether it was present and parseable.
func (r Record) CreatedAt() (time.Time, bool) {
	return parseTime(r["createdAt"])
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts, true
		}
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts, true
		}
		// ISO timestamps without a zone are taken as UTC.
		if ts, err := time.Parse("2006-01-02T15:04:05.999999999", t); err == nil {
			return ts.UTC(), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Package testutil provides testing fakes for the document store and the
// data provider.
package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/lbsports/transfermarkt-cache/pkg/store"
)

// FakeStore is an in-memory store.Store that preserves insertion order per
// collection and stamps lifecycle timestamps like the real adapter.
type FakeStore struct {
	mu          sync.Mutex
	collections map[string][]store.Record
	nextID      int

	// Err, when set, is returned by every operation. Used to exercise
	// store-unavailable paths.
	Err error

	// Now supplies write timestamps. Defaults to time.Now.
	Now func() time.Time
}

var _ store.Store = (*FakeStore)(nil)

// NewFakeStore creates an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		collections: make(map[string][]store.Record),
		Now:         time.Now,
	}
}

// FindOne returns a copy of the first record matching filter, or nil.
func (f *FakeStore) FindOne(_ context.Context, collection string, filter store.Filter) (store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	for _, rec := range f.collections[collection] {
		if matches(rec, filter) {
			return rec.Clone(), nil
		}
	}
	return nil, nil
}

// FindAll returns copies of matching records in insertion order.
func (f *FakeStore) FindAll(_ context.Context, collection string, filter store.Filter, limit, skip int64) ([]store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	var out []store.Record
	var skipped int64
	for _, rec := range f.collections[collection] {
		if !matches(rec, filter) {
			continue
		}
		if skipped < skip {
			skipped++
			continue
		}
		out = append(out, rec.Clone())
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

// InsertOne stamps createdAt and appends the document.
func (f *FakeStore) InsertOne(_ context.Context, collection string, document store.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}

	doc := document.Clone()
	doc["createdAt"] = f.Now().UTC()
	f.collections[collection] = append(f.collections[collection], doc)

	f.nextID++
	return fmt.Sprintf("oid-%06d", f.nextID), nil
}

// UpdateOne merges update into the first matching record, stamping updatedAt.
func (f *FakeStore) UpdateOne(_ context.Context, collection string, filter store.Filter, update store.Record) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return false, f.Err
	}

	for _, rec := range f.collections[collection] {
		if matches(rec, filter) {
			for k, v := range update {
				rec[k] = v
			}
			rec["updatedAt"] = f.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

// FindOrCreate returns the existing match or inserts document and reads it back.
func (f *FakeStore) FindOrCreate(ctx context.Context, collection string, filter store.Filter, document store.Record) (store.Record, error) {
	existing, err := f.FindOne(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if _, err := f.InsertOne(ctx, collection, document); err != nil {
		return nil, err
	}
	return f.FindOne(ctx, collection, filter)
}

// CountDocuments counts records matching filter.
func (f *FakeStore) CountDocuments(_ context.Context, collection string, filter store.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return 0, f.Err
	}

	var count int64
	for _, rec := range f.collections[collection] {
		if matches(rec, filter) {
			count++
		}
	}
	return count, nil
}

// Records returns copies of all records in a collection, in insertion order.
func (f *FakeStore) Records(collection string) []store.Record {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]store.Record, 0, len(f.collections[collection]))
	for _, rec := range f.collections[collection] {
		out = append(out, rec.Clone())
	}
	return out
}

// matches reports whether rec satisfies every field in filter. A nil
// filter matches everything.
func matches(rec store.Record, filter store.Filter) bool {
	for k, want := range filter {
		got, ok := rec[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

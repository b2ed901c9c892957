// Package cache implements the cache-aside layer over the document store.
// Every resource kind funnels through it: reads, the freshness decision,
// and the uniform upsert-with-timestamp write path.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lbsports/transfermarkt-cache/pkg/logging"
	"github.com/lbsports/transfermarkt-cache/pkg/store"
)

// DefaultExpirationDays is the staleness window applied when no explicit
// window is configured.
const DefaultExpirationDays = 3

// Collections are the cache-managed collection names.
var Collections = []string{
	"competitions",
	"clubs",
	"players",
	"player_market_values",
	"player_transfers",
	"player_jersey_numbers",
	"player_stats",
	"player_achievements",
	"player_injuries",
}

// ErrMissingID indicates a document passed to CacheResponse without the
// required application-level id field.
var ErrMissingID = errors.New("document has no id field")

// FetchFunc produces a fresh record for a resource on cache miss.
// Returning (nil, nil) means the upstream has no data for the resource.
type FetchFunc func(ctx context.Context) (store.Record, error)

// CollectionStats reports the cached item count for one collection.
type CollectionStats struct {
	Collection string `json:"collection_name"`
	Count      int64  `json:"count"`
}

// Service decides whether cached data is fresh enough to serve and writes
// every resource kind back uniformly. It is safe for concurrent use.
type Service struct {
	store  store.Store
	window time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a cache service over the given store. window is the
// expiration window for IsCacheExpired; zero or negative falls back to
// DefaultExpirationDays.
func NewService(st store.Store, window time.Duration) *Service {
	if st == nil {
		panic("store cannot be nil")
	}
	if window <= 0 {
		window = DefaultExpirationDays * 24 * time.Hour
	}
	return &Service{
		store:  st,
		window: window,
		logger: logging.NewLogger("cache"),
		now:    time.Now,
	}
}

// GetCachedResponse returns the cached record for resourceID, or nil if
// nothing is cached. Absence is not an error.
func (s *Service) GetCachedResponse(ctx context.Context, collection, resourceID string) (store.Record, error) {
	rec, err := s.store.FindOne(ctx, collection, store.Filter{"id": resourceID})
	if err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("get cached response: %w", err)
	}
	if rec == nil {
		cacheMisses.WithLabelValues(collection).Inc()
		return nil, nil
	}
	cacheHits.WithLabelValues(collection).Inc()
	return rec, nil
}

// GetAllCachedResponses returns cached records from a collection in
// insertion order. limit == 0 means unbounded.
func (s *Service) GetAllCachedResponses(ctx context.Context, collection string, limit, skip int64) ([]store.Record, error) {
	recs, err := s.store.FindAll(ctx, collection, nil, limit, skip)
	if err != nil {
		cacheErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("list cached responses: %w", err)
	}
	return recs, nil
}

// CountCachedResponses counts cached records matching filter (nil counts all).
func (s *Service) CountCachedResponses(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	count, err := s.store.CountDocuments(ctx, collection, filter)
	if err != nil {
		cacheErrors.WithLabelValues("count").Inc()
		return 0, fmt.Errorf("count cached responses: %w", err)
	}
	return count, nil
}

// IsCacheExpired reports whether a cached record is too stale to serve.
// A nil record, a missing updatedAt field, or an unparseable timestamp all
// count as expired: staleness is preferred over serving undecodable data.
func (s *Service) IsCacheExpired(rec store.Record) bool {
	if rec == nil {
		return true
	}
	updatedAt, ok := rec.UpdatedAt()
	if !ok {
		return true
	}
	return s.now().Sub(updatedAt) > s.window
}

// CacheResponse upserts a document keyed on its id field, stamping
// updatedAt unconditionally. An existing record is merged field-by-field
// (fields absent from document are left untouched); otherwise the document
// is inserted. Returns the document id on update, or the store-internal
// identifier on insert; callers must not depend on which.
//
// Two concurrent calls for the same id may both observe "not found" and
// both insert. This race is accepted: writes per id are rare, last write
// wins, and serializing the check-then-write would change the throughput
// profile of the request path.
func (s *Service) CacheResponse(ctx context.Context, collection string, document store.Record) (string, error) {
	id := document.ID()
	if id == "" {
		return "", ErrMissingID
	}

	doc := document.Clone()
	doc["updatedAt"] = s.now().UTC()

	existing, err := s.store.FindOne(ctx, collection, store.Filter{"id": id})
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return "", fmt.Errorf("cache response: %w", err)
	}

	if existing != nil {
		if _, err := s.store.UpdateOne(ctx, collection, store.Filter{"id": id}, doc); err != nil {
			cacheErrors.WithLabelValues("set").Inc()
			return "", fmt.Errorf("cache response: %w", err)
		}
		cacheWrites.WithLabelValues(collection, "update").Inc()
		return id, nil
	}

	storeID, err := s.store.InsertOne(ctx, collection, doc)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return "", fmt.Errorf("cache response: %w", err)
	}
	cacheWrites.WithLabelValues(collection, "insert").Inc()
	return storeID, nil
}

// HandleRequest is the cache-aside helper for request handlers: return the
// cached record if one exists, otherwise fetch, cache, and return the
// fresh result.
//
// Note the deliberate asymmetry with direct call sites: this helper serves
// ANY cache hit, regardless of age. Callers that require freshness must
// check IsCacheExpired themselves instead of going through here.
func (s *Service) HandleRequest(ctx context.Context, collection, resourceID string, fetch FetchFunc) (store.Record, error) {
	cached, err := s.GetCachedResponse(ctx, collection, resourceID)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	fresh, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", collection, resourceID, err)
	}
	if fresh == nil {
		return nil, nil
	}

	if fresh.ID() != "" {
		if _, err := s.CacheResponse(ctx, collection, fresh); err != nil {
			return nil, err
		}
	} else {
		s.logger.Warn().
			Str("collection", collection).
			Str("resource_id", resourceID).
			Msg("Fetched record has no id, returning without caching")
	}

	return fresh, nil
}

// Stats returns the cached item count per managed collection.
func (s *Service) Stats(ctx context.Context) ([]CollectionStats, error) {
	stats := make([]CollectionStats, 0, len(Collections))
	for _, name := range Collections {
		count, err := s.CountCachedResponses(ctx, name, nil)
		if err != nil {
			return nil, fmt.Errorf("stats for %s: %w", name, err)
		}
		stats = append(stats, CollectionStats{Collection: name, Count: count})
	}
	return stats, nil
}

// IsRecognizedCollection reports whether name is a cache-managed collection.
func IsRecognizedCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lbsports/transfermarkt-cache/pkg/logging"
)

// Mongo implements Store on top of a MongoDB database. The underlying
// driver maintains its own connection pool, so a single Mongo handle is
// shared process-wide between request-path callers and the scheduler.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger zerolog.Logger
}

var _ Store = (*Mongo)(nil)

// Connect opens a MongoDB connection pool and verifies it with a ping.
func Connect(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrUnavailable, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}

	logger := logging.NewLogger("store")
	logger.Info().Str("database", database).Msg("Connected to MongoDB")

	return &Mongo{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}, nil
}

// Close releases the connection pool.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%w: disconnect: %v", ErrUnavailable, err)
	}
	m.logger.Info().Msg("Closed MongoDB connection")
	return nil
}

// Ping verifies store connectivity. Used by readiness checks.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	return nil
}

// FindOne returns the first record matching filter, or nil if none match.
func (m *Mongo) FindOne(ctx context.Context, collection string, filter Filter) (Record, error) {
	var doc bson.M
	err := m.db.Collection(collection).FindOne(ctx, toBSON(filter)).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find one in %s: %v", ErrUnavailable, collection, err)
	}
	return fromBSON(doc), nil
}

// FindAll returns matching records in insertion order.
func (m *Mongo) FindAll(ctx context.Context, collection string, filter Filter, limit, skip int64) ([]Record, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cursor, err := m.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find in %s: %v", ErrUnavailable, collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: cursor in %s: %v", ErrUnavailable, collection, err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromBSON(doc))
	}
	return records, nil
}

// InsertOne stamps createdAt and inserts the document. Returns the
// store-internal identifier in hex form.
func (m *Mongo) InsertOne(ctx context.Context, collection string, document Record) (string, error) {
	doc := document.Clone()
	doc["createdAt"] = time.Now().UTC()

	res, err := m.db.Collection(collection).InsertOne(ctx, toBSON(doc))
	if err != nil {
		return "", fmt.Errorf("%w: insert into %s: %v", ErrUnavailable, collection, err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// UpdateOne applies a partial field update ($set merge), unconditionally
// overwriting updatedAt.
func (m *Mongo) UpdateOne(ctx context.Context, collection string, filter Filter, update Record) (bool, error) {
	set := update.Clone()
	if set == nil {
		set = Record{}
	}
	set["updatedAt"] = time.Now().UTC()

	res, err := m.db.Collection(collection).UpdateOne(ctx, toBSON(filter), bson.M{"$set": toBSON(set)})
	if err != nil {
		return false, fmt.Errorf("%w: update in %s: %v", ErrUnavailable, collection, err)
	}
	return res.ModifiedCount > 0, nil
}

// FindOrCreate returns the existing match or inserts document and reads it
// back. See the Store contract for the accepted duplicate-creation race.
func (m *Mongo) FindOrCreate(ctx context.Context, collection string, filter Filter, document Record) (Record, error) {
	existing, err := m.FindOne(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if _, err := m.InsertOne(ctx, collection, document); err != nil {
		return nil, err
	}
	return m.FindOne(ctx, collection, filter)
}

// CountDocuments counts records matching filter (nil counts all).
func (m *Mongo) CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error) {
	count, err := m.db.Collection(collection).CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("%w: count in %s: %v", ErrUnavailable, collection, err)
	}
	return count, nil
}

// toBSON converts a filter or record to a driver document. A nil filter
// matches everything.
func toBSON(m map[string]any) bson.M {
	out := bson.M{}
	for k, v := range m {
		out[k] = v
	}
	return out
}

// fromBSON converts a decoded document into a Record, dropping the
// store-internal _id and rehydrating BSON datetimes as native times.
func fromBSON(doc bson.M) Record {
	rec := make(Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		if dt, ok := v.(primitive.DateTime); ok {
			rec[k] = dt.Time().UTC()
			continue
		}
		rec[k] = v
	}
	return rec
}

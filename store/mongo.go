package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps each collection in a MongoDB collection of the same
// name. Safe for concurrent use.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// NewMongoStore creates a client for uri. The driver connects lazily, so a
// bad URI fails here but an unreachable server only shows up on Ping or on
// the first operation.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &MongoStore{
		client: client,
		db:     client.Database(database),
		now:    time.Now,
	}, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	oid := primitive.NewObjectID()
	d := prepare(doc, oid.Hex(), s.now())
	d[FieldID] = oid
	if _, err := s.db.Collection(collection).InsertOne(ctx, d); err != nil {
		return "", &WriteError{Collection: collection, Err: classify(err)}
	}
	return oid.Hex(), nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filter Document, limit int) ([]Document, error) {
	result := []Document{}
	if limit <= 0 {
		return result, nil
	}
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "$natural", Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, &QueryError{Collection: collection, Err: classify(err)}
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, &QueryError{Collection: collection, Err: classify(err)}
	}
	for _, m := range raw {
		result = append(result, fromBSON(m))
	}
	return result, nil
}

func (s *MongoStore) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, &QueryError{Err: classify(err)}
	}
	sort.Strings(names)
	return names, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Name() string { return s.db.Name() }

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// classify marks connectivity failures as ErrUnavailable while keeping the
// driver error in the chain.
func classify(err error) error {
	if errors.Is(err, mongo.ErrClientDisconnected) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}

// mongoFilter turns a store filter into a bson filter, decoding a hex _id
// into an ObjectID.
func mongoFilter(filter Document) bson.M {
	out := bson.M{}
	for k, v := range filter {
		if k == FieldID {
			if hex, ok := v.(string); ok {
				if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
					out[k] = oid
					continue
				}
			}
		}
		out[k] = v
	}
	return out
}

// fromBSON converts a decoded bson document into plain Go values: ObjectIDs
// become hex strings, DateTimes become UTC time.Time values.
func fromBSON(m bson.M) Document {
	doc := make(Document, len(m))
	for k, v := range m {
		doc[k] = fromBSONValue(v)
	}
	return doc
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSONValue(e)
		}
		return out
	case bson.M:
		return fromBSON(t)
	case map[string]any:
		return fromBSON(bson.M(t))
	case bson.D:
		return fromBSON(t.Map())
	default:
		return v
	}
}

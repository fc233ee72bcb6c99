package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore is a Store backed by a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and selects the database dbName.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(mongoConnectTimeout))
	if err != nil {
		return nil, storeError("connect", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storeError("ping", err)
	}

	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

// Collection returns a handle on the named collection.
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

// EnsureIndex creates an ascending index on field.
func (s *MongoStore) EnsureIndex(ctx context.Context, collection, field string) error {
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
	})
	if err != nil {
		return storeError("create index", err)
	}
	return nil
}

// Ping verifies the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

// toMongoFilter translates a Filter into a query document.
// {field: nil} matches both null and absent fields.
func toMongoFilter(filter Filter) bson.M {
	if filter.IsAll() {
		return bson.M{}
	}

	values := filter.Values
	if filter.Field == IDField {
		values = make([]any, len(filter.Values))
		for i, v := range filter.Values {
			values[i] = toObjectID(v)
		}
	}

	var match bson.M
	switch len(values) {
	case 0:
	case 1:
		match = bson.M{filter.Field: values[0]}
	default:
		match = bson.M{filter.Field: bson.M{"$in": values}}
	}

	if !filter.MatchMissing {
		if match == nil {
			return bson.M{filter.Field: bson.M{"$in": bson.A{}}}
		}
		return match
	}

	missing := bson.M{filter.Field: nil}
	if match == nil {
		return missing
	}
	return bson.M{"$or": bson.A{match, missing}}
}

// toObjectID converts hex identifiers to ObjectIDs and leaves anything else untouched.
func toObjectID(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}
	return s
}

// toBSON prepares a Document for writing.
func toBSON(doc Document) bson.M {
	out := bson.M{}
	for k, v := range doc {
		if k == IDField {
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			v = toObjectID(v)
		}
		out[k] = v
	}
	return out
}

// normalize converts driver types into plain Go values so documents serialize as ordinary JSON.
func normalize(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Decimal128:
		return val.String()
	default:
		return v
	}
}

func fromBSON(raw bson.M) Document {
	return Document(normalize(raw).(map[string]any))
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	var raw bson.M
	err := c.coll.FindOne(ctx, toMongoFilter(filter)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, storeError("find one", err)
	}
	return fromBSON(raw), nil
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter, sortField string) ([]Document, error) {
	opts := options.Find()
	if sortField != "" {
		opts.SetSort(bson.D{{Key: sortField, Value: 1}})
	}

	cursor, err := c.coll.Find(ctx, toMongoFilter(filter), opts)
	if err != nil {
		return nil, storeError("find", err)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, storeError("decode", err)
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	res, err := c.coll.InsertOne(ctx, toBSON(doc))
	if err != nil {
		return "", storeError("insert", err)
	}
	return idString(res.InsertedID), nil
}

func (c *mongoCollection) ReplaceOne(ctx context.Context, id string, doc Document, upsert bool) (UpdateResult, error) {
	res, err := c.coll.ReplaceOne(ctx,
		bson.M{IDField: toObjectID(id)},
		toBSON(doc.Without(IDField)),
		options.Replace().SetUpsert(upsert),
	)
	if err != nil {
		return UpdateResult{}, storeError("replace", err)
	}
	return toUpdateResult(res), nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter Filter, set Document, upsert bool) (UpdateResult, error) {
	res, err := c.coll.UpdateOne(ctx,
		toMongoFilter(filter),
		bson.M{"$set": toBSON(set.Without(IDField))},
		options.Update().SetUpsert(upsert),
	)
	if err != nil {
		return UpdateResult{}, storeError("update", err)
	}
	return toUpdateResult(res), nil
}

func (c *mongoCollection) UpdateMany(ctx context.Context, filter Filter, set Document) (UpdateResult, error) {
	res, err := c.coll.UpdateMany(ctx,
		toMongoFilter(filter),
		bson.M{"$set": toBSON(set.Without(IDField))},
	)
	if err != nil {
		return UpdateResult{}, storeError("update", err)
	}
	return toUpdateResult(res), nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, toMongoFilter(filter))
	if err != nil {
		return 0, storeError("delete", err)
	}
	return res.DeletedCount, nil
}

func toUpdateResult(res *mongo.UpdateResult) UpdateResult {
	result := UpdateResult{
		Matched:  res.MatchedCount,
		Modified: res.ModifiedCount,
	}
	if res.UpsertedID != nil {
		result.UpsertedID = idString(res.UpsertedID)
	}
	return result
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

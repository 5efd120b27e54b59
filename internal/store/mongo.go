package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoCollectionName = "collections"

// collectionDoc is the single document kept per named collection. The JSON
// array is stored verbatim so the decode-fallback policy matches the other
// backends byte for byte.
type collectionDoc struct {
	ID   string `bson:"_id"`
	Data string `bson:"data"`
}

// MongoStore keeps each collection as one document keyed by collection name.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore creates a Store backed by the given Mongo database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) read(ctx context.Context, name string) ([]byte, error) {
	var doc collectionDoc
	err := s.db.Collection(mongoCollectionName).FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection %q: %w", name, err)
	}
	return []byte(doc.Data), nil
}

func (s *MongoStore) write(ctx context.Context, name string, data []byte) error {
	opts := options.Replace().SetUpsert(true)
	doc := collectionDoc{ID: name, Data: string(data)}
	if _, err := s.db.Collection(mongoCollectionName).ReplaceOne(ctx, bson.M{"_id": name}, doc, opts); err != nil {
		return fmt.Errorf("failed to write collection %q: %w", name, err)
	}
	return nil
}

// GetCollection implements Store.
func (s *MongoStore) GetCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	data, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}
	return decodeCollection(name, data), nil
}

// Append implements Store.
func (s *MongoStore) Append(ctx context.Context, name string, record interface{}) error {
	current, err := s.read(ctx, name)
	if err != nil {
		return err
	}
	data, err := appendRecord(name, current, record)
	if err != nil {
		return err
	}
	return s.write(ctx, name, data)
}

// ReplaceAll implements Store.
func (s *MongoStore) ReplaceAll(ctx context.Context, name string, records []json.RawMessage) error {
	data, err := encodeCollection(records)
	if err != nil {
		return err
	}
	return s.write(ctx, name, data)
}

// ConnectMongo initializes and returns a MongoDB client and database instance.
func ConnectMongo(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, client.Database(dbName), nil
}

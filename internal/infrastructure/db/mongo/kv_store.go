package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollection = "web_sessions"

// KVStore keeps session records in a MongoDB collection, one document per key.
// A TTL index on expires_at lets the server reap stale documents; reads also
// check expiry because the reaper runs only once a minute.
type KVStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewKVStore binds a KVStore to db and makes sure the TTL index exists.
func NewKVStore(ctx context.Context, db *mongo.Database) (*KVStore, error) {
	coll := db.Collection(sessionCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("create ttl index: %w", err)
	}

	return &KVStore{coll: coll, now: time.Now}, nil
}

// Get returns the value under key. Missing and expired keys report ok == false.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find session: %w", err)
	}
	if !doc.ExpiresAt.IsZero() && !s.now().Before(doc.ExpiresAt) {
		return "", false, nil
	}
	return doc.Value, true, nil
}

// Set upserts value under key. ttl <= 0 means no expiry.
func (s *KVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now().UTC()
	doc := kvDocument{Key: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		doc.ExpiresAt = now.Add(ttl)
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping checks the server behind the collection.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

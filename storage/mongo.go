package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/CreativeUnicorns/usersettings"
)

// MongoCollection implements usersettings.Collection on a MongoDB collection.
type MongoCollection struct {
	coll *mongo.Collection
}

// NewMongoCollection connects to uri, pings the primary and selects the user collection
// of database.
func NewMongoCollection(ctx context.Context, uri, database string) (*MongoCollection, error) {
	if database == "" {
		return nil, fmt.Errorf("mongo: %w: empty database name", usersettings.ErrInvalidInput)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: failed to ping server: %w", err)
	}
	return NewMongoCollectionFrom(client.Database(database).Collection(usersettings.CollectionName)), nil
}

// NewMongoCollectionFrom wraps an existing collection handle.
func NewMongoCollectionFrom(coll *mongo.Collection) *MongoCollection {
	return &MongoCollection{coll: coll}
}

func (c *MongoCollection) Ping(ctx context.Context) error {
	return c.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// FindOne returns usersettings.ErrNotFound if no document has the id.
func (c *MongoCollection) FindOne(ctx context.Context, id int64) (*usersettings.UserRecord, error) {
	var rec usersettings.UserRecord
	err := c.coll.FindOne(ctx, bson.M{usersettings.FieldID: id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, usersettings.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to get user: %w", err)
	}
	return &rec, nil
}

func (c *MongoCollection) InsertOne(ctx context.Context, rec *usersettings.UserRecord) error {
	if _, err := c.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usersettings.ErrDuplicate
		}
		return fmt.Errorf("mongo: failed to insert user: %w", err)
	}
	return nil
}

// UpdateFields issues a single $set without upsert.
func (c *MongoCollection) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, bson.M{usersettings.FieldID: id}, bson.M{"$set": fields})
	if err != nil {
		return false, fmt.Errorf("mongo: failed to update user: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (c *MongoCollection) DeleteMany(ctx context.Context, id int64) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M{usersettings.FieldID: id})
	if err != nil {
		return 0, fmt.Errorf("mongo: failed to delete user: %w", err)
	}
	return res.DeletedCount, nil
}

func (c *MongoCollection) Count(ctx context.Context) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongo: failed to count users: %w", err)
	}
	return n, nil
}

func (c *MongoCollection) Find(ctx context.Context) (usersettings.Cursor, error) {
	cur, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to query users: %w", err)
	}
	return mongoCursor{cur: cur}, nil
}

// Close disconnects the underlying client.
func (c *MongoCollection) Close(ctx context.Context) error {
	return c.coll.Database().Client().Disconnect(ctx)
}

type mongoCursor struct {
	cur *mongo.Cursor
}

func (c mongoCursor) Next(ctx context.Context) bool { return c.cur.Next(ctx) }

func (c mongoCursor) Decode(rec *usersettings.UserRecord) error { return c.cur.Decode(rec) }

func (c mongoCursor) Err() error { return c.cur.Err() }

func (c mongoCursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }

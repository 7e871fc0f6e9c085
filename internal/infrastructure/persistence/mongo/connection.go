// Package mongo implements the document storage driver. Records are keyed by
// ObjectID and stored in the "disciplines" and "users" collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-hub/course-registry/pkg/retry"
)

const (
	DisciplineCollection = "disciplines"
	UserCollection       = "users"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Connection owns the client and the selected database.
type Connection struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewConnection connects, pings the primary and ensures indexes. A malformed
// URI or an empty database name is reported as a permanent error.
func NewConnection(ctx context.Context, cfg Config) (*Connection, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout)
	if err := opts.Validate(); err != nil {
		return nil, retry.Permanent(fmt.Errorf("mongo: invalid connection options: %w", err))
	}
	if cfg.Database == "" {
		return nil, retry.Permanent(errors.New("mongo: database name is required"))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: failed to ping: %w", err)
	}

	conn := &Connection{client: client, db: client.Database(cfg.Database)}
	if err := conn.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return conn, nil
}

// collection is the subset of *mongo.Collection the repositories call.
type collection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Collection returns a handle on the named collection.
func (c *Connection) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Ping checks the primary.
func (c *Connection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (c *Connection) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Connection) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := c.Collection(UserCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "cpf", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "registration", Value: 1}}, Options: unique},
	})
	if err != nil {
		return fmt.Errorf("mongo: failed to create user indexes: %w", err)
	}
	return nil
}

// objectID reports false for strings that are not 24-char hex ObjectIDs.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

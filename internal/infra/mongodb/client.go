// Package mongodb implements the persistence ports on MongoDB collections.
// It is the only layer that knows about bson documents and ObjectIDs as
// stored; everything above works with domain types.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/infra/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("mongodb")

// Client wraps the MongoDB database handle shared by the collection stores.
type Client struct {
	client  *mongo.Client
	db      *mongo.Database
	metrics *observability.Metrics
	logger  *zap.Logger
}

// Connect opens a MongoDB connection and verifies it with a ping.
// Unexpected store failures count against the metrics' per-collection
// error counter.
func Connect(ctx context.Context, uri, dbName string, metrics *observability.Metrics, logger *zap.Logger) (*Client, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("database", dbName))

	return &Client{
		client:  cli,
		db:      cli.Database(dbName),
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Disconnect closes the underlying connection pool.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Ping verifies the connection, used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// EnsureIndexes creates the unique indexes the application relies on:
// users.email and customers.email. Idempotent.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	for _, coll := range []string{"users", "customers"} {
		_, err := c.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: unique,
		})
		if err != nil {
			return fmt.Errorf("create %s email index: %w", coll, err)
		}
	}
	return nil
}

// parseID converts a hex id from the API surface into an ObjectID.
// A malformed id is a validation error, not a lookup miss.
func parseID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &domain.ErrValidation{Field: "id", Message: fmt.Sprintf("invalid %s id", resource)}
	}
	return oid, nil
}

// findAfter is the shared option set for read-back updates, matching the
// "return the updated document" behavior admin handlers expect.
var findAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

// Package mongox provides the thin MongoDB plumbing shared by the
// repositories: a narrow Collection interface (the seam test doubles plug
// into), client bootstrap with a process-wide codec registry, collection
// handles carrying the read/write-concern policy, and index bootstrap.
package mongox

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mflixapp/mflix/config"
)

// Collection is the subset of *mongo.Collection used by our repositories.
type Collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

var _ Collection = (*mongo.Collection)(nil)

// registry is the process-wide BSON codec registry. It is built once at
// package init and shared read-only by every client and collection handle;
// repositories never derive codec configuration of their own.
var registry = bson.NewRegistry()

// Connect dials the deployment described by cfg and verifies the primary is
// reachable before returning. The returned client owns a connection pool;
// callers should Disconnect it on shutdown.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetRegistry(registry)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to %q: %w", cfg.MongoURI, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging primary: %w", err)
	}
	return client, nil
}

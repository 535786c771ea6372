// Package mongodb owns the shared document-database connection.
//
// Services receive a database handle instead of dialing themselves so the
// process holds exactly one pooled client.
package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config locates the document database.
type Config struct {
	URI      string `env:"DEVSPHERE_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"DEVSPHERE_MONGO_DATABASE" envDefault:"devsphere"`
}

// Connect dials the database, verifies reachability, and returns the handle
// together with a disconnect function.
func Connect(ctx context.Context, cfg Config) (*mongo.Database, func(context.Context) error, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, nil, fmt.Errorf("mongo uri is required")
	}
	name := strings.TrimSpace(cfg.Database)
	if name == "" {
		return nil, nil, fmt.Errorf("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client.Database(name), client.Disconnect, nil
}

package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/linkforge/profile-hub/internal/config"
	"github.com/linkforge/profile-hub/pkg/logger"
)

const ProfilesCollection = "profiles"

// NewMongoClient dials the document store once per process. The returned
// client is shared by every repository; per-operation deadlines come from
// the configured store timeout, not from reconnecting.
func NewMongoClient(cfg config.Config, log logger.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("cannot create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo failed: %w", err)
	}

	log.Info("Connect MongoDB successfully.")
	return client, nil
}

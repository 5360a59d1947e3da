package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"mongo-user-api/internal/config"
)

// Mongo bundles the long-lived MongoDB client with the database and
// collection handles the application uses. The client is safe for
// concurrent use and pools connections internally.
type Mongo struct {
	Client     *mongo.Client
	Database   *mongo.Database
	Collection *mongo.Collection
	log        *zap.Logger
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
func NewMongo(cfg *config.Config, l *zap.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Mongo.ConnectTimeoutSeconds)*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// Release the half-open client before reporting failure.
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)

	l.Info("MongoDB connected successfully",
		zap.String("database", cfg.Mongo.Database),
		zap.String("collection", cfg.Mongo.Collection),
	)

	return &Mongo{
		Client:     client,
		Database:   db,
		Collection: db.Collection(cfg.Mongo.Collection),
		log:        l,
	}, nil
}

// Ping checks if the MongoDB connection is alive.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close gracefully disconnects the MongoDB client.
func (m *Mongo) Close(ctx context.Context) error {
	m.log.Info("Closing MongoDB connection")
	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

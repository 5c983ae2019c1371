package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/negocios-forms/core/internal/config"
	"github.com/negocios-forms/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const connectAttempts = 5

// Store owns the client and the selected database.
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect opens the MongoDB client and pings the primary, retrying with
// exponential backoff until the connect timeout elapses.
func Connect(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetAppName("negocios-core").
		SetConnectTimeout(cfg.ConnectTimeoutDuration()).
		SetServerSelectionTimeout(cfg.ConnectTimeoutDuration())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectAttempts-1),
		ctx,
	)
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeoutDuration())
		defer cancel()
		pingErr := client.Ping(pingCtx, readpref.Primary())
		if pingErr != nil {
			log.Warn("mongo ping failed", zap.Int("attempt", attempt), zap.Error(pingErr))
		}
		return pingErr
	}, policy)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info("mongo connected",
		zap.String("uri", cfg.Mongo.RedactedURI()),
		zap.String("database", cfg.Mongo.Database),
		zap.Int("attempts", attempt),
	)
	return &Store{Client: client, DB: client.Database(cfg.Mongo.Database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, readpref.Primary())
}

// Indexes returns the index set of every collection the API owns.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		models.NegocioModel{}.CollectionName(): {
			{
				Keys:    bson.D{{Key: "nombre_negocio", Value: 1}},
				Options: options.Index().SetName("nombre_negocio_unique").SetUnique(true),
			},
			{
				// Absent regimen_fiscal values must not collide with each other.
				Keys: bson.D{{Key: "regimen_fiscal", Value: 1}},
				Options: options.Index().
					SetName("regimen_fiscal_unique").
					SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "regimen_fiscal", Value: bson.D{{Key: "$type", Value: "string"}}}}),
			},
			{
				Keys:    bson.D{{Key: "formularios", Value: 1}},
				Options: options.Index().SetName("formularios"),
			},
		},
		models.FormModel{}.CollectionName(): {
			{
				Keys:    bson.D{{Key: "negocio", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("negocio_created"),
			},
			{
				Keys:    bson.D{{Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("created"),
			},
		},
		models.UserModel{}.CollectionName(): {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			},
		},
	}
}

// EnsureIndexes creates missing indexes. Existing indexes with the same
// definition are left untouched by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for coll, indexes := range Indexes() {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		log.Debug("indexes ensured", zap.String("collection", coll), zap.Strings("indexes", names))
	}
	return nil
}

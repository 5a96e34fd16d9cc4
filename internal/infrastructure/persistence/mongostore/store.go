// Package mongostore keeps catalog and shopping aggregates in MongoDB.
// Each aggregate is one document, so variants and cart items are written
// atomically with their owner.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names
const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionBrands     = "brands"
	CollectionCarts      = "carts"
	CollectionWishlists  = "wishlists"
)

// Store holds the client and database handle
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// Connect opens a client, pings the primary and ensures indexes
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetConnectTimeout(cfg.Timeout).SetServerSelectionTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(cfg.Database), logger: logger}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.Info("Connected to mongo", zap.String("database", cfg.Database))
	return s, nil
}

// Database returns the underlying database handle
func (s *Store) Database() *mongo.Database {
	return s.db
}

// Ping checks that the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. Creating an
// existing index is a no-op.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionProducts: {
			{
				Keys: bson.D{{Key: "base_sku", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"base_sku": bson.M{"$type": "string"}}),
			},
			{Keys: bson.D{{Key: "skus", Value: 1}}},
			{Keys: bson.D{{Key: "category_id", Value: 1}}},
			{Keys: bson.D{{Key: "brand_id", Value: 1}}},
		},
		CollectionCategories: {
			{Keys: bson.D{{Key: "name_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionBrands: {
			{Keys: bson.D{{Key: "name_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionCarts: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionWishlists: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "product_ids", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// translateError maps driver errors onto domain sentinels
func translateError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return shared.ErrNotFound
	}
	return err
}

// pageOptions applies the filter's paging and a whitelisted sort
func pageOptions(filter shared.Filter, sortFields map[string]string, defaultSort string, defaultDir int) *options.FindOptions {
	opts := options.Find()
	field, ok := sortFields[filter.OrderBy]
	if !ok {
		field = defaultSort
	}
	dir := defaultDir
	switch filter.OrderDir {
	case "asc", "ASC":
		dir = 1
	case "desc", "DESC":
		dir = -1
	}
	opts.SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}})
	if filter.PageSize > 0 {
		opts.SetSkip(int64(filter.Offset())).SetLimit(int64(filter.PageSize))
	}
	return opts
}

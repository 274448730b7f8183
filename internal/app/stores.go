package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"cannashop/internal/config"
	"cannashop/internal/repositories"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stores bundles the product and cart stores of one backend.
type Stores struct {
	Products repositories.ProductRepository
	Carts    repositories.CartRepository
	close    func() error
}

// Close releases the backend connection, if any.
func (s *Stores) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// MemoryStores returns fresh in-memory stores.
func MemoryStores() *Stores {
	return &Stores{
		Products: repositories.NewMemoryProductRepository(),
		Carts:    repositories.NewMemoryCartRepository(),
	}
}

// OpenStores opens the backend selected by cfg.StoreDriver.
func OpenStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return MemoryStores(), nil
	case config.DriverFile:
		log.Printf("Using JSON file stores in %s", cfg.DataDir)
		return &Stores{
			Products: repositories.NewFileProductRepository(cfg.DataDir),
			Carts:    repositories.NewFileCartRepository(cfg.DataDir),
		}, nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := repositories.OpenGORM(cfg.StoreDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		return &Stores{
			Products: repositories.NewGORMProductRepository(db),
			Carts:    repositories.NewGORMCartRepository(db),
			close:    sqlDB.Close,
		}, nil
	case config.DriverMongo:
		return openMongoStores(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openMongoStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	mongoCfg := repositories.MongoConfig{URI: cfg.MongoURI, DBName: cfg.MongoDB}
	connect := func() (*mongo.Client, error) {
		client, err := repositories.NewMongoConnection(ctx, mongoCfg)
		if err != nil {
			log.Printf("MongoDB not reachable yet: %v", err)
		}
		return client, err
	}
	client, err := backoff.Retry(ctx, connect,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(cfg.ConnectTimeout))
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.MongoDB)
	if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Stores{
		Products: repositories.NewMongoProductRepository(db),
		Carts:    repositories.NewMongoCartRepository(db),
		close: func() error {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(disconnectCtx)
		},
	}, nil
}

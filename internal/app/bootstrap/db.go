// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/fileharbor/fileharbor/internal/app/store/content"
	tokenstore "github.com/fileharbor/fileharbor/internal/app/store/tokens"
	"github.com/fileharbor/fileharbor/internal/app/system/indexes"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectDB connects to the backing stores: MongoDB for metadata and jobs,
// Redis for tokens, and the local content directory for blobs.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema
// and Startup.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	// Connect to Redis for the token store
	rdb := redis.NewClient(&redis.Options{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return DBDeps{}, fmt.Errorf("redis ping failed: %w", err)
	}
	tokens := tokenstore.New(rdb, appCfg.TokenTTL)

	logger.Info("connected to Redis",
		zap.String("addr", appCfg.RedisAddr),
		zap.Int("db", appCfg.RedisDB),
		zap.Duration("token_ttl", appCfg.TokenTTL),
	)

	// Initialize the content store directory
	blobs := content.New(appCfg.StoragePath)
	if err := blobs.EnsureRoot(); err != nil {
		return DBDeps{}, fmt.Errorf("failed to create storage directory: %w", err)
	}
	logger.Info("initialized content store",
		zap.String("path", appCfg.StoragePath))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Tokens:        tokens,
		Blobs:         blobs,
	}, nil
}

// EnsureSchema sets up indexes as needed.
//
// This runs after ConnectDB succeeds but before Startup and before the HTTP
// handler is built. The context has a timeout based on
// coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}

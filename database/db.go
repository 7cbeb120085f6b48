package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cinerate/internal/config"
	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/microservices/http-api/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Closer releases whatever OpenStore connected to.
type Closer func(ctx context.Context) error

// OpenStore connects the record store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, Closer, error) {
	switch cfg.StoreDriver {
	case "postgres":
		db, err := OpenPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		closer := func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return repository.NewGormStore(db), closer, nil

	case "mongo":
		client, err := OpenMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewMongoStore(ctx, client.Database(cfg.MongoDB))
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return store, client.Disconnect, nil

	case "memory":
		logger.Warn("using in-memory record store, data is lost on exit")
		return repository.NewMemoryStore(), func(context.Context) error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// OpenPostgres connects through gorm and migrates the users, ratings and
// id_counters tables.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Rating{}, &models.IDCounter{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("connected to postgres")
	return db, nil
}

// OpenMongo connects and pings the primary.
func OpenMongo(ctx context.Context, uri string, logger *slog.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to mongo")
	return client, nil
}

// ErrRedisDisabled is returned by OpenRedis when no URL is configured.
var ErrRedisDisabled = errors.New("redis not configured")

// OpenRedis connects to REDIS_URL. REDIS_PASSWORD overrides a password in the URL.
func OpenRedis(ctx context.Context, url, password string, logger *slog.Logger) (*redis.Client, error) {
	if url == "" {
		return nil, ErrRedisDisabled
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")
	return rdb, nil
}

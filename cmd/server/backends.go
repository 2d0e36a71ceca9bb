package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/onduty/roster/internal/core/ports"
	"github.com/onduty/roster/internal/infrastructure/config"
	"github.com/onduty/roster/internal/infrastructure/db/file"
	"github.com/onduty/roster/internal/infrastructure/db/memory"
	"github.com/onduty/roster/internal/infrastructure/db/mongo"
	"github.com/onduty/roster/internal/infrastructure/db/redis"
	"github.com/onduty/roster/internal/infrastructure/http/handlers"
)

// backends holds the storage adapters selected by configuration.
type backends struct {
	Users    ports.UserRepository
	Requests ports.RequestRepository
	Audit    ports.AuditRepository
	Denylist ports.TokenDenylist
	Checks   map[string]handlers.Check

	mongoClient *gomongo.Client
	redisClient *goredis.Client
}

func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{Checks: make(map[string]handlers.Check)}

	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		b.mongoClient = client
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			b.Close()
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		b.Users = mongo.NewUserRepository(db)
		b.Requests = mongo.NewRequestRepository(db)
		b.Audit = mongo.NewAuditRepository(db)
		b.Checks["mongodb"] = handlers.MongoCheck(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongodb store")

	default:
		var store ports.Store
		if cfg.StoreBackend == config.BackendFile {
			fs, err := file.Open(cfg.DataDir)
			if err != nil {
				return nil, err
			}
			store = fs
			log.Info().Str("dir", cfg.DataDir).Msg("using file store")
		} else {
			log.Warn().Msg("using in-memory store, data is lost on restart")
		}

		users, err := memory.NewUserRepository(ctx, store)
		if err != nil {
			return nil, err
		}
		requests, err := memory.NewRequestRepository(ctx, store)
		if err != nil {
			return nil, err
		}
		b.Users = users
		b.Requests = requests
		b.Audit = memory.NewAuditRepository()
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.redisClient = rdb
		b.Denylist = redis.NewTokenDenylist(rdb)
		b.Checks["redis"] = handlers.RedisCheck(rdb)
	} else {
		b.Denylist = memory.NewTokenDenylist()
	}

	return b, nil
}

// Close releases client connections.
func (b *backends) Close() {
	if b.mongoClient != nil {
		_ = b.mongoClient.Disconnect(context.Background())
	}
	if b.redisClient != nil {
		_ = b.redisClient.Close()
	}
}

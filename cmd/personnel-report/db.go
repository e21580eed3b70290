package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
	"github.com/iota-uz/personnel/modules/personnel/infrastructure/cache"
	"github.com/iota-uz/personnel/modules/personnel/infrastructure/persistence"
	"github.com/iota-uz/personnel/pkg/configuration"
)

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	conf := configuration.Use()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, pkgerrors.Wrap(err, "ping database")
	}
	return pool, nil
}

// statusKindRepo wires the redis cache in front of the reference-data
// repository when redis is enabled.
func statusKindRepo() statuskind.Repository {
	conf := configuration.Use()
	repo := persistence.NewStatusKindRepository()
	if !conf.Redis.Enabled {
		return repo
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	return cache.NewStatusKindCache(repo, client, conf.Redis.TTL, conf.Logger())
}

package database

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	c    *redis.Client
	once sync.Once
)

var addr = "localhost:6379"

// SetAddr changes the address Database connects to. It has no effect once the
// client exists.
func SetAddr(a string) {
	addr = a
}

// Connect pings addr until it answers or maxElapsed passes.
func Connect(ctx context.Context, addr string, maxElapsed time.Duration) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed
	err := backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		err := rdb.Ping(ctx).Err()
		if err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("redis not ready")
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func initDatabase() {
	rdb, err := Connect(context.Background(), addr, time.Second*30)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to redis")
	}
	c = rdb
}

func Database() *redis.Client {
	once.Do(initDatabase)
	return c
}

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ssau-fiit/waveot/database"
)

func openStore(cfg config) (database.Store, error) {
	switch cfg.Store {
	case "redis":
		database.SetAddr(cfg.RedisAddr)
		return database.NewRedisStore(database.Database()), nil
	case "bolt":
		return database.OpenBolt(cfg.BoltPath)
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("could not parse flags")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("bad log level")
	}
	zerolog.SetGlobalLevel(level)

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open store")
	}
	defer store.Close()

	r := newRouter(&server{wavelets: newRegistry(store)})
	log.Info().Str("addr", cfg.Addr).Str("store", cfg.Store).Msg("starting server")
	err = r.Run(cfg.Addr)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start server")
	}
}

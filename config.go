package main

import (
	"flag"
	"os"
)

type config struct {
	Addr      string
	RedisAddr string
	Store     string
	BoltPath  string
	LogLevel  string
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// loadConfig reads flags from args. Environment variables provide the
// defaults.
func loadConfig(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("waveot", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", envOr("ADDR", "0.0.0.0:8080"), "listen address")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", envOr("REDIS_ADDR", "localhost:6379"), "redis address")
	fs.StringVar(&cfg.Store, "store", envOr("STORE", "redis"), "pending queue store: redis or bolt")
	fs.StringVar(&cfg.BoltPath, "bolt-path", envOr("BOLT_PATH", "waveot.db"), "bbolt file for -store=bolt")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "zerolog level")
	err := fs.Parse(args)
	return cfg, err
}

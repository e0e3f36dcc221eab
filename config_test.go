package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"ADDR", "REDIS_ADDR", "STORE", "BOLT_PATH", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, config{
		Addr:      "0.0.0.0:8080",
		RedisAddr: "localhost:6379",
		Store:     "redis",
		BoltPath:  "waveot.db",
		LogLevel:  "info",
	}, cfg)
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("STORE", "bolt")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADDR", ":9000")

	cfg, err := loadConfig([]string{"-addr", ":9100", "-bolt-path", "/tmp/q.db"})
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, "bolt", cfg.Store)
	assert.Equal(t, "/tmp/q.db", cfg.BoltPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsUnknownFlags(t *testing.T) {
	_, err := loadConfig([]string{"-nope"})
	assert.Error(t, err)
}

func TestOpenStoreUnknown(t *testing.T) {
	_, err := openStore(config{Store: "etcd"})
	assert.Error(t, err)
}

package main

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmrodillon/portfolio-backend/config"
	"github.com/jmrodillon/portfolio-backend/logger"
)

func TestRedisOptions(t *testing.T) {
	logger.IsTest = true

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: config.EnvDevelopment},
		Redis: config.RedisConfig{
			Address:  "localhost:6379",
			Password: "pw",
			DB:       2,
		},
	}

	opts := redisOptions(cfg, cfg.Redis.Address)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Nil(t, opts.TLSConfig, "development should not use TLS")
}

func TestRedisOptionsProductionTLS(t *testing.T) {
	logger.IsTest = true

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: config.EnvProduction},
		Redis:  config.RedisConfig{Address: "redis.internal:6380"},
	}

	opts := redisOptions(cfg, cfg.Redis.Address)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), opts.TLSConfig.MinVersion)
	// ServerName stays empty: the dialer derives it from the address host,
	// and a host:port value would never match a certificate SAN.
	assert.Empty(t, opts.TLSConfig.ServerName)
}
